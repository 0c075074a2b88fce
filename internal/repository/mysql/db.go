package mysql

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	mysqlerr "github.com/go-sql-driver/mysql"
	driver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 打开连接池并赋值全局 DB
func InitDB(dsn string) error {
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(driver.Open(dsn), &gorm.Config{
		TranslateError: true, // 唯一键冲突 -> gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// AutoMigrate 建表（子表在父表之后）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Community{},
		&model.CommunityEvent{},
		&model.CustomerEvent{},
		&model.Vendor{},
		&model.Product{},
		&model.ProductSpecification{},
		&model.Style{},
		&model.Inventory{},
		&model.Order{},
		&model.MarketOutbox{},
	)
}

// Cond 一条 WHERE 条件，由纯函数构建，便于单测
type Cond struct {
	SQL  string
	Args []any
}

func applyConds(db *gorm.DB, conds []Cond) *gorm.DB {
	for _, c := range conds {
		db = db.Where(c.SQL, c.Args...)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern 大小写不敏感的子串匹配模式
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// translate 把存储层错误归类到领域错误
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, pkg.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, pkg.ErrConflict)
	case isRegexpError(err):
		return pkg.BadRequest("%s: invalid pattern", what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// isRegexpError 用户传入的 REGEXP 不合法：1139（旧版）或 8.0 ICU 的 3685-3700
func isRegexpError(err error) bool {
	var me *mysqlerr.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == 1139 || (me.Number >= 3685 && me.Number <= 3700)
}
