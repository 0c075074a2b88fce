package mysql

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"Local_Market/internal/pkg"

	mysqlerr "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%abc%", containsPattern("ABC"))
	assert.Equal(t, `%a\%b\_c\\%`, containsPattern(`a%b_c\`))
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, "x"))

	err := translate(gorm.ErrRecordNotFound, "product")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.Equal(t, "product: not found", err.Error())

	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey, "vendor"), pkg.ErrConflict)

	for _, n := range []uint16{1139, 3692, 3696} {
		err = translate(fmt.Errorf("wrapped: %w", &mysqlerr.MySQLError{Number: n, Message: "regexp"}), "communities")
		assert.ErrorIs(t, err, pkg.ErrBadRequest, "%d", n)
	}
	assert.NotErrorIs(t, translate(&mysqlerr.MySQLError{Number: 1205}, "communities"), pkg.ErrBadRequest)

	boom := errors.New("boom")
	err = translate(boom, "list")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, pkg.ErrNotFound)
}

func TestCommunityListFilter_Conds(t *testing.T) {
	assert.Empty(t, CommunityListFilter{}.Conds())

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	conds := CommunityListFilter{Name: "^Green", Status: "active", From: &from, To: &to}.Conds()
	require.Len(t, conds, 4)
	assert.Equal(t, "communities.name REGEXP ?", conds[0].SQL)
	assert.Equal(t, []any{"^Green"}, conds[0].Args)
	assert.Equal(t, []any{"active"}, conds[1].Args)
	assert.Equal(t, []any{from}, conds[2].Args)
	assert.Equal(t, []any{to}, conds[3].Args)
}
