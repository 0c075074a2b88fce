package mysql

import (
	"context"
	"time"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func orderByCreated(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// Create 创建社区并写 outbox
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Events").Create(c).Error; err != nil {
			return translate(err, "create community")
		}
		return insertOutbox(tx, "community", c.ID.String(), model.EventCommunityRegistered, map[string]any{
			"name":   c.Name,
			"status": c.Status,
		})
	})
}

func (r *CommunityRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Community{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

// FindByID 直接按 id 获取，密码列在查询时排除
func (r *CommunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).Omit("password").Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, translate(err, "community")
	}
	return &c, nil
}

// FindWithEvents 鉴权中间件使用：社区 + 内嵌活动及报名
func (r *CommunityRepository) FindWithEvents(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).Omit("password").
		Preload("Events", orderByCreated).
		Preload("Events.Attendees", orderByCreated).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "community")
	}
	c.Events = withAttendees(c.Events)
	return &c, nil
}

// withAttendees attendees 为 nil 时补空切片，输出固定为数组
func withAttendees(events []model.CommunityEvent) []model.CommunityEvent {
	if events == nil {
		return []model.CommunityEvent{}
	}
	for i := range events {
		if events[i].Attendees == nil {
			events[i].Attendees = []model.CustomerEvent{}
		}
	}
	return events
}

// FindCredential 登录时只取 id + 密码哈希
func (r *CommunityRepository) FindCredential(ctx context.Context, email string) (uuid.UUID, string, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).Select("id", "password").Where("email = ?", email).First(&c).Error
	if err != nil {
		return uuid.Nil, "", translate(err, "community credential")
	}
	return c.ID, c.Password, nil
}

// Update 按列更新；值未变化时 MySQL 的 RowsAffected 为 0，需要回查是否存在
func (r *CommunityRepository) Update(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cols) > 0 {
			res := tx.Model(&model.Community{}).Where("id = ?", id).Updates(cols)
			if res.Error != nil {
				return translate(res.Error, "update community")
			}
			if res.RowsAffected == 0 {
				if err := exists(tx, &model.Community{}, "id = ?", id); err != nil {
					return err
				}
			}
		} else if err := exists(tx, &model.Community{}, "id = ?", id); err != nil {
			return err
		}
		return insertOutbox(tx, "community", id.String(), model.EventCommunityUpdated, cols)
	})
}

func (r *CommunityRepository) SetAnnouncement(ctx context.Context, id uuid.UUID, text string, at time.Time) error {
	return r.Update(ctx, id, map[string]any{
		"announcement_text":       text,
		"announcement_updated_at": at,
	})
}

// Delete 删除社区及其活动、报名记录
func (r *CommunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &model.Community{}, "id = ?", id); err != nil {
			return err
		}
		eventIDs := tx.Model(&model.CommunityEvent{}).Select("id").Where("community_id = ?", id)
		if err := tx.Where("event_id IN (?)", eventIDs).Delete(&model.CustomerEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&model.CommunityEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&model.Community{}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, "community", id.String(), model.EventCommunityDeleted, nil)
	})
}

// AppendEvent 追加一条活动
func (r *CommunityRepository) AppendEvent(ctx context.Context, communityID uuid.UUID, ev *model.CommunityEvent) error {
	ev.CommunityID = communityID
	return translate(r.DB.WithContext(ctx).Omit("Attendees").Create(ev).Error, "append event")
}

// MergeEvent 只更新给出的字段，作用域限定在该社区内；id 不存在返回 NotFound
func (r *CommunityRepository) MergeEvent(ctx context.Context, communityID, eventID uuid.UUID, cols map[string]any) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cols) == 0 {
			return exists(tx, &model.CommunityEvent{}, "id = ? AND community_id = ?", eventID, communityID)
		}
		res := tx.Model(&model.CommunityEvent{}).
			Where("id = ? AND community_id = ?", eventID, communityID).
			Updates(cols)
		if res.Error != nil {
			return translate(res.Error, "merge event")
		}
		if res.RowsAffected == 0 {
			return exists(tx, &model.CommunityEvent{}, "id = ? AND community_id = ?", eventID, communityID)
		}
		return nil
	})
}

// exists 记录不存在时返回 ErrNotFound
func exists(tx *gorm.DB, m any, query string, args ...any) error {
	var n int64
	if err := tx.Model(m).Where(query, args...).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
