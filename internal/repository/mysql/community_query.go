package mysql

import (
	"context"
	"time"

	"Local_Market/internal/model"

	"github.com/google/uuid"
)

// CommunityListFilter 社区列表查询条件，零值字段不参与过滤
type CommunityListFilter struct {
	Name   string // REGEXP
	Status string
	From   *time.Time
	To     *time.Time
}

// Conds 纯函数：选项 -> WHERE 条件
func (f CommunityListFilter) Conds() []Cond {
	var conds []Cond
	if f.Name != "" {
		conds = append(conds, Cond{SQL: "communities.name REGEXP ?", Args: []any{f.Name}})
	}
	if f.Status != "" {
		conds = append(conds, Cond{SQL: "communities.status = ?", Args: []any{f.Status}})
	}
	if f.From != nil {
		conds = append(conds, Cond{SQL: "communities.signup_at >= ?", Args: []any{*f.From}})
	}
	if f.To != nil {
		conds = append(conds, Cond{SQL: "communities.signup_at <= ?", Args: []any{*f.To}})
	}
	return conds
}

type VendorRef struct {
	ID       uuid.UUID `json:"id"`
	ShopName string    `json:"shopName,omitempty"`
}

// CommunitySummary 列表页
type CommunitySummary struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Slug      string                `json:"slug"`
	ShortDesc string                `json:"shortDesc"`
	Images    model.CommunityImages `json:"images"`
	Vendors   []VendorRef           `json:"vendors"`
}

// CommunityCard 通过 code 查询时返回的精简信息
type CommunityCard struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Slug      string                `json:"slug"`
	ShortDesc string                `json:"shortDesc"`
	Images    model.CommunityImages `json:"images"`
}

// CommunityPage 通过 slug 查询的店铺页
type CommunityPage struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	ShortDesc    string                 `json:"shortDesc"`
	Announcement model.Announcement     `json:"announcement"`
	Images       model.CommunityImages  `json:"images"`
	Events       []model.CommunityEvent `json:"events"`
	Vendors      []VendorRef            `json:"vendors"`
}

// CommunityProfile 组织者资料，查询阶段就不选 password
type CommunityProfile struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Code         string                `json:"code"`
	Slug         string                `json:"slug"`
	Images       model.CommunityImages `json:"images"`
	ShortDesc    string                `json:"shortDesc"`
	LongDesc     string                `json:"longDesc"`
	Announcement model.Announcement    `json:"announcement"`
}

var profileColumns = []string{
	"id", "name", "code", "slug", "image_logo_url", "image_background_url",
	"short_desc", "long_desc", "announcement_text", "announcement_updated_at",
}

func toProfile(c *model.Community) *CommunityProfile {
	return &CommunityProfile{
		ID:           c.ID,
		Name:         c.Name,
		Code:         c.Code,
		Slug:         c.Slug,
		Images:       c.Images,
		ShortDesc:    c.ShortDesc,
		LongDesc:     c.LongDesc,
		Announcement: c.Announcement,
	}
}

// FindProfile 组织者资料（不含密码）
func (r *CommunityRepository) FindProfile(ctx context.Context, id uuid.UUID) (*CommunityProfile, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).Select(profileColumns).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, translate(err, "community profile")
	}
	return toProfile(&c), nil
}

func (r *CommunityRepository) FindByCode(ctx context.Context, code string) (*CommunityCard, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).
		Select("id", "name", "slug", "short_desc", "image_logo_url", "image_background_url").
		Where("code = ?", code).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "community by code")
	}
	return &CommunityCard{ID: c.ID, Name: c.Name, Slug: c.Slug, ShortDesc: c.ShortDesc, Images: c.Images}, nil
}

func (r *CommunityRepository) FindBySlug(ctx context.Context, slug string) (*CommunityPage, error) {
	var c model.Community
	err := r.DB.WithContext(ctx).
		Select("id", "name", "short_desc", "announcement_text", "announcement_updated_at",
			"image_logo_url", "image_background_url").
		Preload("Events", orderByCreated).
		Where("slug = ?", slug).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "community by slug")
	}
	vendors, err := r.vendorsOf(ctx, []uuid.UUID{c.ID}, true)
	if err != nil {
		return nil, err
	}
	// 公开页不加载报名名单
	events := withAttendees(c.Events)
	return &CommunityPage{
		ID:           c.ID,
		Name:         c.Name,
		ShortDesc:    c.ShortDesc,
		Announcement: c.Announcement,
		Images:       c.Images,
		Events:       events,
		Vendors:      orEmpty(vendors[c.ID]),
	}, nil
}

// List 社区列表，每个社区附带 vendor id 列表
func (r *CommunityRepository) List(ctx context.Context, f CommunityListFilter) ([]CommunitySummary, error) {
	var rows []model.Community
	q := r.DB.WithContext(ctx).Model(&model.Community{}).
		Select("id", "name", "slug", "short_desc", "image_logo_url", "image_background_url")
	if err := applyConds(q, f.Conds()).Order("signup_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err, "list communities")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.ID)
	}
	vendors, err := r.vendorsOf(ctx, ids, false)
	if err != nil {
		return nil, err
	}
	list := make([]CommunitySummary, 0, len(rows))
	for _, c := range rows {
		list = append(list, CommunitySummary{
			ID:        c.ID,
			Name:      c.Name,
			Slug:      c.Slug,
			ShortDesc: c.ShortDesc,
			Images:    c.Images,
			Vendors:   orEmpty(vendors[c.ID]),
		})
	}
	return list, nil
}

func (r *CommunityRepository) vendorsOf(ctx context.Context, communityIDs []uuid.UUID, withName bool) (map[uuid.UUID][]VendorRef, error) {
	out := map[uuid.UUID][]VendorRef{}
	if len(communityIDs) == 0 {
		return out, nil
	}
	var vendors []model.Vendor
	if err := r.DB.WithContext(ctx).
		Select("id", "community_id", "shop_name").
		Where("community_id IN ?", communityIDs).
		Order("created_at ASC").
		Find(&vendors).Error; err != nil {
		return nil, translate(err, "community vendors")
	}
	for _, v := range vendors {
		ref := VendorRef{ID: v.ID}
		if withName {
			ref.ShopName = v.ShopName
		}
		out[v.CommunityID] = append(out[v.CommunityID], ref)
	}
	return out, nil
}

func orEmpty(v []VendorRef) []VendorRef {
	if v == nil {
		return []VendorRef{}
	}
	return v
}

// ListEventsWithAttendees 社区下所有活动及其报名者
func (r *CommunityRepository) ListEventsWithAttendees(ctx context.Context, communityID uuid.UUID) ([]model.CommunityEvent, error) {
	var events []model.CommunityEvent
	err := r.DB.WithContext(ctx).
		Preload("Attendees", orderByCreated).
		Where("community_id = ?", communityID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "community events")
	}
	return withAttendees(events), nil
}
