package model

import (
	"time"

	"gorm.io/datatypes"
)

// 稀疏更新：只有显式给出（非 nil 且非空串）的字段才会写库，其余保持原值。
// Columns 返回的 map 直接交给 gorm Updates，一条 UPDATE 完成，不做整文档读改写。

func setString(cols map[string]any, column string, v *string) {
	if v != nil && *v != "" {
		cols[column] = *v
	}
}

type ProductPatch struct {
	Name          *string         `json:"name"`
	DeliveryTypes *[]string       `json:"deliveryTypes"`
	Category      *string         `json:"category"`
	Status        *string         `json:"status"`
	ShortDesc     *string         `json:"shortDesc"`
	LongDesc      *string         `json:"longDesc"`
	Disclaimer    *string         `json:"disclaimer"`
	SoldByUnit    *bool           `json:"soldByUnit"`
	Tax           *datatypes.JSON `json:"tax"`
	Nutrition     *string         `json:"-"`
}

func (p ProductPatch) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "name", p.Name)
	setString(cols, "category", p.Category)
	setString(cols, "status", p.Status)
	setString(cols, "short_desc", p.ShortDesc)
	setString(cols, "long_desc", p.LongDesc)
	setString(cols, "disclaimer", p.Disclaimer)
	setString(cols, "nutrition", p.Nutrition)
	if p.DeliveryTypes != nil {
		cols["delivery_types"] = datatypes.JSONSlice[string](*p.DeliveryTypes)
	}
	if p.SoldByUnit != nil {
		cols["sold_by_unit"] = *p.SoldByUnit
	}
	if p.Tax != nil && !IsNullJSON(*p.Tax) {
		cols["tax"] = *p.Tax
	}
	return cols
}

type CommunityPatch struct {
	Name          *string `json:"name"`
	Slug          *string `json:"slug"`
	Code          *string `json:"code"`
	Phone         *string `json:"phone"`
	ShortDesc     *string `json:"shortDesc"`
	LongDesc      *string `json:"longDesc"`
	Status        *string `json:"status"`
	LogoURL       *string `json:"-"`
	BackgroundURL *string `json:"-"`
}

func (p CommunityPatch) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "name", p.Name)
	setString(cols, "slug", p.Slug)
	setString(cols, "code", p.Code)
	setString(cols, "phone", p.Phone)
	setString(cols, "short_desc", p.ShortDesc)
	setString(cols, "long_desc", p.LongDesc)
	setString(cols, "status", p.Status)
	setString(cols, "image_logo_url", p.LogoURL)
	setString(cols, "image_background_url", p.BackgroundURL)
	return cols
}

// SpecPatch 规格条目的字段级合并：未给出的字段保留原值
type SpecPatch struct {
	Name  *string `json:"name"`
	Value *string `json:"value"`
}

func (p SpecPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Value != nil {
		cols["value"] = *p.Value
	}
	return cols
}

type EventPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Status      *string    `json:"status"`
}

func (p EventPatch) Columns() map[string]any {
	cols := map[string]any{}
	setString(cols, "title", p.Title)
	setString(cols, "description", p.Description)
	setString(cols, "location", p.Location)
	setString(cols, "status", p.Status)
	if p.StartsAt != nil {
		cols["starts_at"] = *p.StartsAt
	}
	if p.EndsAt != nil {
		cols["ends_at"] = *p.EndsAt
	}
	return cols
}

// NewEvent 追加活动时使用的初始值，status 缺省为 Active
func (p EventPatch) NewEvent() CommunityEvent {
	ev := CommunityEvent{Status: EventActive, StartsAt: p.StartsAt, EndsAt: p.EndsAt}
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}
	if p.Status != nil && *p.Status != "" {
		ev.Status = *p.Status
	}
	return ev
}
