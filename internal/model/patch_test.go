package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func ptr[T any](v T) *T { return &v }

func TestProductPatch_ColumnsOnlyGivenFields(t *testing.T) {
	p := ProductPatch{Category: ptr("B")}
	assert.Equal(t, map[string]any{"category": "B"}, p.Columns())
}

func TestProductPatch_EmptyStringKeepsValue(t *testing.T) {
	p := ProductPatch{Name: ptr(""), Status: ptr("active"), SoldByUnit: ptr(false)}
	cols := p.Columns()
	assert.NotContains(t, cols, "name")
	assert.Equal(t, "active", cols["status"])
	assert.Equal(t, false, cols["sold_by_unit"])
}

func TestProductPatch_TaxNullIgnored(t *testing.T) {
	tax := datatypes.JSON("null")
	assert.NotContains(t, ProductPatch{Tax: &tax}.Columns(), "tax")

	tax = datatypes.JSON(`{"rate":5}`)
	assert.Equal(t, datatypes.JSON(`{"rate":5}`), ProductPatch{Tax: &tax}.Columns()["tax"])
}

func TestProductPatch_DeliveryTypes(t *testing.T) {
	types := []string{DeliveryNearBy}
	cols := ProductPatch{DeliveryTypes: &types}.Columns()
	assert.Equal(t, datatypes.JSONSlice[string]{"Near By"}, cols["delivery_types"])
}

func TestCommunityPatch_Columns(t *testing.T) {
	cols := CommunityPatch{Name: ptr("Green"), LogoURL: ptr("uploads/logo.png"), Phone: ptr("")}.Columns()
	assert.Equal(t, map[string]any{"name": "Green", "image_logo_url": "uploads/logo.png"}, cols)
}

func TestSpecPatch_Columns(t *testing.T) {
	assert.Empty(t, SpecPatch{}.Columns())
	assert.Equal(t, map[string]any{"value": ""}, SpecPatch{Value: ptr("")}.Columns())
}

func TestEventPatch_NewEventDefaultsActive(t *testing.T) {
	ev := EventPatch{Title: ptr("Farmers day")}.NewEvent()
	assert.Equal(t, "Farmers day", ev.Title)
	assert.Equal(t, EventActive, ev.Status)

	ev = EventPatch{Status: ptr("Cancelled")}.NewEvent()
	assert.Equal(t, "Cancelled", ev.Status)
}

func TestEventPatch_Columns(t *testing.T) {
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	cols := EventPatch{Location: ptr("Hall"), StartsAt: &start}.Columns()
	assert.Equal(t, map[string]any{"location": "Hall", "starts_at": start}, cols)
}

func TestAllowedFrom(t *testing.T) {
	assert.Equal(t, []string{OrderPending}, AllowedFrom(OrderProcessing))
	assert.ElementsMatch(t, []string{OrderPending, OrderProcessing}, AllowedFrom(OrderCancelled))
	assert.Nil(t, AllowedFrom(OrderPending))
	assert.Nil(t, AllowedFrom("lost"))
}

func TestJSONHelpers(t *testing.T) {
	assert.True(t, IsNullJSON(nil))
	assert.True(t, IsNullJSON(datatypes.JSON(" null ")))
	assert.False(t, IsNullJSON(datatypes.JSON("{}")))

	assert.Equal(t, JSONObject, OrJSON(nil, JSONObject))
	assert.Equal(t, datatypes.JSON("null"), OrJSON(datatypes.JSON("null"), JSONObject))
}

func TestProductBeforeCreateDefaults(t *testing.T) {
	var p Product
	require.NoError(t, p.BeforeCreate(nil))
	assert.NotEqual(t, [16]byte{}, [16]byte(p.ID))
	assert.Equal(t, ProductInactive, p.Status)
	assert.Equal(t, JSONObject, p.Customization)
	assert.Equal(t, JSONNull, p.Subscription)
	assert.False(t, p.HasSubscription())
	assert.NotNil(t, p.DeliveryTypes)
}
