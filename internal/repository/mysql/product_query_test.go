package mysql

import (
	"testing"

	"Local_Market/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name         string
		delivery     []string
		subscription bool
		want         []string
	}{
		{"local subscriptions wins", []string{model.DeliveryNearBy, model.DeliveryLocalSubscriptions}, false, []string{"Subscription", "Near By"}},
		{"near by", []string{"Pickup", model.DeliveryNearBy}, true, []string{"Near By"}},
		{"subscription only", []string{"Pickup"}, true, []string{"Subscription"}},
		{"nothing", nil, false, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTags(tt.delivery, tt.subscription))
		})
	}
}

func TestBuildPublicFilter_EmptyQuery(t *testing.T) {
	assert.Empty(t, BuildPublicFilter(PublicProductQuery{}))
	assert.Empty(t, BuildPublicFilter(PublicProductQuery{Search: "   "}))
}

func TestBuildPublicFilter_Search(t *testing.T) {
	conds := BuildPublicFilter(PublicProductQuery{Search: "Honey_50%"})
	require.Len(t, conds, 1)
	assert.Contains(t, conds[0].SQL, "LOWER(products.name) LIKE ?")
	assert.Equal(t, []any{`%honey\_50\%%`, `%honey\_50\%%`}, conds[0].Args)
}

func TestBuildPublicFilter_SubscriptionAndScope(t *testing.T) {
	community := uuid.New()
	vendor := uuid.New()
	conds := BuildPublicFilter(PublicProductQuery{
		Type:      "subscription",
		Community: &community,
		Vendor:    &vendor,
		Category:  "Bakery",
	})
	require.Len(t, conds, 4)
	assert.Equal(t, "JSON_TYPE(products.subscription) <> 'NULL'", conds[0].SQL)
	assert.Equal(t, []any{community}, conds[1].Args)
	assert.Equal(t, []any{vendor}, conds[2].Args)
	assert.Equal(t, []any{"Bakery"}, conds[3].Args)
}

func TestBuildPublicFilter_PriceRangeSameInventory(t *testing.T) {
	min := decimal.NewFromInt(5)
	max := decimal.NewFromInt(20)
	conds := BuildPublicFilter(PublicProductQuery{MinPrice: &min, MaxPrice: &max})
	require.Len(t, conds, 1)
	assert.Equal(t,
		"EXISTS (SELECT 1 FROM inventories WHERE inventories.product_id = products.id AND inventories.price >= ? AND inventories.price <= ?)",
		conds[0].SQL)
	assert.Equal(t, []any{min, max}, conds[0].Args)

	conds = BuildPublicFilter(PublicProductQuery{MaxPrice: &max})
	require.Len(t, conds, 1)
	assert.NotContains(t, conds[0].SQL, ">=")
}

func TestPublicOrder(t *testing.T) {
	assert.Equal(t, "products.name ASC, products.id ASC", publicOrder("ascending"))
	assert.Equal(t, "products.name DESC, products.id ASC", publicOrder("descending"))
	assert.Equal(t, "products.created_at ASC, products.id ASC", publicOrder(""))
	assert.Equal(t, "products.created_at ASC, products.id ASC", publicOrder("bogus"))
}

func TestRepresentativeInventory(t *testing.T) {
	assert.Nil(t, RepresentativeInventory(nil))

	invs := []model.Inventory{
		{ID: uuid.New(), Price: decimal.NewFromInt(1)},
		{ID: uuid.New(), Price: decimal.NewFromInt(2), Image: strPtr("a.png")},
		{ID: uuid.New(), Price: decimal.NewFromInt(3), Image: strPtr("b.png")},
	}
	rep := RepresentativeInventory(invs)
	require.NotNil(t, rep)
	assert.Equal(t, invs[1].ID, rep.ID)
}

func TestProjectPublicCard_Defaults(t *testing.T) {
	row := PublicRow{ID: uuid.New(), Name: "Bread", Category: "Bakery", Subscription: datatypes.JSON("null")}
	card := ProjectPublicCard(row, nil)
	assert.True(t, card.Price.Equal(decimal.Zero))
	assert.Equal(t, "", card.Image)
	assert.Equal(t, "", card.ShopName)
	assert.Equal(t, []string{}, card.Tags)

	row.ShopName = "Corner Shop"
	row.Subscription = datatypes.JSON(`{"interval":"week"}`)
	card = ProjectPublicCard(row, &model.Inventory{Price: decimal.RequireFromString("4.50"), Image: strPtr("x.jpg")})
	assert.Equal(t, "Corner Shop", card.ShopName)
	assert.Equal(t, "x.jpg", card.Image)
	assert.True(t, card.Price.Equal(decimal.RequireFromString("4.5")))
	assert.Equal(t, []string{"Subscription"}, card.Tags)
}

func TestVendorProductQuery_Conds(t *testing.T) {
	vendor := uuid.New()
	conds := VendorProductQuery{VendorID: vendor}.Conds()
	require.Len(t, conds, 1)
	assert.Equal(t, []any{vendor}, conds[0].Args)

	conds = VendorProductQuery{VendorID: vendor, Name: "Jam", ID: "0042", SKU: "ignored-here"}.Conds()
	require.Len(t, conds, 3)
	assert.Equal(t, []any{"%jam%"}, conds[1].Args)
	assert.Equal(t, "LOWER(products.number) LIKE ?", conds[2].SQL)
}

func TestVendorOrder(t *testing.T) {
	assert.Equal(t, "products.created_at DESC, products.id ASC", vendorOrder(""))
	assert.Equal(t, "products.created_at ASC, products.id ASC", vendorOrder("oldest"))
	assert.Equal(t, "products.status ASC, products.created_at DESC", vendorOrder("active"))
	assert.Equal(t, "products.status DESC, products.created_at DESC", vendorOrder("inactive"))
}

func TestFirstSKU(t *testing.T) {
	specs := []model.ProductSpecification{
		{Name: "weight", Value: "1kg"},
		{Name: "sku", Value: "AB-1"},
		{Name: "sku", Value: "AB-2"},
	}
	assert.Equal(t, "AB-1", FirstSKU(specs))
	assert.Equal(t, "", FirstSKU([]model.ProductSpecification{{Name: "SKU", Value: "no"}}))
}

func TestFilterBySKU(t *testing.T) {
	rows := []VendorProductRow{{Name: "a", SKU: "HON-001"}, {Name: "b", SKU: ""}, {Name: "c", SKU: "jam-7"}}
	assert.Len(t, FilterBySKU(rows, ""), 3)

	got := FilterBySKU(rows, "hon")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)

	assert.Empty(t, FilterBySKU(rows, "zzz"))
}
