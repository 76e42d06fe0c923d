package schema

// ShopOrderTable represents the 'shop.order' table
type ShopOrderTable struct {
	Table          string
	ID             string
	CustomerID     string
	ArchitectID    string
	Status         string
	Items          string
	Subtotal       string
	DiscountTotal  string
	Total          string
	Shipping       string
	TrackingNumber string
	CourierStatus  string
	CreatedAt      string
	UpdatedAt      string
}

// ShopOrder is the schema definition for shop.order
var ShopOrder = ShopOrderTable{
	Table:          "shop.order",
	ID:             "id",
	CustomerID:     "customerid",
	ArchitectID:    "architectid",
	Status:         "status",
	Items:          "items",
	Subtotal:       "subtotal",
	DiscountTotal:  "discounttotal",
	Total:          "total",
	Shipping:       "shipping",
	TrackingNumber: "trackingnumber",
	CourierStatus:  "courierstatus",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}

func (t ShopOrderTable) Columns() []string {
	return []string{
		t.ID, t.CustomerID, t.ArchitectID, t.Status, t.Items, t.Subtotal, t.DiscountTotal,
		t.Total, t.Shipping, t.TrackingNumber, t.CourierStatus, t.CreatedAt, t.UpdatedAt,
	}
}
