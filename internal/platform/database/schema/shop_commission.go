package schema

// ShopCommissionTable represents the 'shop.commission' table
type ShopCommissionTable struct {
	Table       string
	ID          string
	OrderID     string
	ArchitectID string
	Rate        string
	Amount      string
	Status      string
	PayoutID    string
	CreatedAt   string
	UpdatedAt   string
}

// ShopCommission is the schema definition for shop.commission
var ShopCommission = ShopCommissionTable{
	Table:       "shop.commission",
	ID:          "id",
	OrderID:     "orderid",
	ArchitectID: "architectid",
	Rate:        "rate",
	Amount:      "amount",
	Status:      "status",
	PayoutID:    "payoutid",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t ShopCommissionTable) Columns() []string {
	return []string{
		t.ID, t.OrderID, t.ArchitectID, t.Rate, t.Amount,
		t.Status, t.PayoutID, t.CreatedAt, t.UpdatedAt,
	}
}

// ShopPayoutTable represents the 'shop.payout' table
type ShopPayoutTable struct {
	Table       string
	ID          string
	ArchitectID string
	Amount      string
	Reference   string
	CreatedBy   string
	CreatedAt   string
}

// ShopPayout is the schema definition for shop.payout
var ShopPayout = ShopPayoutTable{
	Table:       "shop.payout",
	ID:          "id",
	ArchitectID: "architectid",
	Amount:      "amount",
	Reference:   "reference",
	CreatedBy:   "createdby",
	CreatedAt:   "createdat",
}

func (t ShopPayoutTable) Columns() []string {
	return []string{t.ID, t.ArchitectID, t.Amount, t.Reference, t.CreatedBy, t.CreatedAt}
}
