package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Icon      string    `db:"icon" json:"icon"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type MenuItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	CategoryID  string          `db:"category_id" json:"category"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	BasePrice   decimal.Decimal `db:"base_price" json:"base_price"`
	ImageURL    string          `db:"image_url" json:"image,omitempty"`
	Popular     bool            `db:"popular" json:"popular"`
	Available   bool            `db:"available" json:"available"`
	// StockQuantity is nil when the item is not stock tracked.
	StockQuantity *int        `db:"stock_quantity" json:"stock_quantity,omitempty"`
	Variations    []Variation `db:"-" json:"variations,omitempty"`
	AddOns        []AddOn     `db:"-" json:"add_ons,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

type Variation struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	MenuItemID uuid.UUID       `db:"menu_item_id" json:"-"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
}

type AddOn struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	MenuItemID uuid.UUID       `db:"menu_item_id" json:"-"`
	Name       string          `db:"name" json:"name"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Category   string          `db:"category" json:"category"`
}

// FindVariation returns the variation with the given id or name.
func (m *MenuItem) FindVariation(key string) (Variation, bool) {
	for _, v := range m.Variations {
		if v.ID.String() == key || v.Name == key {
			return v, true
		}
	}
	return Variation{}, false
}

func (m *MenuItem) FindAddOn(key string) (AddOn, bool) {
	for _, a := range m.AddOns {
		if a.ID.String() == key || a.Name == key {
			return a, true
		}
	}
	return AddOn{}, false
}

type PaymentMethod struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	AccountName   string    `db:"account_name" json:"account_name"`
	QRCodeURL     string    `db:"qr_code_url" json:"qr_code_url"`
	Active        bool      `db:"active" json:"active"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
