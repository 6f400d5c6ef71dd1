package database

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ray-remotestate/gspot/models"
)

// SeedStore is the write side the seed loader needs.
type SeedStore interface {
	UpsertCategory(ctx context.Context, c models.Category) error
	UpsertMenuItem(ctx context.Context, m *models.MenuItem) error
	UpsertPaymentMethod(ctx context.Context, pm models.PaymentMethod) error
}

type SeedFile struct {
	Categories     []SeedCategory      `yaml:"categories"`
	PaymentMethods []SeedPaymentMethod `yaml:"payment_methods"`
}

type SeedCategory struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Icon      string     `yaml:"icon"`
	SortOrder int        `yaml:"sort_order"`
	Inactive  bool       `yaml:"inactive"`
	Items     []SeedItem `yaml:"items"`
}

type SeedItem struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Price       string       `yaml:"price"`
	ImageURL    string       `yaml:"image_url"`
	Popular     bool         `yaml:"popular"`
	Unavailable bool         `yaml:"unavailable"`
	Stock       *int         `yaml:"stock"`
	Variations  []SeedOption `yaml:"variations"`
	AddOns      []SeedOption `yaml:"add_ons"`
}

type SeedOption struct {
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Category string `yaml:"category"`
}

type SeedPaymentMethod struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	AccountNumber string `yaml:"account_number"`
	AccountName   string `yaml:"account_name"`
	QRCodeURL     string `yaml:"qr_code_url"`
	SortOrder     int    `yaml:"sort_order"`
	Inactive      bool   `yaml:"inactive"`
}

// ParseSeed decodes a seed document, rejecting unknown keys.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for _, c := range f.Categories {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("category %q: id and name are required", c.ID)
		}
	}
	return &f, nil
}

// MenuItems converts the category's items, parsing every price.
func (c SeedCategory) MenuItems() ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0, len(c.Items))
	for _, it := range c.Items {
		base, err := parsePrice(it.Price)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", c.ID, it.Name, err)
		}
		m := models.MenuItem{
			CategoryID:    c.ID,
			Name:          it.Name,
			Description:   it.Description,
			BasePrice:     base,
			ImageURL:      it.ImageURL,
			Popular:       it.Popular,
			Available:     !it.Unavailable,
			StockQuantity: it.Stock,
		}
		for _, v := range it.Variations {
			price, err := parsePrice(v.Price)
			if err != nil {
				return nil, fmt.Errorf("%s/%s variation %s: %w", c.ID, it.Name, v.Name, err)
			}
			m.Variations = append(m.Variations, models.Variation{Name: v.Name, Price: price})
		}
		for _, a := range it.AddOns {
			price, err := parsePrice(a.Price)
			if err != nil {
				return nil, fmt.Errorf("%s/%s add-on %s: %w", c.ID, it.Name, a.Name, err)
			}
			m.AddOns = append(m.AddOns, models.AddOn{Name: a.Name, Price: price, Category: a.Category})
		}
		items = append(items, m)
	}
	return items, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", s)
	}
	return d, nil
}

// Seed upserts every category, menu item and payment method in f.
func Seed(ctx context.Context, store SeedStore, f *SeedFile) error {
	var itemCount int
	for _, c := range f.Categories {
		items, err := c.MenuItems()
		if err != nil {
			return err
		}
		if err := store.UpsertCategory(ctx, models.Category{
			ID:        c.ID,
			Name:      c.Name,
			Icon:      c.Icon,
			SortOrder: c.SortOrder,
			Active:    !c.Inactive,
		}); err != nil {
			return fmt.Errorf("category %s: %w", c.ID, err)
		}
		for i := range items {
			if err := store.UpsertMenuItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("menu item %s: %w", items[i].Name, err)
			}
		}
		itemCount += len(items)
	}
	for _, pm := range f.PaymentMethods {
		if err := store.UpsertPaymentMethod(ctx, models.PaymentMethod{
			ID:            pm.ID,
			Name:          pm.Name,
			AccountNumber: pm.AccountNumber,
			AccountName:   pm.AccountName,
			QRCodeURL:     pm.QRCodeURL,
			Active:        !pm.Inactive,
			SortOrder:     pm.SortOrder,
		}); err != nil {
			return fmt.Errorf("payment method %s: %w", pm.ID, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"categories":      len(f.Categories),
		"menu_items":      itemCount,
		"payment_methods": len(f.PaymentMethods),
	}).Info("seed applied")
	return nil
}
