package database

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ray-remotestate/gspot/database/seed"
	"github.com/ray-remotestate/gspot/models"
)

type recordingSeedStore struct {
	categories []models.Category
	items      []models.MenuItem
	methods    []models.PaymentMethod
}

func (s *recordingSeedStore) UpsertCategory(_ context.Context, c models.Category) error {
	s.categories = append(s.categories, c)
	return nil
}

func (s *recordingSeedStore) UpsertMenuItem(_ context.Context, m *models.MenuItem) error {
	s.items = append(s.items, *m)
	return nil
}

func (s *recordingSeedStore) UpsertPaymentMethod(_ context.Context, pm models.PaymentMethod) error {
	s.methods = append(s.methods, pm)
	return nil
}

func TestSeedDefaultMenu(t *testing.T) {
	f, err := ParseSeed(bytes.NewReader(seed.DefaultMenu))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}

	store := &recordingSeedStore{}
	if err := Seed(context.Background(), store, f); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if len(store.categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(store.categories))
	}
	if len(store.methods) != 3 || store.methods[0].ID != "gcash" || !store.methods[0].Active {
		t.Errorf("unexpected payment methods: %+v", store.methods)
	}

	var siomai *models.MenuItem
	for i := range store.items {
		if store.items[i].Name == "Siomai" {
			siomai = &store.items[i]
		}
	}
	if siomai == nil {
		t.Fatal("Siomai not seeded")
	}
	if siomai.CategoryID != "dim-sum" || siomai.BasePrice.String() != "120" {
		t.Errorf("unexpected Siomai: %+v", siomai)
	}
	if len(siomai.Variations) != 2 || siomai.Variations[1].Price.String() != "30" {
		t.Errorf("unexpected variations: %+v", siomai.Variations)
	}
	if len(siomai.AddOns) != 2 || siomai.AddOns[0].Category != "sauce" {
		t.Errorf("unexpected add-ons: %+v", siomai.AddOns)
	}

	for _, m := range store.items {
		if m.Name == "Beef Tapa" && m.Available {
			t.Error("Beef Tapa should be unavailable")
		}
		if m.Name == "Hakaw" && (m.StockQuantity == nil || *m.StockQuantity != 40) {
			t.Errorf("Hakaw stock = %v", m.StockQuantity)
		}
	}
}

func TestParseSeedRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"unknown key":  "categories:\n  - id: x\n    name: X\n    colour: red\n",
		"missing name":  "categories:\n  - id: x\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseSeed(strings.NewReader(doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSeedRejectsBadPrice(t *testing.T) {
	doc := "categories:\n  - id: x\n    name: X\n    items:\n      - name: Y\n        price: abc\n"
	f, err := ParseSeed(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	store := &recordingSeedStore{}
	if err := Seed(context.Background(), store, f); err == nil {
		t.Fatal("expected a price error")
	}
	if len(store.categories) != 0 {
		t.Error("nothing should be written when a price is invalid")
	}
}
