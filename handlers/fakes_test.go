package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/gspot/checkout"
	"github.com/ray-remotestate/gspot/database/dbhelper"
	"github.com/ray-remotestate/gspot/middlewares"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/session"
	"github.com/ray-remotestate/gspot/tracking"
	"github.com/ray-remotestate/gspot/ws"
)

var siomaiID = uuid.MustParse("6f1c2a7e-0d4b-4c1e-9b7a-3c4d5e6f7a8b")

// fakeStore backs every store interface with in-memory data.
type fakeStore struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*models.MenuItem
	orders    []models.Order
	createErr error
	deleteErr error
	deleted   []uuid.UUID
}

func newFakeStore() *fakeStore {
	siomai := &models.MenuItem{
		ID:         siomaiID,
		CategoryID: "dim-sum",
		Name:       "Siomai",
		BasePrice:  decimal.NewFromInt(150),
		Available:  true,
		Variations: []models.Variation{
			{ID: uuid.New(), Name: "8 pcs", Price: decimal.NewFromInt(30)},
		},
		AddOns: []models.AddOn{
			{ID: uuid.New(), Name: "Chili Oil", Price: decimal.NewFromInt(15)},
		},
	}
	return &fakeStore{items: map[uuid.UUID]*models.MenuItem{siomaiID: siomai}}
}

func (f *fakeStore) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "dim-sum", Name: "Dim Sum", Active: true}}, nil
}

func (f *fakeStore) ListMenu(_ context.Context, _ string, includeUnavailable bool) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, m := range f.items {
		if m.Available || includeUnavailable {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMenuItem(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, models.ErrMenuItemNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) CreateMenuItem(_ context.Context, m *models.MenuItem) error {
	m.ID = uuid.New()
	f.items[m.ID] = m
	return nil
}

func (f *fakeStore) SetMenuItemAvailability(_ context.Context, id uuid.UUID, available bool) error {
	m, ok := f.items[id]
	if !ok {
		return models.ErrMenuItemNotFound
	}
	m.Available = available
	return nil
}

func (f *fakeStore) ListPaymentMethods(context.Context) ([]models.PaymentMethod, error) {
	return []models.PaymentMethod{{ID: "gcash", Name: "GCash", Active: true}}, nil
}

func (f *fakeStore) GetPaymentMethod(_ context.Context, id string) (*models.PaymentMethod, error) {
	if id == "gcash" {
		return &models.PaymentMethod{ID: "gcash", Name: "GCash", Active: true}, nil
	}
	return nil, models.ErrPaymentMethodNotFound
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	f.orders = append([]models.Order{*o}, f.orders...)
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			return &f.orders[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (f *fakeStore) ListOrders(_ context.Context, flt dbhelper.OrderFilter) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if flt.Status == "" || o.Status == flt.Status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return &f.orders[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (f *fakeStore) DeleteOrders(_ context.Context, ids []uuid.UUID) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.deleted = append(f.deleted, ids...)
	return int64(len(ids)), nil
}

func (f *fakeStore) SearchOrderByID(_ context.Context, term string) (*models.Order, error) {
	for i := range f.orders {
		if tracking.MatchesID(f.orders[i].ID.String(), term) {
			return &f.orders[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (f *fakeStore) RecentOrders(_ context.Context, limit int) ([]models.Order, error) {
	return f.orders, nil
}

func (f *fakeStore) LatestOrderByContact(_ context.Context, contact string) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ContactNumber == contact {
			return &f.orders[i], nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func newTestHandler(store *fakeStore) *Handler {
	return &Handler{
		Menu:     store,
		Orders:   store,
		Checkout: &checkout.Service{Orders: store, Payments: store, PageID: "GSpotHangout2025"},
		Tracking: &tracking.Service{Store: store},
		Hub:      ws.NewHub(),
		Sessions: session.NewStore(time.Hour),
	}
}

// testRouter mounts the handlers the tests drive, mirroring the server's paths.
func testRouter(h *Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/menu", h.GetMenu).Methods(http.MethodGet)
	r.HandleFunc("/orders/track", h.TrackOrder).Methods(http.MethodGet)
	r.HandleFunc("/admin/orders/{id}/status", h.UpdateOrderStatus).Methods(http.MethodPatch)
	r.HandleFunc("/admin/customers", h.ListCustomers).Methods(http.MethodGet)
	r.HandleFunc("/admin/customers/export", h.ExportCustomers).Methods(http.MethodGet)
	r.HandleFunc("/admin/customers/delete", h.DeleteCustomers).Methods(http.MethodPost)
	r.HandleFunc("/admin/menu-items/{id}/availability", h.SetMenuItemAvailability).Methods(http.MethodPatch)

	s := r.NewRoute().Subrouter()
	s.Use(middlewares.SessionMiddleware(h.Sessions))
	s.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	s.HandleFunc("/cart/items", h.AddToCart).Methods(http.MethodPost)
	s.HandleFunc("/cart/items", h.UpdateCartItem).Methods(http.MethodPut)
	s.HandleFunc("/checkout", h.GetCheckout).Methods(http.MethodGet)
	s.HandleFunc("/checkout/details", h.UpdateDetails).Methods(http.MethodPut)
	s.HandleFunc("/checkout/proceed", h.ProceedToPayment).Methods(http.MethodPost)
	s.HandleFunc("/checkout/back", h.BackToDetails).Methods(http.MethodPost)
	s.HandleFunc("/checkout/receipt", h.UploadReceipt).Methods(http.MethodPost)
	s.HandleFunc("/checkout/place", h.PlaceOrder).Methods(http.MethodPost)
	return r
}
