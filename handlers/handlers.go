package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/gspot/checkout"
	"github.com/ray-remotestate/gspot/database/dbhelper"
	"github.com/ray-remotestate/gspot/events"
	"github.com/ray-remotestate/gspot/middlewares"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/session"
	"github.com/ray-remotestate/gspot/tracking"
	"github.com/ray-remotestate/gspot/utils"
	"github.com/ray-remotestate/gspot/ws"
)

type MenuStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListMenu(ctx context.Context, category string, includeUnavailable bool) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, m *models.MenuItem) error
	SetMenuItemAvailability(ctx context.Context, id uuid.UUID, available bool) error
	ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
}

type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f dbhelper.OrderFilter) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	DeleteOrders(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type UserStore interface {
	GetUserByPassword(ctx context.Context, email, password string) (*models.User, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// Handler holds what the HTTP layer needs. Every field is required except
// Events, which defaults to a no-op publisher.
type Handler struct {
	Menu     MenuStore
	Orders   OrderStore
	Users    UserStore
	Checkout *checkout.Service
	Tracking *tracking.Service
	Hub      *ws.Hub
	Events   events.Publisher
	Sessions *session.Store
}

func (h *Handler) events() events.Publisher {
	if h.Events == nil {
		return events.Noop{}
	}
	return h.Events
}

// withSession locks the request's session for the duration of fn.
func withSession(w http.ResponseWriter, r *http.Request, fn func(sess *session.Session)) {
	sess, ok := middlewares.GetSession(r)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	sess.Lock()
	defer sess.Unlock()
	fn(sess)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request")
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"alive": true})
}
