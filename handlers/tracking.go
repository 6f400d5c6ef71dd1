package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/tracking"
	"github.com/ray-remotestate/gspot/utils"
	"github.com/ray-remotestate/gspot/ws"
)

type trackedOrder struct {
	*models.Order
	ShortID       string `json:"short_id"`
	StatusMessage string `json:"status_message"`
}

// TrackOrder looks an order up by ?order_id= (any id fragment) or ?phone=.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		order    *models.Order
		err      error
		notFound string
	)
	if phone := strings.TrimSpace(q.Get("phone")); phone != "" {
		order, err = h.Tracking.ByPhone(r.Context(), phone)
		notFound = "No order found with this phone number"
	} else {
		order, err = h.Tracking.ByID(r.Context(), q.Get("order_id"))
		notFound = "No order found with this ID"
	}

	switch {
	case errors.Is(err, tracking.ErrEmptyQuery):
		utils.RespondError(w, http.StatusBadRequest, "Please enter a search value")
	case errors.Is(err, models.ErrOrderNotFound):
		utils.RespondError(w, http.StatusNotFound, notFound)
	case err != nil:
		logrus.WithError(err).Error("order search failed")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to search for order. Please try again.")
	default:
		utils.RespondJSON(w, http.StatusOK, trackedOrder{
			Order:         order,
			ShortID:       order.ShortID(),
			StatusMessage: order.Status.Message(),
		})
	}
}

// LiveStatus upgrades to a websocket that receives the order's status
// changes.
func (h *Handler) LiveStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	order, err := h.Orders.GetOrder(r.Context(), id)
	if errors.Is(err, models.ErrOrderNotFound) {
		utils.RespondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to load order")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	h.Hub.Serve(w, r, ws.NewStatusUpdate(order.ID, order.Status))
}
