package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/customers"
	"github.com/ray-remotestate/gspot/database/dbhelper"
	"github.com/ray-remotestate/gspot/events"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/utils"
	"github.com/ray-remotestate/gspot/ws"
)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := dbhelper.OrderFilter{WithItems: true}
	if s := q.Get("status"); s != "" {
		f.Status = models.OrderStatus(s)
		if !f.Status.IsValid() {
			utils.RespondError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			utils.RespondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}

	orders, err := h.Orders.ListOrders(r.Context(), f)
	if err != nil {
		logrus.WithError(err).Error("failed to list orders")
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus changes the status and pushes it to live trackers.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		utils.RespondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	order, err := h.Orders.UpdateOrderStatus(r.Context(), id, req.Status)
	if errors.Is(err, models.ErrOrderNotFound) {
		utils.RespondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to update order status")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	watchers := h.Hub.Broadcast(ws.NewStatusUpdate(order.ID, order.Status))
	if err := h.events().Publish(r.Context(), events.NewOrderEvent(events.OrderStatusChanged, order)); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("failed to publish status change")
	}
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
		"watchers": watchers,
	}).Info("order status updated")
	utils.RespondJSON(w, http.StatusOK, order)
}

// roster rebuilds the customer list from every order.
func (h *Handler) roster(r *http.Request) ([]customers.Info, error) {
	orders, err := h.Orders.ListOrders(r.Context(), dbhelper.OrderFilter{})
	if err != nil {
		return nil, err
	}
	return customers.Aggregate(orders), nil
}

type customerList struct {
	Customers []customers.Info    `json:"customers"`
	Sort      customers.SortState `json:"sort"`
	Total     int                 `json:"total"`
}

// ListCustomers supports ?q= search and ?sort=&dir= ordering.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	all, err := h.roster(r)
	if err != nil {
		logrus.WithError(err).Error("failed to load customers")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load customers")
		return
	}
	q := r.URL.Query()
	sort := customers.ParseSort(q.Get("sort"), q.Get("dir"))
	list := customers.Query(all, q.Get("q"), sort)
	if list == nil {
		list = []customers.Info{}
	}
	utils.RespondJSON(w, http.StatusOK, customerList{Customers: list, Sort: sort, Total: len(all)})
}

func (h *Handler) CustomerStats(w http.ResponseWriter, r *http.Request) {
	all, err := h.roster(r)
	if err != nil {
		logrus.WithError(err).Error("failed to load customers")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load customers")
		return
	}
	utils.RespondJSON(w, http.StatusOK, customers.ComputeStats(all))
}

// ExportCustomers downloads the filtered, sorted roster as CSV.
func (h *Handler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	all, err := h.roster(r)
	if err != nil {
		logrus.WithError(err).Error("failed to load customers")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to export customers. Please try again.")
		return
	}
	q := r.URL.Query()
	list := customers.Query(all, q.Get("q"), customers.ParseSort(q.Get("sort"), q.Get("dir")))

	var buf bytes.Buffer
	if err := customers.WriteCSV(&buf, list); err != nil {
		if errors.Is(err, customers.ErrNothingToExport) {
			utils.RespondError(w, http.StatusBadRequest, "No customers to export.")
			return
		}
		logrus.WithError(err).Error("failed to write customers csv")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to export customers. Please try again.")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, customers.ExportFileName(time.Now())))
	w.Header().Set("X-Exported-Count", strconv.Itoa(len(list)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logrus.WithError(err).Warn("failed to send customers csv")
	}
}

// DeleteCustomers removes every order of the selected customers in one
// transaction. On failure the selection is returned unchanged for a retry.
func (h *Handler) DeleteCustomers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []string `json:"keys"`
	}
	if !decode(w, r, &req) {
		return
	}
	selection := customers.NewSelection(req.Keys...)
	if selection.Len() == 0 {
		utils.RespondError(w, http.StatusBadRequest, "no customers selected")
		return
	}

	failed := func() {
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "Failed to delete customer records. Please try again.",
			"selected": selection.Keys(),
		})
	}

	all, err := h.roster(r)
	if err != nil {
		logrus.WithError(err).Error("failed to load customers")
		failed()
		return
	}
	ids := customers.OrderIDs(all, selection)
	deleted, err := h.Orders.DeleteOrders(r.Context(), ids)
	if err != nil {
		logrus.WithError(err).WithField("orders", len(ids)).Error("failed to delete customer orders")
		failed()
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully deleted %d customer(s) and %d associated order(s)!",
			selection.Len(), deleted),
		"deleted_orders": deleted,
	})
}
