package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/utils"
)

type menuSection struct {
	models.Category
	Items []models.MenuItem `json:"items"`
}

// GetMenu returns the active categories with their available items.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Menu.ListCategories(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to list categories")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}
	items, err := h.Menu.ListMenu(r.Context(), r.URL.Query().Get("category"), false)
	if err != nil {
		logrus.WithError(err).Error("failed to list menu items")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}

	byCategory := make(map[string][]models.MenuItem)
	for _, it := range items {
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it)
	}
	sections := []menuSection{}
	for _, c := range categories {
		if len(byCategory[c.ID]) == 0 {
			continue
		}
		sections = append(sections, menuSection{Category: c, Items: byCategory[c.ID]})
	}
	utils.RespondJSON(w, http.StatusOK, sections)
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Menu.ListCategories(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to list categories")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	utils.RespondJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Menu.ListPaymentMethods(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to list payment methods")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load payment methods")
		return
	}
	utils.RespondJSON(w, http.StatusOK, methods)
}

// ListMenuItems is the admin view, unavailable items included.
func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Menu.ListMenu(r.Context(), r.URL.Query().Get("category"), true)
	if err != nil {
		logrus.WithError(err).Error("failed to list menu items")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load menu")
		return
	}
	utils.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req models.MenuItem
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CategoryID == "" {
		utils.RespondError(w, http.StatusBadRequest, "name and category are required")
		return
	}
	if req.BasePrice.LessThan(decimal.Zero) {
		utils.RespondError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		utils.RespondError(w, http.StatusBadRequest, "stock must not be negative")
		return
	}

	if err := h.Menu.CreateMenuItem(r.Context(), &req); err != nil {
		if errors.Is(err, models.ErrMissingIdentifiers) {
			utils.RespondError(w, http.StatusBadRequest, "unknown category")
			return
		}
		logrus.WithError(err).Error("failed to create menu item")
		utils.RespondError(w, http.StatusInternalServerError, "failed to create menu item")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, req)
}

func (h *Handler) SetMenuItemAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Available *bool `json:"available"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Available == nil {
		utils.RespondError(w, http.StatusBadRequest, "available is required")
		return
	}

	err := h.Menu.SetMenuItemAvailability(r.Context(), id, *req.Available)
	if errors.Is(err, models.ErrMenuItemNotFound) {
		utils.RespondError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to update availability")
		utils.RespondError(w, http.StatusInternalServerError, "failed to update menu item")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"id": id, "available": *req.Available})
}
