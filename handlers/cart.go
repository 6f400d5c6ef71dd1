package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/cart"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/session"
	"github.com/ray-remotestate/gspot/utils"
)

type cartView struct {
	Items []cart.Item     `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func viewCart(c *cart.Cart) cartView {
	return cartView{Items: c.Items(), Count: c.Count(), Total: c.TotalPrice()}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, func(sess *session.Session) {
		utils.RespondJSON(w, http.StatusOK, viewCart(sess.Cart))
	})
}

type addOnRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type addToCartRequest struct {
	MenuItemID uuid.UUID      `json:"menu_item_id"`
	Quantity   int            `json:"quantity"`
	Variation  string         `json:"variation"`
	AddOns     []addOnRequest `json:"add_ons"`
}

// AddToCart prices the selection from the menu, ignoring any client prices.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity > cart.MaxQuantity {
		utils.RespondError(w, http.StatusBadRequest, "quantity too large")
		return
	}

	item, err := h.Menu.GetMenuItem(r.Context(), req.MenuItemID)
	if errors.Is(err, models.ErrMenuItemNotFound) {
		utils.RespondError(w, http.StatusNotFound, "menu item not found")
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to load menu item")
		utils.RespondError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	if !item.Available {
		utils.RespondError(w, http.StatusConflict, item.Name+" is currently unavailable")
		return
	}

	var variation *cart.Variation
	if req.Variation != "" {
		v, ok := item.FindVariation(req.Variation)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "unknown variation")
			return
		}
		variation = &cart.Variation{Name: v.Name, PriceDelta: v.Price}
	}

	var addOns []cart.AddOn
	for _, sel := range req.AddOns {
		a, ok := item.FindAddOn(sel.ID)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "unknown add-on")
			return
		}
		if sel.Quantity > cart.MaxQuantity {
			utils.RespondError(w, http.StatusBadRequest, "quantity too large")
			return
		}
		addOns = append(addOns, cart.AddOn{Name: a.Name, Price: a.Price, Quantity: sel.Quantity})
	}

	line := cart.NewItem(item.ID, item.Name, item.BasePrice, variation, addOns)
	withSession(w, r, func(sess *session.Session) {
		sess.Cart.Add(line, req.Quantity)
		utils.RespondJSON(w, http.StatusOK, viewCart(sess.Cart))
	})
}

// UpdateCartItem sets a line's quantity; zero or less removes it.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity > cart.MaxQuantity {
		utils.RespondError(w, http.StatusBadRequest, "quantity too large")
		return
	}
	id := r.URL.Query().Get("id")
	withSession(w, r, func(sess *session.Session) {
		sess.Cart.UpdateQuantity(id, req.Quantity)
		utils.RespondJSON(w, http.StatusOK, viewCart(sess.Cart))
	})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	withSession(w, r, func(sess *session.Session) {
		sess.Cart.Remove(id)
		utils.RespondJSON(w, http.StatusOK, viewCart(sess.Cart))
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	withSession(w, r, func(sess *session.Session) {
		sess.Cart.Clear()
		utils.RespondJSON(w, http.StatusOK, viewCart(sess.Cart))
	})
}
