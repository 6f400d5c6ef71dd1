package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/gspot/handlers"
	"github.com/ray-remotestate/gspot/middlewares"
	"github.com/ray-remotestate/gspot/models"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(h *handlers.Handler) *Server {
	router := mux.NewRouter()
	router.Use(middlewares.LoggingMiddleware)

	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	router.HandleFunc("/menu", h.GetMenu).Methods(http.MethodGet)
	router.HandleFunc("/categories", h.GetCategories).Methods(http.MethodGet)
	router.HandleFunc("/payment-methods", h.GetPaymentMethods).Methods(http.MethodGet)
	router.HandleFunc("/orders/track", h.TrackOrder).Methods(http.MethodGet)
	router.HandleFunc("/orders/{id}/live", h.LiveStatus).Methods(http.MethodGet)

	router.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/refresh", h.RefreshToken).Methods(http.MethodPost)
	router.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)

	// storefront session: cart and checkout
	store := router.NewRoute().Subrouter()
	store.Use(middlewares.SessionMiddleware(h.Sessions))

	store.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	store.HandleFunc("/cart", h.ClearCart).Methods(http.MethodDelete)
	store.HandleFunc("/cart/items", h.AddToCart).Methods(http.MethodPost)
	store.HandleFunc("/cart/items", h.UpdateCartItem).Methods(http.MethodPut)
	store.HandleFunc("/cart/items", h.RemoveCartItem).Methods(http.MethodDelete)

	store.HandleFunc("/checkout", h.GetCheckout).Methods(http.MethodGet)
	store.HandleFunc("/checkout/details", h.UpdateDetails).Methods(http.MethodPut)
	store.HandleFunc("/checkout/proceed", h.ProceedToPayment).Methods(http.MethodPost)
	store.HandleFunc("/checkout/back", h.BackToDetails).Methods(http.MethodPost)
	store.HandleFunc("/checkout/payment-method", h.SelectPaymentMethod).Methods(http.MethodPut)
	store.HandleFunc("/checkout/receipt", h.UploadReceipt).Methods(http.MethodPost)
	store.HandleFunc("/checkout/receipt", h.RemoveReceipt).Methods(http.MethodDelete)
	store.HandleFunc("/checkout/place", h.PlaceOrder).Methods(http.MethodPost)

	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)

	// admin n staff
	staff := authRoutes.PathPrefix("/admin").Subrouter()
	staff.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin, models.RoleStaff))

	staff.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet)
	staff.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods(http.MethodPatch)
	staff.HandleFunc("/customers", h.ListCustomers).Methods(http.MethodGet)
	staff.HandleFunc("/customers/stats", h.CustomerStats).Methods(http.MethodGet)
	staff.HandleFunc("/menu-items", h.ListMenuItems).Methods(http.MethodGet)

	// admin only
	admin := authRoutes.PathPrefix("/admin").Subrouter()
	admin.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin))

	admin.HandleFunc("/customers/export", h.ExportCustomers).Methods(http.MethodGet)
	admin.HandleFunc("/customers/delete", h.DeleteCustomers).Methods(http.MethodPost)
	admin.HandleFunc("/menu-items", h.CreateMenuItem).Methods(http.MethodPost)
	admin.HandleFunc("/menu-items/{id}/availability", h.SetMenuItemAvailability).Methods(http.MethodPatch)

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
