package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Users         *UserHandler
	Orders        *OrderHandler
	Carts         *CartHandler
	Catalog       *CatalogHandler
	Notifications *NotificationHandler
	Reviews       *ReviewHandler
	Auth          *AuthMiddleware
}

func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Users.handleRegister)
			r.Post("/login", h.Users.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.Require)
				r.Post("/logout", h.Users.handleLogout)
				r.Get("/profile", h.Users.handleProfile)
			})
		})

		r.Route("/order", func(r chi.Router) {
			r.Post("/check-stock", h.Orders.handleCheckStock)
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.Require)
				r.Post("/place", h.Orders.handlePlace)
				r.Post("/userorders", h.Orders.handleUserOrders)
				r.Post("/cancel", h.Orders.handleCancel)
				r.Get("/{orderId}", h.Orders.handleGet)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.Require, h.Auth.RequireAdmin)
				r.Get("/list", h.Orders.handleList)
				r.Post("/status", h.Orders.handleUpdateStatus)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(h.Auth.Require)
			r.Get("/", h.Carts.handleGet)
			r.Post("/update", h.Carts.handleUpdate)
			r.Post("/merge", h.Carts.handleMerge)
			r.Post("/clear", h.Carts.handleClear)
		})

		r.Route("/product", func(r chi.Router) {
			r.With(h.Auth.Optional).Get("/list", h.Catalog.handleListProducts)
			r.With(h.Auth.Optional).Get("/{productId}", h.Catalog.handleGetProduct)
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.Require, h.Auth.RequireAdmin)
				r.Post("/add", h.Catalog.handleCreateProduct)
				r.Post("/update", h.Catalog.handleUpdateProduct)
				r.Post("/remove", h.Catalog.handleDeleteProduct)
			})
		})

		r.Route("/deal", func(r chi.Router) {
			r.With(h.Auth.Optional).Get("/list", h.Catalog.handleListDeals)
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.Require, h.Auth.RequireAdmin)
				r.Post("/add", h.Catalog.handleCreateDeal)
				r.Post("/remove", h.Catalog.handleDeleteDeal)
			})
		})

		r.Route("/review", func(r chi.Router) {
			r.Get("/{productId}", h.Reviews.handleListByProduct)
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.Require)
				r.Post("/add", h.Reviews.handleAddComment)
				r.Post("/reply", h.Reviews.handleReply)
			})
		})

		r.Route("/notification", func(r chi.Router) {
			r.Use(h.Auth.Require)
			r.Get("/list", h.Notifications.handleList)
			r.Post("/read", h.Notifications.handleMarkRead)
			r.Post("/read-all", h.Notifications.handleMarkAllRead)
		})
	})

	return r
}
