package handlers

import (
	"net/http"
	"os"

	"storefront-service/internal/auth"
	"storefront-service/internal/backend"
	"storefront-service/internal/cart"
	"storefront-service/internal/orders"
	"storefront-service/internal/session"
	"storefront-service/internal/stores/kafka"
	"storefront-service/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	client   *backend.Client
	sessions session.Store
	carts    *cart.Registry
	orders   *orders.Service
	k        *kafka.Conf
}

func NewHandler(client *backend.Client, sessions session.Store, carts *cart.Registry,
	o *orders.Service, k *kafka.Conf) *Handler {
	return &Handler{
		client:   client,
		sessions: sessions,
		carts:    carts,
		orders:   o,
		k:        k,
	}
}

func API(endpointPrefix string, keys *auth.Keys, sessions session.Store, client *backend.Client,
	carts *cart.Registry, o *orders.Service, kafkaConf *kafka.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(keys, sessions, carts)
	if err != nil {
		panic(err)
	}
	h := NewHandler(client, sessions, carts, o, kafkaConf)

	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	v1 := r.Group(endpointPrefix)
	{
		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/register", h.Register)
		v1.GET("/unauthorized", h.Unauthorized)
		v1.GET("/notfound", h.NotFound)

		authed := v1.Group("")
		authed.Use(m.Authentication())
		{
			authed.POST("/auth/logout", h.Logout)
			authed.GET("/navigation", h.Navigation)

			authed.GET("/client/cart", m.Authorize(h.GetCart, auth.RoleClient))
			authed.POST("/client/cart/items", m.Authorize(h.AddItem, auth.RoleClient))
			authed.PUT("/client/cart/items/:id", m.Authorize(h.UpdateQuantity, auth.RoleClient))
			authed.DELETE("/client/cart/items/:id", m.Authorize(h.RemoveItem, auth.RoleClient))
			authed.DELETE("/client/cart", m.Authorize(h.ClearCart, auth.RoleClient))
			authed.POST("/client/cart/checkout", m.Authorize(h.Checkout, auth.RoleClient))
			authed.GET("/client/orders", m.Authorize(h.ListOrders, auth.RoleClient))

			authed.GET("/catalog", h.ListProducts)
			authed.GET("/catalog/:id", h.GetProduct)
			authed.GET("/reports/:name", m.AuthorizeCapability(h.DownloadReport, auth.CapViewReports))
		}
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Unauthorized is the landing endpoint for globally handled 401/403s.
func (h *Handler) Unauthorized(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "You do not have access to this page"})
}

// NotFound is the landing endpoint for globally handled 404s.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "The requested page does not exist"})
}
