package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/velora/storefront/internal/cart"
	"github.com/velora/storefront/internal/catalog"
	"github.com/velora/storefront/internal/checkout"
	"github.com/velora/storefront/internal/httpx"
	"github.com/velora/storefront/internal/order"
	"github.com/velora/storefront/internal/settings"
)

const sessionCookie = "cart_session"

func newRouter(log *zap.Logger, products catalog.Repository, store settings.Repository,
	carts cart.SessionStore, checkoutSvc *checkout.Service) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.GET("/products", listProductsHandler(products))
	r.GET("/products/:id", getProductHandler(products))
	r.GET("/settings", getSettingsHandler(store, log))

	withCart := r.Group("/", cartSession())
	withCart.GET("/cart", getCartHandler(carts))
	withCart.POST("/cart/items", addCartItemHandler(products, carts))
	withCart.PUT("/cart/items/:product_id", updateCartItemHandler(carts))
	withCart.DELETE("/cart/items/:product_id", removeCartItemHandler(carts))
	withCart.DELETE("/cart", clearCartHandler(carts))
	withCart.POST("/checkout", checkoutHandler(checkoutSvc, carts))

	return r
}

// cartSession binds the request to a cart session id, minting one on first
// contact. Clients may also pass the id explicitly via X-Cart-Session.
func cartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetHeader("X-Cart-Session")
		if sid == "" {
			sid, _ = c.Cookie(sessionCookie)
		}
		if sid == "" {
			sid = uuid.NewString()
			c.SetCookie(sessionCookie, sid, 7*24*3600, "/", "", false, true)
		}
		c.Set("cart_session", sid)
		c.Next()
	}
}

func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := catalog.Query{
			Q:            c.Query("q"),
			Category:     c.Query("category"),
			FeaturedOnly: c.Query("featured") == "true",
			ActiveOnly:   true, // shoppers never see inactive products
			Limit:        limit,
			Offset:       offset,
		}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "failed to list products"})
			return
		}
		if items == nil {
			items = []catalog.Product{}
		}
		c.JSON(http.StatusOK, catalog.ListResponse{Q: q.Q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil || !p.IsActive {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func getSettingsHandler(repo settings.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := repo.Get(c.Request.Context())
		if err != nil {
			log.Warn("loading store settings failed", zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": "store settings not available"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func cartResponse(c *cart.Cart) gin.H {
	return gin.H{
		"items":       c.Items(),
		"total_items": c.TotalItems(),
		"total_price": c.TotalPrice().StringFixed(2),
	}
}

func loadCart(c *gin.Context, carts cart.SessionStore) (*cart.Cart, string, bool) {
	sid := c.GetString("cart_session")
	crt, err := carts.Load(c.Request.Context(), sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return nil, "", false
	}
	return crt, sid, true
}

func getCartHandler(carts cart.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		crt, _, ok := loadCart(c, carts)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, cartResponse(crt))
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

func addCartItemHandler(products catalog.Repository, carts cart.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		p, err := products.GetByID(c.Request.Context(), req.ProductID)
		if err != nil || !p.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product does not exist"})
			return
		}
		crt, sid, ok := loadCart(c, carts)
		if !ok {
			return
		}
		crt.AddItem(*p, req.Quantity)
		if err := carts.Save(c.Request.Context(), sid, crt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(crt))
	}
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func updateCartItemHandler(carts cart.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		crt, sid, ok := loadCart(c, carts)
		if !ok {
			return
		}
		crt.UpdateQuantity(c.Param("product_id"), req.Quantity)
		if err := carts.Save(c.Request.Context(), sid, crt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(crt))
	}
}

func removeCartItemHandler(carts cart.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		crt, sid, ok := loadCart(c, carts)
		if !ok {
			return
		}
		crt.RemoveItem(c.Param("product_id"))
		if err := carts.Save(c.Request.Context(), sid, crt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(crt))
	}
}

func clearCartHandler(carts cart.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetString("cart_session")
		if err := carts.Drop(c.Request.Context(), sid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart.New()))
	}
}

func checkoutHandler(svc *checkout.Service, carts cart.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var info checkout.ContactInfo
		if err := c.ShouldBindJSON(&info); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		crt, sid, ok := loadCart(c, carts)
		if !ok {
			return
		}

		orderID, err := svc.Submit(c.Request.Context(), crt, info)
		if err != nil {
			var vErr *checkout.ValidationError
			switch {
			case errors.Is(err, checkout.ErrEmptyCart):
				c.JSON(http.StatusBadRequest, gin.H{"error": "your cart is empty"})
			case errors.As(err, &vErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
			case errors.Is(err, order.ErrInsufficientStock):
				c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "there was an error processing your order, please try again"})
			}
			return
		}

		_ = carts.Drop(c.Request.Context(), sid)
		c.JSON(http.StatusCreated, gin.H{"order_id": orderID})
	}
}
