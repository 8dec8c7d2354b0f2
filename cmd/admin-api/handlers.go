package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velora/storefront/internal/analytics"
	"github.com/velora/storefront/internal/auth"
	"github.com/velora/storefront/internal/catalog"
	"github.com/velora/storefront/internal/httpx"
	"github.com/velora/storefront/internal/order"
	"github.com/velora/storefront/internal/settings"
)

func newRouter(log *zap.Logger, authSvc *auth.Service, orders order.Repository,
	products catalog.Repository, store settings.Repository,
	analyticsSvc *analytics.Service) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/auth/signup", signUpHandler(authSvc))
	r.POST("/auth/signin", signInHandler(authSvc))

	admin := r.Group("/", auth.Middleware(authSvc))
	admin.POST("/auth/signout", signOutHandler(authSvc))
	admin.GET("/auth/me", meHandler())

	admin.GET("/orders", listOrdersHandler(orders))
	admin.GET("/orders/:id", getOrderHandler(orders))
	admin.GET("/orders/:id/items", getOrderItemsHandler(orders, log))
	admin.PUT("/orders/:id/status", updateOrderStatusHandler(orders))

	admin.GET("/dashboard", dashboardHandler(analyticsSvc))
	admin.GET("/analytics", analyticsReportHandler(analyticsSvc))

	admin.GET("/settings", getSettingsHandler(store))
	admin.PUT("/settings", updateSettingsHandler(store))

	admin.GET("/products", listProductsHandler(products))
	admin.POST("/products", createProductHandler(products))
	admin.PUT("/products/:id", updateProductHandler(products))
	admin.DELETE("/products/:id", deleteProductHandler(products))

	return r
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func signUpHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		u, err := svc.SignUp(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrAlreadyExist) {
				c.JSON(http.StatusConflict, gin.H{"error": "admin user already exists"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func signInHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		token, err := svc.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func signOutHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		_ = svc.SignOut(c.Request.Context(), header[len("Bearer "):])
		c.Status(http.StatusNoContent)
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, _ := c.Get("admin")
		c.JSON(http.StatusOK, admin)
	}
}

func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := repo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
			return
		}
		filtered := order.Filter(orders, c.Query("search"), c.Query("status"))
		c.JSON(http.StatusOK, gin.H{"orders": filtered})
	}
}

func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// getOrderItemsHandler enriches best effort: a failed fetch is logged and an
// empty list returned, since items are display data.
func getOrderItemsHandler(repo order.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.GetItems(c.Request.Context(), c.Param("id"))
		if err != nil {
			log.Warn("loading order items failed",
				zap.String("order_id", c.Param("id")), zap.Error(err))
			items = nil
		}
		if items == nil {
			items = []order.Item{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateOrderStatusHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		st, err := order.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
			return
		}
		if err := repo.UpdateStatus(c.Request.Context(), c.Param("id"), st); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": st})
	}
}

func dashboardHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute dashboard"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func analyticsReportHandler(svc *analytics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		report, err := svc.Report(c.Request.Context(), days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func getSettingsHandler(repo settings.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := repo.Get(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "store settings not found"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func updateSettingsHandler(repo settings.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s settings.StoreSettings
		if err := c.ShouldBindJSON(&s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		if err := repo.Update(c.Request.Context(), &s); err != nil {
			if errors.Is(err, settings.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "store settings not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := catalog.Query{
			Q:        c.Query("q"),
			Category: c.Query("category"),
			Limit:    limit,
			Offset:   offset,
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

func validPrice(s string) bool {
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}

func createProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid input: " + err.Error()})
			return
		}
		if req.Name == "" || !validPrice(req.Price) || req.Stock < 0 {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "name, a non-negative price and stock are required"})
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		p := &catalog.Product{
			ID:            uuid.NewString(),
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			ImageURL:      req.ImageURL,
			Category:      req.Category,
			StockQuantity: req.Stock,
			IsActive:      active,
			IsFeatured:    req.IsFeatured,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid input: " + err.Error()})
			return
		}
		cur, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
			return
		}
		updatePrice := req.Price != ""
		if updatePrice && !validPrice(req.Price) {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "invalid price"})
			return
		}
		if req.Stock < 0 {
			c.JSON(http.StatusBadRequest, catalog.HTTPError{Error: "stock must be non-negative"})
			return
		}
		p := &catalog.Product{
			ID:            cur.ID,
			Name:          req.Name,
			Description:   req.Description,
			Price:         req.Price,
			ImageURL:      req.ImageURL,
			Category:      req.Category,
			StockQuantity: req.Stock,
			IsActive:      cur.IsActive,
			IsFeatured:    cur.IsFeatured,
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
		if req.IsFeatured != nil {
			p.IsFeatured = *req.IsFeatured
		}
		if err := repo.Update(c.Request.Context(), p, updatePrice); err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "failed to update product"})
			return
		}
		out, err := repo.GetByID(c.Request.Context(), p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "failed to reload product"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func deleteProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, catalog.HTTPError{Error: "failed to delete product"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, catalog.HTTPError{Error: "product not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
