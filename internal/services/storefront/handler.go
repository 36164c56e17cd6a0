package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"

	"foodiedelight/internal/database"
	"foodiedelight/internal/logger"
	"foodiedelight/internal/models"
	"foodiedelight/internal/services/cart"
	"foodiedelight/internal/services/catalog"
	"foodiedelight/internal/services/order"
	"foodiedelight/internal/services/recommendation"
	"foodiedelight/internal/services/session"
)

// Sessions resolves the session for a cookie value
type Sessions interface {
	Get(id string) (*session.Session, bool)
	GetOrCreate(id string) (*session.Session, bool)
}

// Menu is the catalog reader as seen by the API
type Menu interface {
	State() catalog.State
	Items() []models.MenuItem
	Refresh(ctx context.Context) error
}

type OrderReader interface {
	GetOrder(ctx context.Context, id string) (*models.OrderRecord, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

type CheckoutResponse struct {
	Order     *models.OrderRecord `json:"order"`
	Reference string              `json:"reference"`
	Message   string              `json:"message"`
}

type addItemRequest struct {
	ID string `json:"id"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// Handler serves the storefront JSON API
type Handler struct {
	menu     Menu
	sessions Sessions
	orders   OrderReader
	db       Pinger
	logger   *logger.Logger
}

func NewHandler(menu Menu, sessions Sessions, orders OrderReader, db Pinger, log *logger.Logger) *Handler {
	return &Handler{
		menu:     menu,
		sessions: sessions,
		orders:   orders,
		db:       db,
		logger:   log,
	}
}

// Routes builds the echo instance with all storefront routes
func (h *Handler) Routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(withLogging(h.logger))

	e.GET("/health", h.HealthCheck)

	api := e.Group("/api")
	api.GET("/menu", h.GetMenu)
	api.POST("/menu/refresh", h.RefreshMenu)
	api.GET("/orders/:id", h.GetOrder)

	api.POST("/cart/items", h.AddItem, withNewSession(h.sessions))

	// Callers without a session see an empty cart; no session is created.
	carts := api.Group("", withSession(h.sessions))
	carts.GET("/cart", h.GetCart)
	carts.PATCH("/cart/items/:id", h.UpdateQuantity)
	carts.DELETE("/cart/items/:id", h.RemoveItem)
	carts.DELETE("/cart", h.ResetCart)
	carts.GET("/recommendations", h.GetRecommendations)
	carts.POST("/checkout", h.Checkout)

	return e
}

func (h *Handler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health_check_failed", "Database ping failed", requestID(c), err, nil)
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) GetMenu(c echo.Context) error {
	return c.JSON(http.StatusOK, h.menu.State())
}

// RefreshMenu is the manual retry after a failed fetch
func (h *Handler) RefreshMenu(c echo.Context) error {
	if err := h.menu.Refresh(c.Request().Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.menu.State())
}

func (h *Handler) GetCart(c echo.Context) error {
	s := sessionFrom(c)
	if s == nil {
		return c.JSON(http.StatusOK, emptyCartView())
	}
	return c.JSON(http.StatusOK, s.View())
}

func emptyCartView() session.CartView {
	return session.CartView{Lines: []cart.Line{}, TotalPrice: decimal.Zero}
}

func (h *Handler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return h.writeError(c, http.StatusBadRequest, "Request body must contain a menu item id")
	}

	view, err := sessionFrom(c).AddItem(req.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateQuantity(c echo.Context) error {
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return h.writeError(c, http.StatusBadRequest, "Request body must contain a quantity")
	}

	s := sessionFrom(c)
	if s == nil {
		// An absent line is never created, so only the quantity check applies.
		if *req.Quantity < 0 {
			return h.fail(c, cart.ErrInvalidQuantity)
		}
		return c.JSON(http.StatusOK, emptyCartView())
	}

	view, err := s.UpdateQuantity(c.Param("id"), *req.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	s := sessionFrom(c)
	if s == nil {
		return c.JSON(http.StatusOK, emptyCartView())
	}
	return c.JSON(http.StatusOK, s.RemoveItem(c.Param("id")))
}

func (h *Handler) ResetCart(c echo.Context) error {
	s := sessionFrom(c)
	if s == nil {
		return c.JSON(http.StatusOK, emptyCartView())
	}
	return c.JSON(http.StatusOK, s.Reset())
}

func (h *Handler) GetRecommendations(c echo.Context) error {
	var items []models.MenuItem
	if s := sessionFrom(c); s != nil {
		items = s.Recommendations()
	} else {
		items = recommendation.Recommend(h.menu.Items(), cart.New())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (h *Handler) Checkout(c echo.Context) error {
	var contact models.ContactInfo
	if err := c.Bind(&contact); err != nil {
		return h.writeError(c, http.StatusBadRequest, "Invalid JSON format")
	}

	s := sessionFrom(c)
	if s == nil {
		return h.fail(c, order.ErrEmptyCart)
	}

	stored, err := s.Checkout(c.Request().Context(), contact, requestID(c))
	if err != nil {
		return h.fail(c, err)
	}

	ref := stored.ShortReference()
	return c.JSON(http.StatusCreated, CheckoutResponse{
		Order:     stored,
		Reference: ref,
		Message:   fmt.Sprintf("Your order #%s has been placed successfully.", ref),
	})
}

func (h *Handler) GetOrder(c echo.Context) error {
	stored, err := h.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, stored)
}

// fail maps a domain error to its status code and writes it
func (h *Handler) fail(c echo.Context, err error) error {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request_error", message, requestID(c), err, map[string]interface{}{
			"path": c.Path(),
		})
	}
	return h.writeError(c, status, message)
}

func errorStatus(err error) (int, string) {
	var verr order.ValidationError
	switch {
	case errors.Is(err, session.ErrUnknownItem):
		return http.StatusNotFound, "Menu item not found"
	case errors.Is(err, database.ErrOrderNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest, "Quantity must not be negative"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest, "Your cart is empty"
	case errors.Is(err, order.ErrSubmissionInFlight):
		return http.StatusConflict, "An order is already being submitted"
	case errors.Is(err, catalog.ErrFetchFailed):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, order.ErrSubmitFailed):
		return http.StatusBadGateway, "Failed to place order. Please try again."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().UTC(),
		RequestID: requestID(c),
	})
}
