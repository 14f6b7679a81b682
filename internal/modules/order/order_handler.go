package order

import (
	"errors"
	"net/http"
	"strconv"

	"pickle-storefront/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) Checkout(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	if req.PaymentMethod != "cod" && req.TransactionID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Transaction reference is required"})
	}

	o, err := h.svc.Checkout(c.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Your cart is empty"})
		case errors.Is(err, models.ErrPaymentMethodDisabled):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "This payment method is currently unavailable"})
		}
		c.Logger().Error("Handler.Checkout: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to place order"})
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetMyOrders(c echo.Context) error {
	userID := c.Get("userID").(string)
	page, limit := pagination(c)

	orders, total, err := h.svc.ListUserOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		c.Logger().Error("Handler.GetMyOrders: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (h *Handler) GetOrder(c echo.Context) error {
	userID := c.Get("userID").(string)
	role, _ := c.Get("userRole").(string)

	o, err := h.svc.GetOrder(c.Request().Context(), c.Param("orderId"), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Order not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, ErrorResponse{Message: "You do not have access to this order"})
		}
		c.Logger().Error("Handler.GetOrder: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch order"})
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	userID := c.Get("userID").(string)
	role, _ := c.Get("userRole").(string)

	invoice, err := h.svc.Invoice(c.Request().Context(), c.Param("orderId"), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Order not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, ErrorResponse{Message: "You do not have access to this order"})
		}
		c.Logger().Error("Handler.GetInvoice: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to build invoice"})
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *Handler) GetPaymentLinks(c echo.Context) error {
	userID := c.Get("userID").(string)

	links, err := h.svc.PaymentLinks(c.Request().Context(), c.Param("orderId"), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Order not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, ErrorResponse{Message: "You do not have access to this order"})
		}
		c.Logger().Error("Handler.GetPaymentLinks: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to build payment links"})
	}
	return c.JSON(http.StatusOK, links)
}

func (h *Handler) ListAllOrders(c echo.Context) error {
	page, limit := pagination(c)

	orders, total, err := h.svc.ListAllOrders(c.Request().Context(), page, limit)
	if err != nil {
		c.Logger().Error("Handler.ListAllOrders: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (h *Handler) ApprovePayment(c echo.Context) error {
	return h.adminTransition(c, func(c echo.Context) (Transition, error) {
		return h.svc.ApprovePayment(c.Request().Context(), c.Param("orderId"))
	})
}

func (h *Handler) RejectPayment(c echo.Context) error {
	return h.adminTransition(c, func(c echo.Context) (Transition, error) {
		return h.svc.RejectPayment(c.Request().Context(), c.Param("orderId"))
	})
}

func (h *Handler) AssignTracking(c echo.Context) error {
	var req models.TrackingAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	return h.adminTransition(c, func(c echo.Context) (Transition, error) {
		return h.svc.AssignTracking(c.Request().Context(), c.Param("orderId"), req)
	})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req models.AdminStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	return h.adminTransition(c, func(c echo.Context) (Transition, error) {
		return h.svc.SetStatus(c.Request().Context(), c.Param("orderId"), req.Status)
	})
}

func (h *Handler) adminTransition(c echo.Context, run func(echo.Context) (Transition, error)) error {
	t, err := run(c)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.adminTransition: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to update order"})
	}
	return c.JSON(http.StatusOK, t)
}

func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
