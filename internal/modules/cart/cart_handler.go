package cart

import (
	"net/http"

	"pickle-storefront/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// Handler handles HTTP requests for the cart and coupons.
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

func (h *Handler) GetCart(c echo.Context) error {
	userID := c.Get("userID").(string)
	return c.JSON(http.StatusOK, h.svc.GetCart(c.Request().Context(), userID))
}

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Weight    string `json:"weight" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) AddToCart(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.svc.AddToCart(c.Request().Context(), userID, req.ProductID, req.Weight, req.Quantity)
	if err != nil {
		switch err {
		case models.ErrNotFound:
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Product not found"})
		case models.ErrVariantUnknown:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Product variant not found"})
		}
		c.Logger().Error("Handler.AddToCart: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to add to cart"})
	}
	return c.JSON(http.StatusOK, view)
}

type updateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Weight    string `json:"weight" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) UpdateQuantity(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	view, err := h.svc.UpdateQuantity(c.Request().Context(), userID, req.ProductID, req.Weight, req.Quantity)
	if err != nil {
		c.Logger().Error("Handler.UpdateQuantity: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to update quantity"})
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) RemoveFromCart(c echo.Context) error {
	userID := c.Get("userID").(string)
	view := h.svc.RemoveFromCart(c.Request().Context(), userID, c.Param("productId"), c.Param("weight"))
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) ClearCart(c echo.Context) error {
	userID := c.Get("userID").(string)
	h.svc.ClearCart(c.Request().Context(), userID)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ApplyCoupon(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	result, err := h.svc.ApplyCoupon(c.Request().Context(), userID, req.Code)
	if err != nil {
		c.Logger().Error("Handler.ApplyCoupon: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to apply coupon"})
	}
	// Validation failures are part of the payload, not an HTTP error.
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) RemoveCoupon(c echo.Context) error {
	userID := c.Get("userID").(string)
	return c.JSON(http.StatusOK, h.svc.RemoveCoupon(c.Request().Context(), userID))
}

func (h *Handler) ListCoupons(c echo.Context) error {
	coupons, err := h.svc.ListCoupons(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.ListCoupons: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch coupons"})
	}
	return c.JSON(http.StatusOK, coupons)
}

func (h *Handler) CreateCoupon(c echo.Context) error {
	var req models.CreateCouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	coupon, err := h.svc.CreateCoupon(c.Request().Context(), req)
	if err != nil {
		if err == models.ErrConflict {
			return c.JSON(http.StatusConflict, ErrorResponse{Message: "A coupon with this code already exists"})
		}
		c.Logger().Error("Handler.CreateCoupon: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create coupon"})
	}
	return c.JSON(http.StatusCreated, coupon)
}

func (h *Handler) ToggleCoupon(c echo.Context) error {
	coupon, err := h.svc.ToggleCoupon(c.Request().Context(), c.Param("code"))
	if err != nil {
		if err == models.ErrNotFound {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Coupon not found"})
		}
		c.Logger().Error("Handler.ToggleCoupon: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to toggle coupon"})
	}
	return c.JSON(http.StatusOK, coupon)
}
