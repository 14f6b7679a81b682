package catalog

import (
	"errors"
	"net/http"

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

func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.svc.ListProducts(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		c.Logger().Error("Handler.ListProducts: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch products"})
	}
	return c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c echo.Context) error {
	p, err := h.svc.FindProduct(c.Request().Context(), c.Param("productId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Product not found"})
		}
		c.Logger().Error("Handler.GetProduct: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch product"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	var req models.UpsertProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	p, err := h.svc.CreateProduct(c.Request().Context(), req)
	if err != nil {
		c.Logger().Error("Handler.CreateProduct: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create product"})
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	var req models.UpsertProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	p, err := h.svc.UpdateProduct(c.Request().Context(), c.Param("productId"), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Product not found"})
		}
		c.Logger().Error("Handler.UpdateProduct: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to update product"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.svc.DeleteProduct(c.Request().Context(), c.Param("productId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Product not found"})
		}
		c.Logger().Error("Handler.DeleteProduct: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to delete product"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListCombos(c echo.Context) error {
	combos, err := h.svc.ListCombos(c.Request().Context(), false)
	if err != nil {
		c.Logger().Error("Handler.ListCombos: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch combos"})
	}
	return c.JSON(http.StatusOK, combos)
}

func (h *Handler) ListAllCombos(c echo.Context) error {
	combos, err := h.svc.ListCombos(c.Request().Context(), true)
	if err != nil {
		c.Logger().Error("Handler.ListAllCombos: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch combos"})
	}
	return c.JSON(http.StatusOK, combos)
}

func (h *Handler) GetCombo(c echo.Context) error {
	cb, err := h.svc.FindCombo(c.Request().Context(), c.Param("comboId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Combo not found"})
		}
		c.Logger().Error("Handler.GetCombo: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch combo"})
	}
	return c.JSON(http.StatusOK, cb)
}

func (h *Handler) CreateCombo(c echo.Context) error {
	var req models.UpsertComboRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	cb, err := h.svc.CreateCombo(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Combo references a missing product"})
		case errors.Is(err, models.ErrVariantUnknown):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Combo references a missing product variant"})
		}
		c.Logger().Error("Handler.CreateCombo: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create combo"})
	}
	return c.JSON(http.StatusCreated, cb)
}

func (h *Handler) UpdateCombo(c echo.Context) error {
	var req models.UpsertComboRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	cb, err := h.svc.UpdateCombo(c.Request().Context(), c.Param("comboId"), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Combo not found"})
		case errors.Is(err, models.ErrVariantUnknown):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Combo references a missing product variant"})
		}
		c.Logger().Error("Handler.UpdateCombo: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to update combo"})
	}
	return c.JSON(http.StatusOK, cb)
}

func (h *Handler) DeleteCombo(c echo.Context) error {
	if err := h.svc.DeleteCombo(c.Request().Context(), c.Param("comboId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Combo not found"})
		}
		c.Logger().Error("Handler.DeleteCombo: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to delete combo"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListReviews(c echo.Context) error {
	reviews, err := h.svc.ListReviews(c.Request().Context(), c.Param("productId"))
	if err != nil {
		c.Logger().Error("Handler.ListReviews: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch reviews"})
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *Handler) AddReview(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	rv, err := h.svc.AddReview(c.Request().Context(), userID, c.Param("productId"), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Product not found"})
		case errors.Is(err, models.ErrReviewNotAllowed):
			return c.JSON(http.StatusForbidden, ErrorResponse{Message: "Reviews are limited to customers with a delivered order for this product"})
		}
		c.Logger().Error("Handler.AddReview: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to post review"})
	}
	return c.JSON(http.StatusCreated, rv)
}
