package settings

import (
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

func (h *Handler) Get(c echo.Context) error {
	settings, err := h.svc.Get(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.Get: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch settings"})
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) Update(c echo.Context) error {
	var req models.StoreSettings
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	settings, err := h.svc.Update(c.Request().Context(), req)
	if err != nil {
		c.Logger().Error("Handler.Update: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to save settings"})
	}
	return c.JSON(http.StatusOK, settings)
}
