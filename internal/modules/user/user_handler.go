package user

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

func (h *Handler) SignUp(c echo.Context) error {
	var req models.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	u, err := h.svc.SignUp(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return c.JSON(http.StatusConflict, ErrorResponse{Message: "An account with this email already exists"})
		}
		c.Logger().Error("Handler.SignUp: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create account"})
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	token, u, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
		}
		c.Logger().Error("Handler.Login: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to sign in"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

func (h *Handler) Me(c echo.Context) error {
	userID := c.Get("userID").(string)

	u, err := h.svc.Me(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
		}
		c.Logger().Error("Handler.Me: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch profile"})
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	u, err := h.svc.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		c.Logger().Error("Handler.UpdateProfile: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to update profile"})
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListAddresses(c echo.Context) error {
	userID := c.Get("userID").(string)

	addresses, err := h.svc.ListAddresses(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.ListAddresses: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch addresses"})
	}
	return c.JSON(http.StatusOK, addresses)
}

func (h *Handler) AddAddress(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.UpsertAddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	a, err := h.svc.AddAddress(c.Request().Context(), userID, req)
	if err != nil {
		c.Logger().Error("Handler.AddAddress: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to save address"})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAddress(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.UpsertAddressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	a, err := h.svc.UpdateAddress(c.Request().Context(), userID, c.Param("addressId"), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Address not found"})
		}
		c.Logger().Error("Handler.UpdateAddress: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to update address"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAddress(c echo.Context) error {
	userID := c.Get("userID").(string)

	if err := h.svc.DeleteAddress(c.Request().Context(), userID, c.Param("addressId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Address not found"})
		}
		c.Logger().Error("Handler.DeleteAddress: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to delete address"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetDefaultAddress(c echo.Context) error {
	userID := c.Get("userID").(string)

	if err := h.svc.SetDefaultAddress(c.Request().Context(), userID, c.Param("addressId")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Address not found"})
		}
		c.Logger().Error("Handler.SetDefaultAddress: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to set default address"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		c.Logger().Error("Handler.ForgotPassword: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to process request"})
	}
	// Identical response whether or not the account exists.
	return c.JSON(http.StatusOK, map[string]string{
		"message": "If an account exists for this email, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.ResetPassword(c.Request().Context(), req); err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Reset link is invalid or has expired"})
		}
		c.Logger().Error("Handler.ResetPassword: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to reset password"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}
