package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pickle-storefront/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// Handler exposes the driver endpoints, the customer tracking view and the
// admin delivery map. Driver endpoints are deliberately unauthenticated: the
// driver page is reached through a per-order link handed out by the admin.
type Handler struct {
	svc      ServiceInterface
	observer *Observer
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface, observer *Observer) *Handler {
	return &Handler{
		svc:      svc,
		observer: observer,
		validate: validator.New(),
	}
}

func (h *Handler) ReportPosition(c echo.Context) error {
	var fix models.PositionReport
	if err := c.Bind(&fix); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(fix); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.svc.ReportPosition(c.Request().Context(), c.Param("orderId"), fix); err != nil {
		c.Logger().Error("Handler.ReportPosition: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to record position"})
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *Handler) StartTracking(c echo.Context) error {
	var req models.StartTrackingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}

	loc, err := h.svc.StartTracking(c.Request().Context(), c.Param("orderId"), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDriverDetailsMissing):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Driver name and phone number are required"})
		case errors.Is(err, models.ErrNoPositionFix):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Waiting for a location fix before tracking can start"})
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "Order not found"})
		}
		c.Logger().Error("Handler.StartTracking: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to start tracking"})
	}
	return c.JSON(http.StatusOK, loc)
}

func (h *Handler) StopTracking(c echo.Context) error {
	err := h.svc.StopTracking(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrTrackingNotActive) {
			return c.JSON(http.StatusConflict, ErrorResponse{Message: "No active tracking session for this order"})
		}
		c.Logger().Error("Handler.StopTracking: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to stop tracking"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Delivered(c echo.Context) error {
	t, err := h.svc.Delivered(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrTrackingNotActive) {
			return c.JSON(http.StatusConflict, ErrorResponse{Message: "No active tracking session for this order"})
		}
		c.Logger().Error("Handler.Delivered: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to complete delivery"})
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) GetLocation(c echo.Context) error {
	loc, err := h.svc.Location(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "No location recorded for this order"})
		}
		c.Logger().Error("Handler.GetLocation: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch location"})
	}
	return c.JSON(http.StatusOK, loc)
}

// StreamLocation is the customer-facing live feed for one order, sent as
// server-sent events. The stream ends when the client disconnects or the
// session publishes its inactive record.
func (h *Handler) StreamLocation(c echo.Context) error {
	updates, cancel := h.svc.Subscribe(c.Param("orderId"))
	defer cancel()

	prepareSSE(c)
	if loc, err := h.svc.Location(c.Request().Context(), c.Param("orderId")); err == nil {
		if err := writeSSE(c, loc); err != nil {
			return nil
		}
	}

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case loc, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeSSE(c, loc); err != nil {
				return nil
			}
			if !loc.IsActive {
				return nil
			}
		}
	}
}

func (h *Handler) ActiveDeliveries(c echo.Context) error {
	deliveries, err := h.svc.ActiveDeliveries(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.ActiveDeliveries: ", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to fetch deliveries"})
	}

	ids := make([]string, 0, len(deliveries))
	for _, d := range deliveries {
		ids = append(ids, d.Order.ID)
	}
	h.observer.Reconcile(c.Request().Context(), ids)

	return c.JSON(http.StatusOK, deliveries)
}

// StreamDeliveries is the admin map feed: the watched set is reconciled and
// the latest-location snapshot written out every few seconds.
func (h *Handler) StreamDeliveries(c echo.Context) error {
	prepareSSE(c)

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		deliveries, err := h.svc.ActiveDeliveries(c.Request().Context())
		if err != nil {
			c.Logger().Error("Handler.StreamDeliveries: ", err)
			return nil
		}
		ids := make([]string, 0, len(deliveries))
		for _, d := range deliveries {
			ids = append(ids, d.Order.ID)
		}
		h.observer.Reconcile(c.Request().Context(), ids)

		if err := writeSSE(c, h.observer.Snapshot()); err != nil {
			return nil
		}

		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}

func prepareSSE(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
}

func writeSSE(c echo.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}
