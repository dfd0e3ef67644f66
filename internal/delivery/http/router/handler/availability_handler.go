package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"madredder/internal/delivery/http/middleware"
	"madredder/internal/delivery/http/response"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// snapshotTimeout bounds how long a one-shot request waits for the first
// recomputation.
const snapshotTimeout = 5 * time.Second

// AvailabilityHandler holds dependencies for the read-side handlers.
type AvailabilityHandler struct {
	uc     usecase.AvailabilityUsecase
	logger *slog.Logger
}

// NewAvailabilityHandler is the constructor for AvailabilityHandler, injected by Fx.
func NewAvailabilityHandler(uc usecase.AvailabilityUsecase, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		uc:     uc,
		logger: logger,
	}
}

// Snapshot returns one current availability view for the caller's location.
// With include_sold_out=true the browsing list keeps offers with no units
// left instead of filtering them out.
func (h *AvailabilityHandler) Snapshot(c echo.Context) error {
	ctx := c.Request().Context()

	proj, err := h.uc.Open(ctx, middleware.UserID(c))
	if err != nil {
		return errors.WithStack(err)
	}
	defer proj.Close()

	select {
	case view, ok := <-proj.Updates():
		if !ok {
			return domainerrors.ErrInternalError
		}
		if c.QueryParam("include_sold_out") != "true" {
			view.Offers = view.AvailableOnly()
		}

		return response.Success(c, http.StatusOK, view, "")

	case <-time.After(snapshotTimeout):
		return domainerrors.ErrInternalError.WithDetails("availability snapshot timed out")

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stream serves the live availability view as server-sent events. Each event
// carries one full recomputation; the stream ends when the client hangs up
// or the projection closes.
func (h *AvailabilityHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()

	proj, err := h.uc.Open(ctx, middleware.UserID(c))
	if err != nil {
		return errors.WithStack(err)
	}
	defer proj.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil

		case view, ok := <-proj.Updates():
			if !ok {
				return nil
			}
			data, err := json.Marshal(view)
			if err != nil {
				h.logger.Error("failed to marshal availability view", slog.Any("error", err))

				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
