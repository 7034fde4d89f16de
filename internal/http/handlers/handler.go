package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"chainmeet/backend/internal/config"
	"chainmeet/backend/internal/geocode"
	authmw "chainmeet/backend/internal/http/middleware"
	"chainmeet/backend/internal/preview"
	"chainmeet/backend/internal/rate"
	"chainmeet/backend/internal/service"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	svc           *service.Service
	geocoder      *geocode.Lookup
	previews      *preview.Service
	profiles      *config.ProfileLoader
	cfg           *config.Config
	logger        *slog.Logger
	validator     *validator.Validate
	actionLimiter *rate.WindowLimiter
}

func New(svc *service.Service, geocoder *geocode.Lookup, previews *preview.Service, profiles *config.ProfileLoader, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:           svc,
		geocoder:      geocoder,
		previews:      previews,
		profiles:      profiles,
		cfg:           cfg,
		logger:        logger,
		validator:     validator.New(),
		actionLimiter: rate.NewWindowLimiter(10, time.Minute),
	}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}

func (h *Handler) loggerForRequest(r *http.Request) *slog.Logger {
	logger := h.logger
	if logger == nil {
		return slog.Default()
	}
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if id, ok := authmw.IdentityFromContext(r.Context()); ok {
		logger = logger.With("identity", id.Hex())
	}
	return logger
}

// viewerZone resolves the viewer's IANA zone from the X-Viewer-Zone
// header. An absent or unknown zone falls back to UTC rather than failing
// the request.
func (h *Handler) viewerZone(r *http.Request) *time.Location {
	name := r.Header.Get("X-Viewer-Zone")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
