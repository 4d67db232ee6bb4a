package lookup

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TomasB/geolookup/internal/data"
	"github.com/TomasB/geolookup/internal/metrics"
	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/database"
)

// ErrorResponse is the JSON body of a failed lookup.
type ErrorResponse struct {
	Error string `json:"error"`
	// Network is the unmatched network of a not-found address, when known.
	Network string `json:"network,omitempty"`
}

// Handler manages IP geolocation lookup endpoints.
type Handler struct {
	lookup  data.GeoLookup
	metrics *metrics.Metrics
}

// NewHandler creates a new lookup handler with the given GeoLookup. m may be nil.
func NewHandler(lookup data.GeoLookup, m *metrics.Metrics) *Handler {
	return &Handler{lookup: lookup, metrics: m}
}

// Lookup handles GET /api/v1/lookup/:kind/:ip
func (h *Handler) Lookup(c *gin.Context) {
	ip := c.Param("ip")

	kind, err := database.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	slog.Debug("lookup request received", "kind", kind, "ip", ip)

	start := time.Now()
	model, err := h.lookup.Lookup(kind, ip)
	if h.metrics != nil {
		h.metrics.ObserveLookup("http", kind.String(), time.Since(start), err)
	}
	if err != nil {
		status, resp := errorResponse(err)
		if status == http.StatusInternalServerError {
			slog.Error("lookup failed", "kind", kind, "ip", ip, "error", err)
			_ = c.Error(err)
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, model.ToMap())
}

func errorResponse(err error) (int, ErrorResponse) {
	var (
		notFound *geoip.AddressNotFoundError
		mismatch *geoip.DatabaseTypeError
	)
	switch {
	case errors.As(err, &notFound):
		resp := ErrorResponse{Error: notFound.Error()}
		if network := notFound.Network(); network.IsValid() {
			resp.Network = network.String()
		}
		return http.StatusNotFound, resp
	case errors.Is(err, geoip.ErrInvalidAddress):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.As(err, &mismatch):
		return http.StatusConflict, ErrorResponse{Error: mismatch.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "lookup failed"}
	}
}
