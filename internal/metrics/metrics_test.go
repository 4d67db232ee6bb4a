package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/database"
)

func TestResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ResultOK},
		{"not found", geoip.NewAddressNotFoundError("10.0.0.1", 8), ResultNotFound},
		{"invalid address", fmt.Errorf("%w: bad", geoip.ErrInvalidAddress), ResultInvalid},
		{"unknown kind", fmt.Errorf("%w: insights", database.ErrUnknownKind), ResultInvalid},
		{"type mismatch", &geoip.DatabaseTypeError{Method: "city", DatabaseType: "GeoIP2-Country"}, ResultTypeMismatch},
		{"other", errors.New("boom"), ResultError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Result(tt.err))
		})
	}
}

func TestObserveLookup(t *testing.T) {
	m := New()

	m.ObserveLookup("http", "city", time.Millisecond, nil)
	m.ObserveLookup("http", "city", time.Millisecond, nil)
	m.ObserveLookup("grpc", "city", time.Millisecond, geoip.NewAddressNotFoundError("10.0.0.1", 8))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues("http", "city", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues("grpc", "city", ResultNotFound)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.lookupDuration))
}

func TestObserveReload(t *testing.T) {
	m := New()

	m.ObserveReload(1700000000, nil)
	m.ObserveReload(0, errors.New("corrupt"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloads.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloads.WithLabelValues(ResultError)))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.databaseBuild))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveLookup("http", "country", time.Millisecond, nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `geolookup_lookups_total{kind="country",result="ok",transport="http"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
