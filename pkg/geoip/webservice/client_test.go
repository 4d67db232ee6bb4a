package webservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasB/geolookup/pkg/geoip"
)

const countryBody = `{
	"continent": {"code": "NA", "geoname_id": 42, "names": {"en": "North America"}},
	"country": {"geoname_id": 1, "iso_code": "US", "names": {"en": "United States of America"}},
	"maxmind": {"queries_remaining": 11},
	"registered_country": {"geoname_id": 2, "iso_code": "CA", "names": {"en": "Canada"}},
	"traits": {"ip_address": "1.2.3.4", "is_anycast": true, "network": "1.2.3.0/24"}
}`

const insightsBody = `{
	"city": {"names": {"en": "Minneapolis"}},
	"country": {"iso_code": "US"},
	"location": {"latitude": 44.98, "longitude": 93.2636, "accuracy_radius": 1500},
	"subdivisions": [{"iso_code": "MN"}],
	"traits": {"ip_address": "1.2.3.4", "network": "1.2.3.0/24", "static_ip_score": 1.3, "user_count": 2},
	"anonymizer": {"confidence": 85, "is_anonymous_vpn": true, "network_last_seen": "2025-04-14"}
}`

type response struct {
	status      int
	contentType string
	body        string
	header      map[string]string
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *int32) {
	t.Helper()
	var requests int32
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithHost(strings.TrimPrefix(server.URL, "https://")),
		WithHTTPClient(server.Client()),
	}, opts...)
	client, err := NewClient(42, "abcdef123456", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, &requests
}

func respond(res response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range res.header {
			w.Header().Set(k, v)
		}
		if res.contentType != "" {
			w.Header().Set("Content-Type", res.contentType)
		}
		w.WriteHeader(res.status)
		_, _ = w.Write([]byte(res.body))
	}
}

func errorJSON(code, msg string) string {
	return `{"code":"` + code + `","error":"` + msg + `"}`
}

const jsonType = "application/vnd.maxmind.com-error+json; charset=UTF-8; version=2.0"

func TestClient_Request(t *testing.T) {
	var got *http.Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		respond(response{status: http.StatusOK, body: countryBody})(w, r)
	})

	_, err := client.Country(context.Background(), "1.2.3.4")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/geoip/v2.1/country/1.2.3.4", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "Basic NDI6YWJjZGVmMTIzNDU2", got.Header.Get("Authorization"))
	assert.True(t, strings.HasPrefix(got.Header.Get("User-Agent"), "GeoIP2-Go-Client/"))
}

func TestClient_Country(t *testing.T) {
	client, _ := newTestClient(t, respond(response{status: http.StatusOK, body: countryBody}))

	country, err := client.Country(context.Background(), "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, "North America", country.Continent.Name())
	assert.Equal(t, "US", *country.Country.ISOCode)
	assert.Equal(t, "Canada", country.RegisteredCountry.Name())
	assert.Equal(t, 11, *country.MaxMind.QueriesRemaining)
	assert.Equal(t, "1.2.3.4", country.Traits.IPAddress.String())
	assert.Equal(t, "1.2.3.0/24", country.Traits.Network().String())
	assert.True(t, country.Traits.IsAnycast)
}

func TestClient_CityAndInsights(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geoip/v2.1/city/1.2.3.4":
			respond(response{status: http.StatusOK, body: countryBody})(w, r)
		case "/geoip/v2.1/insights/1.2.3.4":
			respond(response{status: http.StatusOK, body: insightsBody})(w, r)
		default:
			http.NotFound(w, r)
		}
	}, WithLocales([]string{"en"}))

	city, err := client.City(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.0/24", city.Traits.Network().String())

	insights, err := client.Insights(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "Minneapolis", insights.City.Name())
	assert.Equal(t, 1.3, *insights.Traits.StaticIPScore)
	assert.Equal(t, 2, *insights.Traits.UserCount)
	assert.Equal(t, uint(1500), *insights.Location.AccuracyRadius)
	assert.Equal(t, "MN", *insights.Subdivisions.MostSpecific().ISOCode)
	assert.True(t, insights.Anonymizer.IsAnonymousVPN)
	assert.Equal(t, "2025-04-14", insights.ToMap()["anonymizer"].(map[string]any)["network_last_seen"])
}

func TestClient_Me(t *testing.T) {
	var path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		respond(response{status: http.StatusOK, body: countryBody})(w, r)
	})

	_, err := client.Country(context.Background(), Me)
	require.NoError(t, err)
	assert.Equal(t, "/geoip/v2.1/country/me", path)
}

func TestClient_QueriesRemainingHeader(t *testing.T) {
	client, _ := newTestClient(t, respond(response{
		status: http.StatusOK,
		body:   `{"traits": {"ip_address": "1.2.3.4"}}`,
		header: map[string]string{queriesRemainingHeader: "99"},
	}))

	country, err := client.Country(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.NotNil(t, country.MaxMind.QueriesRemaining)
	assert.Equal(t, 99, *country.MaxMind.QueriesRemaining)
}

func TestClient_QueriesRemainingBodyWins(t *testing.T) {
	client, _ := newTestClient(t, respond(response{
		status: http.StatusOK,
		body:   countryBody,
		header: map[string]string{queriesRemainingHeader: "99"},
	}))

	country, err := client.Country(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 11, *country.MaxMind.QueriesRemaining)
}

func TestClient_InvalidAddress(t *testing.T) {
	client, requests := newTestClient(t, respond(response{status: http.StatusOK, body: countryBody}))

	_, err := client.Country(context.Background(), "1.2.3")
	require.Error(t, err)
	assert.ErrorIs(t, err, geoip.ErrInvalidAddress)
	assert.Contains(t, err.Error(), `"1.2.3" does not appear to be an IPv4 or IPv6 address`)
	assert.Zero(t, atomic.LoadInt32(requests))
}

func TestClient_BadSuccessBody(t *testing.T) {
	client, _ := newTestClient(t, respond(response{status: http.StatusOK, body: "{not json"}))

	_, err := client.Country(context.Background(), "1.2.3.4")
	var geoErr *geoip.Error
	require.True(t, errors.As(err, &geoErr))
	assert.Equal(t, http.StatusOK, geoErr.HTTPStatus)
	assert.Contains(t, geoErr.URI, "/geoip/v2.1/country/1.2.3.4")
	assert.Contains(t, err.Error(), "could not decode the response as JSON")
}

func TestClient_HTTPErrors(t *testing.T) {
	tests := []struct {
		name    string
		res     response
		status  int
		message string
	}{
		{
			name:    "4xx without body",
			res:     response{status: http.StatusBadRequest, contentType: jsonType},
			status:  http.StatusBadRequest,
			message: "received a 400 error for .* with no body",
		},
		{
			name:    "4xx with non-JSON body",
			res:     response{status: http.StatusBadRequest, contentType: "text/plain", body: "oops"},
			status:  http.StatusBadRequest,
			message: "received a 400 for .* with the following body: oops",
		},
		{
			name:    "4xx with malformed JSON",
			res:     response{status: http.StatusBadRequest, contentType: jsonType, body: "bad body"},
			status:  http.StatusBadRequest,
			message: "it did not include the expected JSON body",
		},
		{
			name:    "4xx with unexpected JSON",
			res:     response{status: http.StatusBadRequest, contentType: jsonType, body: `{"wierd": 42}`},
			status:  http.StatusBadRequest,
			message: "response contains JSON but it does not specify code or error keys",
		},
		{
			name:    "5xx",
			res:     response{status: http.StatusInternalServerError},
			status:  http.StatusInternalServerError,
			message: `received a server error \(500\) for`,
		},
		{
			name:    "3xx",
			res:     response{status: http.StatusMultipleChoices},
			status:  http.StatusMultipleChoices,
			message: `received a very surprising HTTP status \(300\) for`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, respond(tt.res))

			_, err := client.Country(context.Background(), "1.2.3.7")
			var httpErr *geoip.HTTPError
			require.True(t, errors.As(err, &httpErr), "got %T: %v", err, err)
			assert.Equal(t, tt.status, httpErr.HTTPStatus)
			assert.Contains(t, httpErr.URI, "/geoip/v2.1/country/1.2.3.7")
			assert.Equal(t, tt.res.body, httpErr.DecodedContent)
			assert.Regexp(t, tt.message, err.Error())
			assert.ErrorIs(t, err, geoip.ErrGeoIP)
		})
	}
}

func TestClient_ErrorCodes(t *testing.T) {
	tests := []struct {
		status int
		code   string
		check  func(t *testing.T, err error)
	}{
		{http.StatusNotFound, "IP_ADDRESS_NOT_FOUND", isType[*geoip.AddressNotFoundError]},
		{http.StatusBadRequest, "IP_ADDRESS_RESERVED", isType[*geoip.AddressNotFoundError]},
		{http.StatusUnauthorized, "ACCOUNT_ID_REQUIRED", isType[*geoip.AuthenticationError]},
		{http.StatusUnauthorized, "ACCOUNT_ID_UNKNOWN", isType[*geoip.AuthenticationError]},
		{http.StatusUnauthorized, "AUTHORIZATION_INVALID", isType[*geoip.AuthenticationError]},
		{http.StatusUnauthorized, "LICENSE_KEY_REQUIRED", isType[*geoip.AuthenticationError]},
		{http.StatusUnauthorized, "USER_ID_REQUIRED", isType[*geoip.AuthenticationError]},
		{http.StatusUnauthorized, "USER_ID_UNKNOWN", isType[*geoip.AuthenticationError]},
		{http.StatusPaymentRequired, "OUT_OF_QUERIES", isType[*geoip.OutOfQueriesError]},
		{http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", isType[*geoip.OutOfQueriesError]},
		{http.StatusForbidden, "PERMISSION_REQUIRED", isType[*geoip.PermissionRequiredError]},
		{http.StatusBadRequest, "IP_ADDRESS_REQUIRED", isType[*geoip.InvalidRequestError]},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			client, _ := newTestClient(t, respond(response{
				status:      tt.status,
				contentType: jsonType,
				body:        errorJSON(tt.code, "Whoa!"),
			}))

			_, err := client.Country(context.Background(), "1.2.3.18")
			require.Error(t, err)
			assert.Equal(t, "Whoa!", err.Error())
			tt.check(t, err)
		})
	}
}

func isType[T error](t *testing.T, err error) {
	t.Helper()
	var target T
	assert.True(t, errors.As(err, &target), "got %T", err)
	assert.ErrorIs(t, err, geoip.ErrGeoIP)
}

func TestClient_UnknownErrorCode(t *testing.T) {
	client, _ := newTestClient(t, respond(response{
		status:      http.StatusBadRequest,
		contentType: jsonType,
		body:        errorJSON("UNKNOWN_TYPE", "Unknown error type"),
	}))

	_, err := client.Country(context.Background(), "1.2.3.19")
	var invalid *geoip.InvalidRequestError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "UNKNOWN_TYPE", invalid.Code)
	assert.Equal(t, http.StatusBadRequest, invalid.HTTPStatus)
	assert.Contains(t, invalid.URI, "/geoip/v2.1/country/1.2.3.19")
	assert.Equal(t, "Unknown error type", invalid.Message)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	host := strings.TrimPrefix(server.URL, "https://")
	hc := server.Client()
	server.Close()

	client, err := NewClient(42, "abcdef123456", WithHost(host), WithHTTPClient(hc))
	require.NoError(t, err)

	_, err = client.Country(context.Background(), "1.2.3.4")
	var transportErr *geoip.TransportError
	require.True(t, errors.As(err, &transportErr), "got %T: %v", err, err)
	assert.Contains(t, transportErr.URI, "/geoip/v2.1/country/1.2.3.4")
}

func TestClient_Timeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Country(ctx, "1.2.3.4")
	var transportErr *geoip.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_InvalidProxy(t *testing.T) {
	_, err := NewClient(42, "key", WithProxy("://bad"))
	assert.Error(t, err)
}

func TestClient_CloseTwice(t *testing.T) {
	client, err := NewClient(42, "key")
	require.NoError(t, err)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}
