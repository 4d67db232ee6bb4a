package webservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomasB/geolookup/pkg/geoip"
	"github.com/TomasB/geolookup/pkg/geoip/models"
)

func newTestAsyncClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*AsyncClient, *int32) {
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
	client, err := NewAsyncClient(42, "abcdef123456", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, &requests
}

// echoAddress answers every lookup with the address from the request path.
func echoAddress(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"traits": {"ip_address": %q}}`, ip)
}

func TestAsyncClient_ConcurrentLookups(t *testing.T) {
	client, requests := newTestAsyncClient(t, echoAddress, WithMaxInFlight(4))
	ctx := context.Background()

	ips := make([]string, 20)
	for i := range ips {
		ips[i] = fmt.Sprintf("10.0.0.%d", i+1)
	}

	pending := make([]*Future[*models.City], len(ips))
	for i, ip := range ips {
		pending[i] = client.City(ctx, ip)
	}

	for i, f := range pending {
		city, err := f.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, ips[i], city.Traits.IPAddress.String())
	}
	assert.Equal(t, int32(len(ips)), atomic.LoadInt32(requests))
}

func TestAsyncClient_Endpoints(t *testing.T) {
	client, _ := newTestAsyncClient(t, echoAddress)
	ctx := context.Background()

	country, err := client.Country(ctx, "1.2.3.4").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", country.Traits.IPAddress.String())

	insights, err := client.Insights(ctx, "2001:db8::1").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", insights.Traits.IPAddress.String())
}

func TestAsyncClient_SharesErrorMapping(t *testing.T) {
	client, _ := newTestAsyncClient(t, respond(response{
		status:      http.StatusNotFound,
		contentType: jsonType,
		body:        errorJSON("IP_ADDRESS_NOT_FOUND", "not found"),
	}))
	ctx := context.Background()

	_, err := client.Country(ctx, "1.2.3.4").Wait(ctx)
	var notFound *geoip.AddressNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "not found", notFound.Message)
}

func TestAsyncClient_InvalidAddress(t *testing.T) {
	client, requests := newTestAsyncClient(t, echoAddress)

	f := client.City(context.Background(), "not-an-ip")
	select {
	case <-f.Done():
	default:
		t.Fatal("future for an invalid address should be resolved immediately")
	}

	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, geoip.ErrInvalidAddress)
	assert.Zero(t, atomic.LoadInt32(requests))
}

func TestAsyncClient_WaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestAsyncClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		echoAddress(w, r)
	})
	defer close(release)

	f := client.Country(context.Background(), "1.2.3.4")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAsyncClient_CloseDrainsInFlight(t *testing.T) {
	client, _ := newTestAsyncClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		echoAddress(w, r)
	})
	ctx := context.Background()

	f := client.Country(ctx, "1.2.3.4")
	require.NoError(t, client.Close())

	select {
	case <-f.Done():
	default:
		t.Fatal("close returned before the in-flight lookup finished")
	}
	country, err := f.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", country.Traits.IPAddress.String())
}

func TestAsyncClient_ClosedClient(t *testing.T) {
	client, requests := newTestAsyncClient(t, echoAddress)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err := client.City(context.Background(), "1.2.3.4").Wait(context.Background())
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.Zero(t, atomic.LoadInt32(requests))
}
