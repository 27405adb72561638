package meet_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"academy-service/internal/meet"

	"github.com/stretchr/testify/require"
)

func TestPlaceholder_Detectable(t *testing.T) {
	link := meet.Placeholder("8a6f2f53-0a17-4f6f-9a3e-111111111111")
	require.True(t, meet.IsPlaceholder(link))
	require.False(t, meet.IsPlaceholder("https://meet.example.com/abc-defg-hij"))
	require.False(t, meet.IsPlaceholder(""))
}

func TestHTTPProvisioner_CreateMeeting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/meetings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"join_url": "https://meet.example.com/abc-defg-hij"}`))
	}))
	defer server.Close()

	p := meet.NewHTTPProvisioner(server.URL, "test-key")
	link, err := p.CreateMeeting(context.Background(), "Endgame Fundamentals", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, "https://meet.example.com/abc-defg-hij", link)
}

func TestHTTPProvisioner_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := meet.NewHTTPProvisioner(server.URL, "test-key")
	_, err := p.CreateMeeting(context.Background(), "Endgame Fundamentals", time.Now(), time.Now().Add(time.Hour))
	require.ErrorIs(t, err, meet.ErrProvisioningUnavailable)
}

func TestHTTPProvisioner_CallerCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise r.Context() is never
		// cancelled and server.Close deadlocks waiting on this handler.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	p := meet.NewHTTPProvisioner(server.URL, "test-key")
	_, err := p.CreateMeeting(ctx, "Endgame Fundamentals", time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
}
