package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(5*time.Second, 0)
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.NotNil(t, client.Transport)
}

func TestConfigureAndSet(t *testing.T) {
	orig := GetHTTPClient()
	t.Cleanup(func() { SetHTTPClient(orig) })

	Configure(2*time.Second, 4)
	assert.Equal(t, 2*time.Second, GetHTTPClient().Timeout)

	custom := &http.Client{Timeout: time.Second}
	SetHTTPClient(custom)
	assert.Same(t, custom, GetHTTPClient())
}

func TestClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := NewHTTPClient(time.Second, 2).Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
