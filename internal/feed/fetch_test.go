package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "aduan/internal/errors"
	"aduan/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("Bil,Nama\n1,Cikgu Ali\n"))
	}))
	defer srv.Close()

	f := NewFetcher(zap.NewNop(), observability.NopMetrics{})
	body, err := f.Fetch(context.Background(), FeedTeachers, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cikgu Ali"}, ParseTeachers(body))
}

func TestFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(zap.NewNop(), nil).Fetch(context.Background(), FeedReports, srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
}

func TestFetcher_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewFetcher(zap.NewNop(), nil).Fetch(context.Background(), FeedReports, url)
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
}

func TestFetcher_OversizedBody(t *testing.T) {
	body := "Bil,Nama\n1,Cikgu Ali\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(zap.NewNop(), nil)
	f.maxBytes = int64(len(body))
	got, err := f.Fetch(context.Background(), FeedTeachers, srv.URL)
	require.NoError(t, err, "a body exactly at the limit is complete")
	assert.Equal(t, body, got)

	f.maxBytes = int64(len(body)) - 1
	_, err = f.Fetch(context.Background(), FeedTeachers, srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
	assert.Contains(t, err.Error(), "exceeds")
}
