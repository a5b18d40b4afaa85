package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PostsMessage(t *testing.T) {
	var got Message
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	err = client.Send(context.Background(), Message{PetCode: "ABC123", Title: "Roopet Alert"}, WithIdempotencyKey("k-1"))
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.PetCode)
	assert.Equal(t, "k-1", key)
}

func TestSend_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, client.Send(context.Background(), Message{PetCode: "ABC123"}))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSend_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	err = client.Send(context.Background(), Message{PetCode: "ABC123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}
