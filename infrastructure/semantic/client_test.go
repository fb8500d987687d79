package semantic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recall-backend/domain/core/entities"
)

func TestClient_NearestNeighbors(t *testing.T) {
	var received neighborsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/neighbors", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"neighbors":[{"id":"m2","score":0.91},{"id":"m3","score":0.55}]}`))
	}))
	defer server.Close()

	item := &entities.Item{ID: "m1", Kind: entities.KindMemory, Title: "JWT rotation", Content: "rotate signing keys"}
	neighbors, err := NewClient(server.URL).NearestNeighbors(context.Background(), item, 5)

	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, "m2", neighbors[0].ID)
	assert.InDelta(t, 0.91, neighbors[0].Score, 0.0001)

	assert.Equal(t, "m1", received.ItemID)
	assert.Equal(t, 5, received.K)
	assert.Contains(t, received.Text, "JWT rotation")
}

func TestClient_NearestNeighbors_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	item := &entities.Item{ID: "m1", Kind: entities.KindMemory, Title: "x"}
	_, err := NewClient(server.URL).NearestNeighbors(context.Background(), item, 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_NearestNeighbors_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"neighbors":[]}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	item := &entities.Item{ID: "m1", Kind: entities.KindMemory, Title: "x"}
	_, err := NewClient(server.URL).NearestNeighbors(ctx, item, 5)

	assert.Error(t, err)
}
