package nutrition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient("test-key", nil)
	client.BaseURL = server.URL
	return client, server
}

func TestLookup_ParsesResponse(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "banana", r.URL.Query().Get("query"))
		w.Write([]byte(`[{
			"name": "banana",
			"calories": "Only available for premium subscribers.",
			"protein_g": "Only available for premium subscribers.",
			"carbohydrates_total_g": 23.2,
			"fat_total_g": 0.3,
			"fiber_g": 2.6
		}]`))
	})
	defer server.Close()

	facts, err := client.Lookup(context.Background(), "banana")
	require.NoError(t, err)

	assert.Equal(t, "N/A", facts.Calories)
	assert.Equal(t, "N/A", facts.Protein)
	assert.Equal(t, "23.2", facts.Carbohydrate)
	assert.Equal(t, "0.3", facts.Fat)
	assert.Equal(t, "2.6", facts.Fiber)
}

func TestLookup_EmptyResult(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	_, err := client.Lookup(context.Background(), "xyzzy")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestLookup_APIError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusBadRequest)
	})
	defer server.Close()

	_, err := client.Lookup(context.Background(), "banana")
	assert.Error(t, err)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "N/A", normalizeValue(nil))
	assert.Equal(t, "N/A", normalizeValue([]byte(`"Only available for premium subscribers."`)))
	assert.Equal(t, "12.5", normalizeValue([]byte(`12.5`)))
	assert.Equal(t, "150", normalizeValue([]byte(`150`)))
	assert.Equal(t, "3.2", normalizeValue([]byte(`"3.2"`)))
}
