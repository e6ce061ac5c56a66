package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a new test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	client := resty.New().
		SetBaseURL(server.URL).
		SetAuthToken("test_token").
		SetHeader("Notion-Version", notionVersion).
		SetHeader("Content-Type", "application/json")

	c := &Client{
		client:  client,
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return c, server
}

func TestQueryDatabase(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/databases/db-1/query", r.URL.Path)
			assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
			assert.Equal(t, notionVersion, r.Header.Get("Notion-Version"))

			var req QueryRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 100, req.PageSize)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"results": [{"id": "page-1", "properties": {"总收益": {"type": "number", "number": 88.25}}}],
				"has_more": false,
				"next_cursor": null
			}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		resp, err := c.QueryDatabase(context.Background(), "db-1", &QueryRequest{PageSize: 100})

		// Assert
		assert.NoError(t, err)
		assert.Len(t, resp.Results, 1)
		assert.False(t, resp.HasMore)
		value, ok := resp.Results[0].Properties["总收益"].NumberValue()
		assert.True(t, ok)
		assert.Equal(t, 88.25, value)
	})

	t.Run("APIErrorCarriesStatusAndBody", func(t *testing.T) {
		// Arrange
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message": "rate limited"}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		_, err := c.QueryDatabase(context.Background(), "db-1", &QueryRequest{PageSize: 1})

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "rate limited")
	})
}

func TestCreateAndUpdatePage(t *testing.T) {
	t.Run("CreatePage", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/pages", r.URL.Path)

			var req createPageRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "daily-db", req.Parent.DatabaseID)
			assert.Contains(t, req.Properties, "日期")

			_, _ = w.Write([]byte(`{"id": "new-page"}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		err := c.CreatePage(context.Background(), "daily-db", map[string]any{
			"日期": TitleProperty("@2026-08-24"),
		})
		assert.NoError(t, err)
	})

	t.Run("UpdatePage", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/pages/page-1", r.URL.Path)

			var req updatePageRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Properties, "当日收益")

			_, _ = w.Write([]byte(`{"id": "page-1"}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		err := c.UpdatePage(context.Background(), "page-1", map[string]any{
			"当日收益": NumberProperty(12.5),
		})
		assert.NoError(t, err)
	})
}

func TestPageIterator(t *testing.T) {
	t.Run("WalksAllPages", func(t *testing.T) {
		// Arrange: 150 records across two pages, cursor after page one.
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req QueryRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			count := 100
			hasMore := true
			cursor := `"cursor-1"`
			if req.StartCursor == "cursor-1" {
				count = 50
				hasMore = false
				cursor = "null"
			}

			results := make([]string, count)
			for i := range results {
				results[i] = fmt.Sprintf(`{"id": "page-%d", "properties": {}}`, i)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"results": [%s], "has_more": %t, "next_cursor": %s}`,
				strings.Join(results, ","), hasMore, cursor)
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		// Act
		it := NewPageIterator(c, "holdings-db", nil, nil)
		var pages []Page
		for it.HasMore() {
			batch, err := it.Next(context.Background())
			assert.NoError(t, err)
			pages = append(pages, batch...)
		}

		// Assert
		assert.Len(t, pages, 150)
		assert.False(t, it.HasMore())

		// A reset iterator walks the whole sequence again.
		it.Reset()
		total := 0
		for it.HasMore() {
			batch, err := it.Next(context.Background())
			assert.NoError(t, err)
			total += len(batch)
		}
		assert.Equal(t, 150, total)
	})

	t.Run("FailureExhaustsIterator", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"message": "upstream down"}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		it := NewPageIterator(c, "holdings-db", nil, nil)
		_, err := it.Next(context.Background())
		assert.Error(t, err)
		assert.False(t, it.HasMore())
	})
}
