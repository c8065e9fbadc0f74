package igov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"unigov/internal/config"
	"unigov/internal/logger"
	"unigov/internal/models"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL:  baseURL,
			PageSize: 3,
			Retry: config.RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    1,
				MaxDelayMs:        5,
				BackoffMultiplier: 2.0,
				TimeoutSec:        5,
			},
		},
	}

	return NewClient(cfg, logger.NewWithWriter(io.Discard, "error", "text"))
}

var testRef = SessionRef{
	Number:        "80",
	Label:         "80th session",
	DecisionLabel: "80th",
	BodyParam:     "GA",
}

// pageHandler serves fixed pages of items followed by an empty page.
func pageHandler(t *testing.T, pages [][]string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")

		var items []string

		for i, p := range pages {
			if page == fmt.Sprintf("%d", i+1) {
				items = p
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "[")

		for i, item := range items {
			if i > 0 {
				fmt.Fprint(w, ",")
			}

			fmt.Fprint(w, item)
		}

		fmt.Fprint(w, "]")
	}
}

func TestFetchCategory_PaginatesUntilEmptyPage(t *testing.T) {
	pages := [][]string{
		{`{"id": "m-1"}`, `{"id": "m-2"}`, `{"id": "m-3"}`},
		{`{"id": "m-4"}`, `{"id": "m-5"}`},
	}

	srv := httptest.NewServer(pageHandler(t, pages))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	items, err := client.FetchCategory(context.Background(), models.CategoryMeetings, testRef)
	require.NoError(t, err)
	require.Len(t, items, 5)

	// Order must match the upstream page order.
	for i, item := range items {
		var rec struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(item, &rec))
		require.Equal(t, fmt.Sprintf("m-%d", i+1), rec.ID)
	}
}

func TestFetchCategory_SendsPaginationParams(t *testing.T) {
	var gotPage, gotPageSize, gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		gotPageSize = r.URL.Query().Get("pageSize")
		gotBody = r.URL.Query().Get("body")

		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchCategory(context.Background(), models.CategoryMeetings, testRef)
	require.NoError(t, err)
	require.Equal(t, "1", gotPage)
	require.Equal(t, "3", gotPageSize)
	require.Equal(t, "GA", gotBody)
}

func TestFetchCategory_ResultEnvelope(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `{"result": [{"symbol": "A/C.1/80/L.1", "title": "Test"}]}`)
			return
		}

		fmt.Fprint(w, `{"result": []}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	ref := testRef
	ref.Committee = "First Committee"

	items, err := client.FetchCategory(context.Background(), models.CategoryProposals, ref)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFetchCategory_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			fmt.Fprint(w, `[{"id": "m-1"}]`)
		default:
			fmt.Fprint(w, "[]")
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	items, err := client.FetchCategory(context.Background(), models.CategoryMeetings, testRef)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int32(3), calls.Load())
}

func TestFetchCategory_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchCategory(context.Background(), models.CategoryMeetings, testRef)
	require.ErrorIs(t, err, ErrFetchFailed)
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
	require.Equal(t, int32(3), calls.Load())
}

func TestFetchCategory_NonRetryableStatusFailsFast(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchCategory(context.Background(), models.CategoryMeetings, testRef)
	require.ErrorIs(t, err, ErrUnexpectedStatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetchCategory_MalformedBodyFailsFast(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchCategory(context.Background(), models.CategoryMeetings, testRef)
	require.ErrorIs(t, err, ErrMalformedPage)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetchCategory_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchCategory(ctx, models.CategoryMeetings, testRef)
	require.Error(t, err)
}

func TestCategoryRequest_Endpoints(t *testing.T) {
	tests := []struct {
		category models.Category
		ref      SessionRef
		wantPath string
	}{
		{models.CategoryMeetings, testRef, "meetings/getbysession/80th%20session"},
		{models.CategoryAgenda, testRef, "getlookups/getAgendas/80"},
		{models.CategoryDocuments, testRef, "meetings/getdocumentsbysession/80th%20session"},
		{models.CategoryDecisions, testRef, "decision/getbysession/80th"},
		{
			models.CategoryProposals,
			SessionRef{Number: "80", Label: "80th session", DecisionLabel: "80th", BodyParam: "GA", Committee: "First Committee"},
			"proposals/80th%20session/First%20Committee",
		},
		// The plenary proposals endpoint falls back to the body code.
		{models.CategoryProposals, testRef, "proposals/80th%20session/GA"},
	}

	for _, tt := range tests {
		path, _, err := categoryRequest(tt.category, tt.ref)
		require.NoError(t, err)
		require.Equal(t, tt.wantPath, path)
	}
}

func TestCategoryRequest_UnknownCategory(t *testing.T) {
	_, _, err := categoryRequest(models.Category("minutes"), testRef)
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDecodePage(t *testing.T) {
	items, err := decodePage([]byte(`[{"a": 1}, {"b": 2}]`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = decodePage([]byte(`{"result": [{"a": 1}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = decodePage([]byte(`{"result": []}`))
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = decodePage([]byte(`"scalar"`))
	require.ErrorIs(t, err, ErrMalformedPage)
}

func TestIsRetryableStatus(t *testing.T) {
	require.True(t, isRetryableStatus(http.StatusInternalServerError))
	require.True(t, isRetryableStatus(http.StatusBadGateway))
	require.True(t, isRetryableStatus(http.StatusRequestTimeout))
	require.True(t, isRetryableStatus(http.StatusTooManyRequests))
	require.False(t, isRetryableStatus(http.StatusNotFound))
	require.False(t, isRetryableStatus(http.StatusBadRequest))
}
