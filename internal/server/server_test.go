package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usnaveen/paperlink/internal/code"
	"github.com/usnaveen/paperlink/internal/correct"
	"github.com/usnaveen/paperlink/internal/links"
	"github.com/usnaveen/paperlink/internal/match"
	"github.com/usnaveen/paperlink/internal/server"
	"github.com/usnaveen/paperlink/internal/store"
)

type linkBody struct {
	Code      string `json:"code"`
	URL       string `json:"url"`
	ShortURL  string `json:"short_url"`
	ScanCount int64  `json:"scan_count"`
}

type recoverBody struct {
	Code     string `json:"code"`
	URL      string `json:"url"`
	ShortURL string `json:"short_url"`
	Method   string `json:"method"`
	Distance int    `json:"distance"`
	Scanned  string `json:"scanned"`
}

type errorBody struct {
	Error string `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := links.NewService(st, correct.Default(), match.DefaultMaxDistance)
	return server.NewRouter(server.Config{BaseURL: "https://paper.link"}, svc), st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestCreateAndFetchLink(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/links", `{"url": "https://example.com/flyer"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[linkBody](t, rec)
	assert.True(t, code.IsValid(created.Code), "minted code %q should be valid", created.Code)
	assert.Equal(t, "https://example.com/flyer", created.URL)
	assert.Equal(t, "https://paper.link/"+created.Code, created.ShortURL)
	assert.Zero(t, created.ScanCount)

	t.Run("fetch by code", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/links/"+created.Code, "")
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[linkBody](t, rec)
		assert.Equal(t, created.Code, got.Code)
		assert.Equal(t, created.URL, got.URL)
	})

	t.Run("fetch is case insensitive", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/links/"+strings.ToLower(created.Code), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown code is a 404", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/links/PL-XXX-XXY", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "unknown code", decode[errorBody](t, rec).Error)
	})
}

func TestCreateLinkRejectsBadRequests(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `{"url": `},
		{name: "empty URL", body: `{"url": ""}`},
		{name: "not a URL", body: `{"url": "not a url"}`},
		{name: "unsupported scheme", body: `{"url": "ftp://example.com/x"}`},
		{name: "missing scheme", body: `{"url": "example.com/page"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/links", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRecover(t *testing.T) {
	h, st := newTestRouter(t)

	ctx := context.Background()
	_, err := st.CreateLink(ctx, "PL-QA9-K2M", "https://example.com/menu")
	require.NoError(t, err)
	_, err = st.CreateLink(ctx, "PL-ACD-EFG", "https://example.com/poster")
	require.NoError(t, err)

	t.Run("repairs a zero misread as Q", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover", `{"text": "PL-0A9-K2M"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[recoverBody](t, rec)
		assert.Equal(t, "PL-QA9-K2M", got.Code)
		assert.Equal(t, "https://example.com/menu", got.URL)
		assert.Equal(t, "https://paper.link/PL-QA9-K2M", got.ShortURL)
		assert.Equal(t, "exact", got.Method)
		assert.Zero(t, got.Distance)
	})

	t.Run("finds a clean code inside surrounding text", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover", `{"text": "visit PL-ACD-EFG for the schedule"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[recoverBody](t, rec)
		assert.Equal(t, "PL-ACD-EFG", got.Code)
		assert.Equal(t, "exact", got.Method)
	})

	t.Run("falls back to edit distance", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover", `{"text": "PL-ACD-EF"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[recoverBody](t, rec)
		assert.Equal(t, "PL-ACD-EFG", got.Code)
		assert.Equal(t, "fuzzy", got.Method)
		assert.Equal(t, 1, got.Distance)
	})

	t.Run("no match is a 404", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover", `{"text": "PL-XXX-XXX"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "no match", decode[errorBody](t, rec).Error)
	})

	t.Run("empty text is a 400", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover", `{"text": "  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecoverLive(t *testing.T) {
	h, st := newTestRouter(t)

	_, err := st.CreateLink(context.Background(), "PL-ACD-EFH", "https://example.com/live")
	require.NoError(t, err)

	t.Run("matches one substitution away", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover/live", `{"code": "PL-ACD-EFG"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[recoverBody](t, rec)
		assert.Equal(t, "PL-ACD-EFH", got.Code)
		assert.Equal(t, "live", got.Method)
		assert.Equal(t, 1, got.Distance)
		assert.Equal(t, "PL-ACD-EFG", got.Scanned)
	})

	t.Run("exact scans skip the matcher", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover/live", `{"code": " pl-acd-efh "}`)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decode[recoverBody](t, rec)
		assert.Equal(t, "PL-ACD-EFH", got.Code)
		assert.Equal(t, "exact", got.Method)
		assert.Zero(t, got.Distance)
	})

	t.Run("two substitutions away is a 404", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover/live", `{"code": "PL-AC2-EFG"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty code is a 400", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/recover/live", `{"code": ""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRedirect(t *testing.T) {
	h, st := newTestRouter(t)

	ctx := context.Background()
	_, err := st.CreateLink(ctx, "PL-ACD-EFG", "https://example.com/target")
	require.NoError(t, err)

	t.Run("redirects and counts the visit", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/PL-ACD-EFG", "")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://example.com/target", rec.Header().Get("Location"))

		link, err := st.FindByCode(ctx, "PL-ACD-EFG")
		require.NoError(t, err)
		assert.Equal(t, int64(1), link.ScanCount)
	})

	t.Run("lowercase path redirects too", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/pl-acd-efg", "")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://example.com/target", rec.Header().Get("Location"))
	})

	t.Run("unknown code is a 404", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/PL-ACD-EFH", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-code paths are a 404", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/favicon.ico", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
