package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/config"
	"github.com/blackwell-systems/chapterdesk/internal/logging"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		HTTP:       config.DefaultHTTP,
		Session:    config.DefaultSession,
		Spotlight:  config.DefaultSpotlight,
		Dues:       config.DefaultDues,
		Pagination: config.DefaultPagination,
	}
}

func setupServer(t *testing.T) (http.Handler, *store.DB) {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f, err := chapter.LoadFixture("../../testdata/demo_chapter.json")
	require.NoError(t, err)
	_, err = db.ImportFixture(context.Background(), f)
	require.NoError(t, err)

	srv := New(db, testConfig(), nil, logging.Discard(),
		WithClock(func() time.Time { return now }),
		WithRegistry(prometheus.NewRegistry()),
	)
	return srv.Routes(), db
}

func do(t *testing.T, h http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
