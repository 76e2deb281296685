package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/magicspin/laundry-api/internal/api/shared"
	"github.com/magicspin/laundry-api/internal/domain"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser("alice@gmail.com", "hash", "Alice", "9876543210", "12 Lane")
	require.NoError(t, err)
	u.Role = role
	u.IsVerified = true
	return u
}

// requestOpts configures a test request.
type requestOpts struct {
	body    interface{}
	rawBody string
	user    *domain.User
	params  map[string]string
	headers map[string]string
}

// serve invokes h with a request built from opts and returns the recorder.
func serve(t *testing.T, h http.HandlerFunc, method, path string, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader = http.NoBody
	switch {
	case opts.rawBody != "":
		body = bytes.NewBufferString(opts.rawBody)
	case opts.body != nil:
		data, err := json.Marshal(opts.body)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}

	ctx := context.WithValue(req.Context(), shared.TraceIDKey, "trace-test")
	if opts.user != nil {
		ctx = shared.WithUser(ctx, opts.user)
	}
	if len(opts.params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range opts.params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	w := httptest.NewRecorder()
	h(w, req.WithContext(ctx))
	return w
}

// envelope is the generic success body.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
