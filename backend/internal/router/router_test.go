package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/itchan-dev/anonboard/backend/internal/setup"
	"github.com/itchan-dev/anonboard/shared/api"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(enableDeleteAll bool) *config.Config {
	return &config.Config{
		Public: config.Public{
			HttpPort:        8080,
			Storage:         config.StorageMemory,
			ThreadsPerPage:  10,
			RepliesPreview:  3,
			MaxListLimit:    50,
			BcryptCost:      4,
			MaxHashers:      2,
			RequestTimeout:  5 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
			PostsPerMinute:  600,
			EnableDeleteAll: enableDeleteAll,
			OperatorTTL:     time.Minute,
		},
		Private: config.Private{JwtKey: "test-key"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (http.Handler, *setup.Dependencies) {
	t.Helper()
	deps, err := setup.SetupDependencies(context.Background(), cfg)
	require.NoError(t, err)
	r, limiter := New(deps)
	t.Cleanup(limiter.Stop)
	return r, deps
}

func send(h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func jsonString(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &s), rr.Body.String())
	return s
}

func TestBoardFlow(t *testing.T) {
	h, _ := newTestServer(t, testConfig(false))

	rr := send(h, http.MethodPost, "/api/threads/general", `{"text":"hello","delete_password":"pw"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var thread api.ThreadView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &thread))
	assert.Equal(t, "hello", thread.Text)
	assert.Equal(t, thread.CreatedOn, thread.BumpedOn)

	rr = send(h, http.MethodPost, "/api/replies/general",
		`{"thread_id":"`+thread.Id+`","text":"hi","delete_password":"rpw"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var withReply api.ThreadView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &withReply))
	require.Len(t, withReply.Replies, 1)
	replyId := withReply.Replies[0].Id

	rr = send(h, http.MethodGet, "/api/threads/general", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listing []api.ThreadView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listing))
	require.Len(t, listing, 1)
	assert.Len(t, listing[0].Replies, 1)
	assert.NotContains(t, rr.Body.String(), "delete_password")
	assert.NotContains(t, rr.Body.String(), `"board"`)

	rr = send(h, http.MethodPut, "/api/replies/general", `{"thread_id":"`+thread.Id+`","reply_id":"`+replyId+`"}`)
	assert.Equal(t, "reported", jsonString(t, rr))

	rr = send(h, http.MethodGet, "/api/replies/general?thread_id="+thread.Id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"reported":true`)

	rr = send(h, http.MethodGet, "/api/replies/general/"+thread.Id+"/"+replyId, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = send(h, http.MethodDelete, "/api/replies/general",
		`{"thread_id":"`+thread.Id+`","reply_id":"`+replyId+`","delete_password":"pw"}`)
	assert.Equal(t, "incorrect password", jsonString(t, rr))

	rr = send(h, http.MethodDelete, "/api/replies/general",
		`{"thread_id":"`+thread.Id+`","reply_id":"`+replyId+`","delete_password":"rpw"}`)
	assert.Equal(t, "success", jsonString(t, rr))

	rr = send(h, http.MethodPut, "/api/threads/general", `{"report_id":"`+thread.Id+`"}`)
	assert.Equal(t, "reported", jsonString(t, rr))

	rr = send(h, http.MethodDelete, "/api/threads/general", `{"thread_id":"`+thread.Id+`","delete_password":"pw"}`)
	assert.Equal(t, "success", jsonString(t, rr))

	rr = send(h, http.MethodGet, "/api/replies/general?thread_id="+thread.Id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRejectsNonStringProperties(t *testing.T) {
	h, _ := newTestServer(t, testConfig(false))

	rr := send(h, http.MethodPost, "/api/threads/general", `{"text":{"$gt":""},"delete_password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "only strings are accepted for properties")
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestServer(t, testConfig(false))

	rr := send(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Not Found", strings.TrimSpace(rr.Body.String()))
}

func TestSecurityHeadersAndHealthEndpoints(t *testing.T) {
	h, _ := newTestServer(t, testConfig(false))

	rr := send(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "off", rr.Header().Get("X-DNS-Prefetch-Control"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))

	rr = send(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = send(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "anonboard_http_requests_total")
}

func TestPostRateLimit(t *testing.T) {
	cfg := testConfig(false)
	cfg.Public.PostsPerMinute = 1
	h, _ := newTestServer(t, cfg)

	body := `{"text":"hello","delete_password":"pw"}`
	rr := send(h, http.MethodPost, "/api/threads/general", body)
	assert.Equal(t, http.StatusCreated, rr.Code)
	rr = send(h, http.MethodPost, "/api/threads/general", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// reads are not limited
	rr = send(h, http.MethodGet, "/api/threads/general", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDeleteAllRoute(t *testing.T) {
	t.Run("absent unless enabled", func(t *testing.T) {
		h, _ := newTestServer(t, testConfig(false))
		rr := send(h, http.MethodDelete, "/api/admin/threads", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("requires operator token", func(t *testing.T) {
		h, deps := newTestServer(t, testConfig(true))

		rr := send(h, http.MethodPost, "/api/threads/general", `{"text":"hello","delete_password":"pw"}`)
		require.Equal(t, http.StatusCreated, rr.Code)

		rr = send(h, http.MethodDelete, "/api/admin/threads", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		token, err := deps.Jwt.NewOperatorToken("ops")
		require.NoError(t, err)
		rr = send(h, http.MethodDelete, "/api/admin/threads", "", "Authorization", "Bearer "+token)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"deleted":1}`, rr.Body.String())

		rr = send(h, http.MethodGet, "/api/threads/general", "")
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestMarkupOnlyText(t *testing.T) {
	h, _ := newTestServer(t, testConfig(false))

	rr := send(h, http.MethodPost, "/api/threads/general", `{"text":"<hello>","delete_password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Text is empty after removing markup", strings.TrimSpace(rr.Body.String()))

	rr = send(h, http.MethodPost, "/api/threads/general", `{"text":"a <b>bold</b> < move","delete_password":"pw"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var thread api.ThreadView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &thread))
	assert.Equal(t, "a bold &lt; move", thread.Text)
}

func TestDeletePasswordIsTrimmed(t *testing.T) {
	h, _ := newTestServer(t, testConfig(false))

	rr := send(h, http.MethodPost, "/api/threads/general", `{"text":"hello","delete_password":"p2 "}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var thread api.ThreadView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &thread))

	rr = send(h, http.MethodDelete, "/api/threads/general", `{"thread_id":"`+thread.Id+`","delete_password":"p2"}`)
	assert.Equal(t, "success", jsonString(t, rr))
}
