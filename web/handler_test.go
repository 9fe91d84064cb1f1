package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/arllen133/userforms/users"
	"github.com/arllen133/userforms/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memGateway keeps users in a slice. failWrites and failList inject store errors.
type memGateway struct {
	mu         sync.Mutex
	users      []*users.User
	nextID     int64
	failWrites bool
	failList   bool
}

var errStore = errors.New("store unavailable")

func (g *memGateway) ListAll(context.Context) ([]*users.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failList {
		return nil, errStore
	}
	out := make([]*users.User, 0, len(g.users))
	for _, u := range g.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (g *memGateway) Insert(_ context.Context, name string, age int, email string) (*users.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWrites {
		return nil, errStore
	}
	g.nextID++
	u := &users.User{ID: g.nextID, Name: name, Age: age, Email: email}
	g.users = append(g.users, u)
	return u, nil
}

func (g *memGateway) UpdateByID(_ context.Context, id int64, name string, age int, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWrites {
		return errStore
	}
	for _, u := range g.users {
		if u.ID == id {
			u.Name, u.Age, u.Email = name, age, email
		}
	}
	return nil
}

func (g *memGateway) DeleteByID(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWrites {
		return errStore
	}
	for i, u := range g.users {
		if u.ID == id {
			g.users = append(g.users[:i], g.users[i+1:]...)
			break
		}
	}
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	gateway *memGateway
	router  *gin.Engine
	logs    *bytes.Buffer
}

func newTestServer(t *testing.T, pingErr error, seed ...*users.User) *testServer {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(web.NewContextHandler(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	gw := &memGateway{}
	for _, u := range seed {
		gw.nextID++
		u.ID = gw.nextID
		gw.users = append(gw.users, u)
	}
	d := users.NewDispatcher(gw, users.WithLogger(logger))
	h := web.NewHandler(gw, d, fakePinger{err: pingErr}, logger)
	return &testServer{gateway: gw, router: web.NewRouter(h, logger), logs: logs}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func decodePayload(t *testing.T, w *httptest.ResponseRecorder) users.Payload {
	t.Helper()
	var p users.Payload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	return p
}

func TestSubmitJSON(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		failWrites bool
		status     int
		want       users.Payload
	}{
		{
			name:   "create",
			form:   url.Values{"_intent": {"create"}, "name": {"Ann"}, "age": {"30"}, "email": {"ann@x.com"}},
			status: http.StatusOK,
			want:   users.Payload{Success: users.MsgCreated},
		},
		{
			name:   "create missing name",
			form:   url.Values{"_intent": {"create"}, "age": {"30"}, "email": {"ann@x.com"}},
			status: http.StatusBadRequest,
			want:   users.Payload{Error: users.MsgAllFieldsRequired},
		},
		{
			name:   "update bad age",
			form:   url.Values{"_intent": {"update"}, "id": {"1"}, "name": {"Ann"}, "age": {"old"}, "email": {"ann@x.com"}},
			status: http.StatusBadRequest,
			want:   users.Payload{Error: users.MsgAllFieldsAreRequired},
		},
		{
			name:   "delete",
			form:   url.Values{"_intent": {"delete"}, "id": {"1"}},
			status: http.StatusOK,
			want:   users.Payload{Success: users.MsgDeleted},
		},
		{
			name:   "unknown intent",
			form:   url.Values{"_intent": {"archive"}},
			status: http.StatusBadRequest,
			want:   users.Payload{Error: users.MsgInvalidAction},
		},
		{
			name:   "no intent",
			form:   url.Values{},
			status: http.StatusBadRequest,
			want:   users.Payload{Error: users.MsgInvalidAction},
		},
		{
			name:       "store failure",
			form:       url.Values{"_intent": {"update"}, "id": {"1"}, "name": {"Ann"}, "age": {"30"}, "email": {"ann@x.com"}},
			failWrites: true,
			status:     http.StatusInternalServerError,
			want:       users.Payload{Error: users.MsgSomethingWentWrong},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			s.gateway.failWrites = tt.failWrites

			w := s.post("/api/users", tt.form)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, decodePayload(t, w))
		})
	}
}

func TestSubmitJSONStoreErrorIsNotLeaked(t *testing.T) {
	s := newTestServer(t, nil)
	s.gateway.failWrites = true

	w := s.post("/api/users", url.Values{"_intent": {"delete"}, "id": {"3"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), errStore.Error())
	assert.Contains(t, s.logs.String(), errStore.Error())
}

func TestList(t *testing.T) {
	s := newTestServer(t, nil,
		&users.User{Name: "Ann", Age: 30, Email: "ann@x.com"},
		&users.User{Name: "Bob", Age: 41, Email: "bob@x.com"},
	)

	w := s.get("/api/users")
	require.Equal(t, http.StatusOK, w.Code)

	var got []users.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []users.User{
		{ID: 1, Name: "Ann", Age: 30, Email: "ann@x.com"},
		{ID: 2, Name: "Bob", Age: 41, Email: "bob@x.com"},
	}, got)
}

func TestListEmptyIsArray(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.get("/api/users")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListStoreFailure(t *testing.T) {
	s := newTestServer(t, nil)
	s.gateway.failList = true

	w := s.get("/api/users")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, users.Payload{Error: users.MsgSomethingWentWrong}, decodePayload(t, w))
}

func TestPage(t *testing.T) {
	s := newTestServer(t, nil, &users.User{Name: "Ann", Age: 30, Email: "ann@x.com"})

	w := s.get("/users")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="user-1"`)
	assert.Contains(t, body, "<strong>Ann</strong>")
	assert.Contains(t, body, `href="/users?edit=1"`)
	assert.Contains(t, body, `value="create"`)
	assert.NotContains(t, body, `value="update"`)
}

func TestPageEditPrefillsForm(t *testing.T) {
	s := newTestServer(t, nil, &users.User{Name: "Ann", Age: 30, Email: "ann@x.com"})

	w := s.get("/users?edit=1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `name="id" value="1"`)
	assert.Contains(t, body, `name="name" value="Ann"`)
	assert.Contains(t, body, `name="age" value="30"`)
	assert.Contains(t, body, `value="update"`)
	assert.Contains(t, body, "Cancel")
}

func TestPageEditUnknownIDFallsBackToCreate(t *testing.T) {
	s := newTestServer(t, nil, &users.User{Name: "Ann", Age: 30, Email: "ann@x.com"})

	w := s.get("/users?edit=99")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="create"`)
	assert.NotContains(t, w.Body.String(), `value="update"`)
}

func TestPageStoreFailure(t *testing.T) {
	s := newTestServer(t, nil)
	s.gateway.failList = true

	w := s.get("/users")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), users.MsgSomethingWentWrong)
}

func TestSubmitRendersResult(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.post("/users", url.Values{"_intent": {"create"}, "name": {"Ann"}, "age": {"30"}, "email": {"ann@x.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<p class="success">`+users.MsgCreated+`</p>`)
	assert.Contains(t, body, "<strong>Ann</strong>")

	w = s.post("/users", url.Values{"_intent": {"create"}, "name": {"Bob"}, "age": {""}, "email": {"bob@x.com"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, `<p class="error">`+users.MsgAllFieldsRequired+`</p>`)
	assert.NotContains(t, body, "<strong>Bob</strong>")
}

func TestSubmitFailedUpdateStaysInEditMode(t *testing.T) {
	s := newTestServer(t, nil, &users.User{Name: "Ann", Age: 30, Email: "ann@x.com"})

	w := s.post("/users", url.Values{"_intent": {"update"}, "id": {"1"}, "name": {""}, "age": {"30"}, "email": {"ann@x.com"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, users.MsgAllFieldsAreRequired)
	assert.Contains(t, body, `name="id" value="1"`)
	assert.Contains(t, body, `value="update"`)
}

func TestSubmitSuccessfulUpdateLeavesEditMode(t *testing.T) {
	s := newTestServer(t, nil, &users.User{Name: "Ann", Age: 30, Email: "ann@x.com"})

	w := s.post("/users", url.Values{"_intent": {"update"}, "id": {"1"}, "name": {"Annie"}, "age": {"31"}, "email": {"annie@x.com"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, users.MsgUpdated)
	assert.Contains(t, body, "<strong>Annie</strong>")
	assert.NotContains(t, body, `value="update"`)
}

func TestSubmitMultipart(t *testing.T) {
	s := newTestServer(t, nil)

	var buf bytes.Buffer
	body := "--b\r\nContent-Disposition: form-data; name=\"_intent\"\r\n\r\ncreate\r\n" +
		"--b\r\nContent-Disposition: form-data; name=\"name\"\r\n\r\nAnn\r\n" +
		"--b\r\nContent-Disposition: form-data; name=\"age\"\r\n\r\n30\r\n" +
		"--b\r\nContent-Disposition: form-data; name=\"email\"\r\n\r\nann@x.com\r\n" +
		"--b--\r\n"
	buf.WriteString(body)
	req := httptest.NewRequest(http.MethodPost, "/api/users", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")

	w := s.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, users.Payload{Success: users.MsgCreated}, decodePayload(t, w))
	assert.Len(t, s.gateway.users, 1)
}

func TestSubmitTruncatedMultipartIsLogged(t *testing.T) {
	s := newTestServer(t, nil)

	body := "--b\r\nContent-Disposition: form-data; name=\"_intent\"\r\n\r\ncreate\r\n" +
		"--b\r\nContent-Disposition: form-data; name=\"name\"\r\n\r\nAnn"
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")

	w := s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, users.Payload{Error: users.MsgInvalidAction}, decodePayload(t, w))
	assert.Empty(t, s.gateway.users)
	assert.Contains(t, s.logs.String(), `"msg":"parse form"`)
}

func TestSubmitURLEncodedKeepsValidFields(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader("_intent=create&name=Ann&age=30&email=ann%40x.com&junk=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := s.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.gateway.users, 1)
	assert.Contains(t, s.logs.String(), `"msg":"parse form"`)
}

func TestHealth(t *testing.T) {
	w := newTestServer(t, nil).get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = newTestServer(t, errors.New("connection refused")).get("/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestRootRedirects(t *testing.T) {
	w := newTestServer(t, nil).get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users", w.Header().Get("Location"))
}
