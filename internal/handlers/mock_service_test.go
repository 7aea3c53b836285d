package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"myblog/internal/models"
	"myblog/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockPosts struct {
	posts     []models.Post
	listErr   error
	createErr error
	getErr    error
	updateErr error
	deleteErr error

	createCalls int
	updateCalls int
	deleteCalls int
	lastInput   service.PostInput
	lastID      string
	lastImage   *string
}

func (m *mockPosts) List(ctx context.Context) ([]models.Post, error) {
	return m.posts, m.listErr
}
func (m *mockPosts) Create(ctx context.Context, in service.PostInput) (models.Post, error) {
	m.createCalls++
	m.lastInput = in
	if m.createErr != nil {
		return models.Post{}, m.createErr
	}
	p := models.Post{ID: "p-new", Title: in.Title, Content: in.Content}
	m.posts = append(m.posts, p)
	return p, nil
}
func (m *mockPosts) Get(ctx context.Context, id string) (models.Post, error) {
	m.lastID = id
	if m.getErr != nil {
		return models.Post{}, m.getErr
	}
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Post{}, service.ErrPostNotFound
}
func (m *mockPosts) Update(ctx context.Context, id string, in service.PostInput, imageURL *string) error {
	m.updateCalls++
	m.lastID = id
	m.lastInput = in
	m.lastImage = imageURL
	return m.updateErr
}
func (m *mockPosts) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	m.lastID = id
	return m.deleteErr
}

type mockAuth struct {
	user      models.User
	signUpErr error
	authErr   error

	lastEmail    string
	lastPassword string
	signUpCalls  int
}

func (m *mockAuth) SignUp(ctx context.Context, email, password string) (models.User, error) {
	m.signUpCalls++
	m.lastEmail = email
	m.lastPassword = password
	return m.user, m.signUpErr
}
func (m *mockAuth) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	m.lastEmail = email
	m.lastPassword = password
	if m.authErr != nil {
		return models.User{}, m.authErr
	}
	return m.user, nil
}

// mockSessions accepts exactly one token.
type mockSessions struct {
	token    string
	userID   string
	startErr error
	curErr   error

	ended []string
}

func (m *mockSessions) Start(ctx context.Context, userID string) (string, error) {
	m.userID = userID
	return m.token, m.startErr
}
func (m *mockSessions) Current(ctx context.Context, token string) (string, error) {
	if m.curErr != nil {
		return "", m.curErr
	}
	if token != m.token || m.token == "" {
		return "", service.ErrNoSession
	}
	return m.userID, nil
}
func (m *mockSessions) End(ctx context.Context, token string) error {
	m.ended = append(m.ended, token)
	return nil
}

type mockUploads struct {
	ref      string
	storeErr error
	path     string
	openErr  error

	lastPostID   string
	lastFilename string
	lastBody     []byte
}

func (m *mockUploads) Store(ctx context.Context, postID, filename string, r io.Reader) (string, error) {
	m.lastPostID = postID
	m.lastFilename = filename
	m.lastBody, _ = io.ReadAll(r)
	return m.ref, m.storeErr
}
func (m *mockUploads) Open(name string) (string, error) {
	return m.path, m.openErr
}

// ---- Shared Test Helpers ----

var testFlashKey = []byte("handler-test-signing-key")

const testSessionToken = "tok-123"

// newTestServices returns a Service with a real flash codec and feed; callers
// fill in the mocks they need.
func newTestServices() *service.Service {
	return &service.Service{
		Posts:         &mockPosts{},
		Authorization: &mockAuth{},
		Sessions:      &mockSessions{token: testSessionToken, userID: "u-1"},
		FlashCodec:    service.NewFlashService(testFlashKey),
		Uploads:       &mockUploads{},
		Feed:          service.NewFeed(),
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, Config{RequireSession: true, SessionTTL: time.Hour}, nil)
	return h.InitRoutes()
}

func serve(r http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookieFor(token string) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: token}
}

// responseCookie returns the last Set-Cookie named name, or nil.
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

// flashOf decodes the flash cookie set by the response.
func flashOf(t *testing.T, w *httptest.ResponseRecorder) models.Flash {
	t.Helper()
	ck := responseCookie(w, flashCookie)
	if ck == nil || ck.Value == "" {
		t.Fatalf("no flash cookie set; status=%d headers=%v", w.Code, w.Header())
	}
	f, err := service.NewFlashService(testFlashKey).Decode(ck.Value)
	if err != nil {
		t.Fatalf("decode flash: %v", err)
	}
	return f
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("status: got %d, want %d (body=%s)", w.Code, http.StatusFound, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Location: got %q, want %q", got, location)
	}
}
