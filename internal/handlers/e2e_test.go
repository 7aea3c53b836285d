package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"myblog/internal/models"
	"myblog/internal/repository/boltstore"
	"myblog/internal/service"
	"myblog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type browser struct {
	t      *testing.T
	base   *url.URL
	client *http.Client
	codec  service.FlashCodec
}

func newBlog(t *testing.T) (*browser, *service.Service) {
	t.Helper()
	dir := t.TempDir()

	db, err := boltstore.Open(filepath.Join(dir, "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sink, err := storage.NewFileSink(filepath.Join(dir, "uploads"), 1<<20)
	require.NoError(t, err)

	key := []byte("e2e-secret-key-0123456789")
	services := service.NewService(boltstore.NewRepository(db), sink, service.Options{SecretKey: key, SessionTTL: time.Hour}, nil)

	gin.SetMode(gin.TestMode)
	h := NewHandler(services, Config{RequireSession: true, SessionTTL: time.Hour}, nil)
	srv := httptest.NewServer(h.InitRoutes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, _ := url.Parse(srv.URL)

	return &browser{
		t:    t,
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		codec: service.NewFlashService(key),
	}, services
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, b.base.String()+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, values url.Values) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodPost, b.base.String()+path, strings.NewReader(values.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path string, fields map[string]string, fileName string, data []byte) (*http.Response, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		require.NoError(b.t, err)
		_, _ = fw.Write(data)
	}
	require.NoError(b.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, b.base.String()+path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

// flash returns the pending flash message held by the browser.
func (b *browser) flash() models.Flash {
	b.t.Helper()
	for _, ck := range b.client.Jar.Cookies(b.base) {
		if ck.Name == flashCookie {
			f, err := b.codec.Decode(ck.Value)
			require.NoError(b.t, err)
			return f
		}
	}
	b.t.Fatalf("no pending flash")
	return models.Flash{}
}

func requireRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}

func TestBlog_EndToEnd(t *testing.T) {
	b, services := newBlog(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	resp, _ := b.get("/create")
	requireRedirect(t, resp, "/login")
	assert.Equal(t, msgLoginRequired, b.flash().Message)

	resp, _ = b.post("/signup", url.Values{"email": {"bob"}, "password": {"pw"}, "confirm_password": {"pw"}})
	requireRedirect(t, resp, "/signup")
	assert.Equal(t, "Please enter a valid email address!", b.flash().Message)

	signup := url.Values{"email": {"Writer@Example.com"}, "password": {"s3cret"}, "confirm_password": {"s3cret"}}
	resp, _ = b.post("/signup", signup)
	requireRedirect(t, resp, "/login")
	assert.Equal(t, msgSignupOK, b.flash().Message)

	resp, _ = b.post("/signup", signup)
	requireRedirect(t, resp, "/signup")
	assert.Equal(t, "Email already registered!", b.flash().Message)

	resp, _ = b.post("/login", url.Values{"email": {"writer@example.com"}, "password": {"wrong"}})
	requireRedirect(t, resp, "/login")
	assert.Equal(t, msgInvalidCredentials, b.flash().Message)

	resp, _ = b.post("/login", url.Values{"email": {"writer@example.com"}, "password": {"s3cret"}})
	requireRedirect(t, resp, "/")
	assert.Equal(t, msgLoginOK, b.flash().Message)

	resp, _ = b.post("/create", url.Values{"title": {"First"}, "content": {"Hello there"}})
	requireRedirect(t, resp, "/")
	assert.Equal(t, msgPostCreated, b.flash().Message)

	resp, body := b.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "First")
	assert.Contains(t, body, msgPostCreated)

	posts, err := services.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	id := posts[0].ID

	resp, _ = b.get("/delete/2b1e6f0a-1a43-4f43-9d2a-000000000000")
	requireRedirect(t, resp, "/")
	assert.Equal(t, msgPostNotFound, b.flash().Message)
	posts, err = services.Posts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	resp, _ = b.postMultipart("/edit/"+id, map[string]string{"title": "First", "content": "Edited"}, "run.sh", []byte("#!/bin/sh"))
	requireRedirect(t, resp, "/edit/"+id)
	assert.Equal(t, msgInvalidImage, b.flash().Message)

	img := []byte("\x89PNG fake image bytes")
	resp, _ = b.postMultipart("/edit/"+id, map[string]string{"title": "First", "content": "Edited"}, "My Cat.PNG", img)
	requireRedirect(t, resp, "/")
	assert.Equal(t, msgPostUpdated, b.flash().Message)

	p, err := services.Posts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Edited", p.Content)
	require.True(t, strings.HasPrefix(p.ImageURL, storage.URLPrefix+id+"-"), p.ImageURL)
	assert.True(t, strings.HasSuffix(p.ImageURL, "-my-cat.png"), p.ImageURL)

	resp, body = b.get(p.ImageURL)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(img), body)

	resp, _ = b.postMultipart("/edit/"+id, map[string]string{"title": "Renamed", "content": "Edited"}, "", nil)
	requireRedirect(t, resp, "/")
	p, err = services.Posts.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Title)
	assert.NotEmpty(t, p.ImageURL)

	resp, _ = b.get("/uploads/..%2F..%2Fblog.db")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = b.get("/delete/" + id)
	requireRedirect(t, resp, "/")
	assert.Equal(t, msgPostDeleted, b.flash().Message)

	resp, _ = b.get("/logout")
	requireRedirect(t, resp, "/")
	assert.Equal(t, msgLoggedOut, b.flash().Message)

	resp, _ = b.get("/delete/" + id)
	requireRedirect(t, resp, "/login")
}
