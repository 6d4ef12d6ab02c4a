package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/suPer8Hu/mall-console/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestGet_AttachesBearerAndDecodesData(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"code":200,"message":"ok","data":{"name":"goods"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithTokenSource(TokenFunc(func() string { return "tok" })))

	var out struct {
		Name string `json:"name"`
	}
	if err := c.Get(context.Background(), "/menu/merchant", nil, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if out.Name != "goods" {
		t.Fatalf("unexpected data: %+v", out)
	}
}

func TestGet_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"code":0,"message":"ok","data":null}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithTokenSource(TokenFunc(func() string { return "" })))
	if err := c.Post(context.Background(), "/auth/login", map[string]string{"username": "a"}, nil); err != nil {
		t.Fatalf("post: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestEnvelopeRejection_401RunsHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":401,"message":"token expired","data":null}`)
	}))
	defer srv.Close()

	var hooked atomic.Int32
	var hookToken atomic.Value
	c := New(srv.URL, time.Second,
		WithTokenSource(TokenFunc(func() string { return "tok-1" })),
		WithUnauthorizedHook(func(token string) {
			hooked.Add(1)
			hookToken.Store(token)
		}))

	err := c.Get(context.Background(), "/orders/page", nil, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var se *ServerError
	if !errors.As(err, &se) || se.Message != "token expired" {
		t.Fatalf("expected server message, got %v", err)
	}
	if hooked.Load() != 1 {
		t.Fatalf("expected hook to run once, ran %d", hooked.Load())
	}
	if got := hookToken.Load(); got != "tok-1" {
		t.Fatalf("hook should see the request's token, got %v", got)
	}
}

func TestEnvelopeRejection_OtherCodeNoHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":500,"message":"stock locked","data":null}`)
	}))
	defer srv.Close()

	hooked := false
	c := New(srv.URL, time.Second, WithUnauthorizedHook(func(string) { hooked = true }))

	err := c.Put(context.Background(), "/orders/1/ship", nil, nil)
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected plain server error, got %v", err)
	}
	if UserMessage(err) != "stock locked" {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
	if hooked {
		t.Fatalf("hook must not run for code 500")
	}
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	err := c.Get(context.Background(), "/admin/goods", nil, nil)
	var se *ServerError
	if !errors.As(err, &se) || se.HTTPStatus != 403 || se.Message != "access denied" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	err := c.Get(context.Background(), "/ping", nil, nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if UserMessage(err) != "network connection failed, please check the network" {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
}

func TestImageRewrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":0,"data":{"id":9007199254740993,"img":"/a.png","avatarUrl":"https://cdn/x.png","imgList":"b.png, /c.png","nested":[{"url":"d.png"}]}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithImageBase("http://img.local/"))

	var out struct {
		ID        int64  `json:"id"`
		Img       string `json:"img"`
		AvatarURL string `json:"avatarUrl"`
		ImgList   string `json:"imgList"`
		Nested    []struct {
			URL string `json:"url"`
		} `json:"nested"`
	}
	if err := c.Get(context.Background(), "/goods/1", nil, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.ID != 9007199254740993 {
		t.Fatalf("large id lost precision: %d", out.ID)
	}
	if out.Img != "http://img.local/a.png" {
		t.Fatalf("img: %q", out.Img)
	}
	if out.AvatarURL != "https://cdn/x.png" {
		t.Fatalf("absolute url changed: %q", out.AvatarURL)
	}
	if out.ImgList != "http://img.local/b.png,http://img.local/c.png" {
		t.Fatalf("imgList: %q", out.ImgList)
	}
	if len(out.Nested) != 1 || out.Nested[0].URL != "http://img.local/d.png" {
		t.Fatalf("nested: %+v", out.Nested)
	}
}

func TestValidationError(t *testing.T) {
	err := Invalid("updateGoods", "id is required")
	var ve *ValidationError
	if !errors.As(err, &ve) || err.Error() != "updateGoods: id is required" {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestWithToken_OverridesTokenSource(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"code":401,"message":"expired"}`)
	}))
	defer srv.Close()

	var hookToken string
	c := New(srv.URL, time.Second,
		WithTokenSource(TokenFunc(func() string { return "session-token" })),
		WithUnauthorizedHook(func(token string) { hookToken = token }))

	_ = c.Put(WithToken(context.Background(), "job-token"), "/read/1", nil, nil)
	if got := gotAuth.Load(); got != "Bearer job-token" {
		t.Fatalf("expected job token, got %v", got)
	}
	if hookToken != "job-token" {
		t.Fatalf("hook got %q", hookToken)
	}
}

func TestUpload_SendsMultipartFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		_, _ = io.WriteString(w, `{"code":200,"data":{"name":"`+hdr.Filename+`","url":"/up/`+string(b)+`"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, WithImageBase("http://img.local"))
	var out struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := c.Upload(context.Background(), "/file/upload/image", "file", "a.png", strings.NewReader("abc"), &out); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if out.Name != "a.png" || out.URL != "http://img.local/up/abc" {
		t.Fatalf("unexpected result: %+v", out)
	}
}
