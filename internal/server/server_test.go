package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/s2yt/internal/shared"
	"golang.org/x/oauth2"
)

func tokenFor(code string) Exchanger {
	return func(ctx context.Context, got string) (*oauth2.Token, error) {
		if got != code {
			return nil, errors.New("unexpected code " + got)
		}
		return &oauth2.Token{AccessToken: "tok-" + code}, nil
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback", func(t *testing.T) {
		h := NewOAuthHandler(tokenFor("abc"), "state-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=abc", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Spotify connected") {
			t.Errorf("expected success page, got %q", w.Body.String())
		}

		result := <-h.Result()
		if result.Error() != nil || result.Token.AccessToken != "tok-abc" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		h := NewOAuthHandler(tokenFor("abc"), "state-1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=abc", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("denied authorization", func(t *testing.T) {
		h := NewOAuthHandler(tokenFor("abc"), "s")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(tokenFor("abc"), "s")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=wrong", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected exchange error")
		}
	})

	t.Run("only one callback is processed", func(t *testing.T) {
		h := NewOAuthHandler(tokenFor("abc"), "s")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=abc", nil))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=abc", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", w.Code)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("pong"))
		}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Body.String() != "pong" {
			t.Errorf("expected pong, got %q", w.Body.String())
		}

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handler(NewOAuthHandler(tokenFor("abc"), "s"))
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=abc", nil))

		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("expected [first second], got %v", order)
		}
	})

	t.Run("logging omits the query", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)

		handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "path=/callback") || !strings.Contains(out, "status=418") {
			t.Errorf("unexpected log line %q", out)
		}
		if strings.Contains(out, "secret") {
			t.Errorf("log leaked the query: %q", out)
		}
	})

	t.Run("recover", func(t *testing.T) {
		handler := Recover(log.New(&bytes.Buffer{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", w.Code)
		}
	})
}

func TestAwaitCallback(t *testing.T) {
	listen := func(t *testing.T) net.Listener {
		t.Helper()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		return ln
	}

	t.Run("returns the exchanged token", func(t *testing.T) {
		ln := listen(t)
		h := NewOAuthHandler(tokenFor("xyz"), "s")

		go func() {
			resp, err := http.Get("http://" + ln.Addr().String() + "/callback?state=s&code=xyz")
			if err == nil {
				resp.Body.Close()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		token, err := AwaitCallback(ctx, ln, h, nil)
		if err != nil {
			t.Fatalf("expected token, got %v", err)
		}
		if token.AccessToken != "tok-xyz" {
			t.Errorf("expected tok-xyz, got %s", token.AccessToken)
		}
	})

	t.Run("times out", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := AwaitCallback(ctx, listen(t), NewOAuthHandler(tokenFor("xyz"), "s"), nil)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("callback error", func(t *testing.T) {
		h := NewOAuthHandler(tokenFor("xyz"), "s")
		h.Send(OAuthResult{err: shared.ErrAuthFailed})

		_, err := AwaitCallback(context.Background(), listen(t), h, nil)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}
