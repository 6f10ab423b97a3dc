package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newCORSServer() *echo.Echo {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		PathPrefix:   "/api",
		AllowOrigins: []string{"https://desk.example"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType},
		MaxAge:       10 * time.Minute,
	}))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/api/limits", ok)
	e.GET("/health", ok)
	return e
}

func TestCORS(t *testing.T) {
	cases := []struct {
		name       string
		method     string
		path       string
		origin     string
		preflight  bool
		code       int
		wantOrigin string
		wantMaxAge string
	}{
		{"allowed simple", http.MethodGet, "/api/limits", "https://desk.example", false, 200, "https://desk.example", ""},
		{"allowed preflight", http.MethodOptions, "/api/limits", "https://desk.example", true, 204, "https://desk.example", "600"},
		{"other origin passes without headers", http.MethodGet, "/api/limits", "https://evil.example", false, 200, "", ""},
		{"other origin preflight", http.MethodOptions, "/api/limits", "https://evil.example", true, 403, "", ""},
		{"outside prefix", http.MethodGet, "/health", "https://desk.example", false, 200, "", ""},
		{"no origin", http.MethodGet, "/api/limits", "", false, 200, "", ""},
	}
	e := newCORSServer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.origin != "" {
				req.Header.Set(echo.HeaderOrigin, tc.origin)
			}
			if tc.preflight {
				req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.code {
				t.Fatalf("code = %d, want %d", rec.Code, tc.code)
			}
			if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != tc.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tc.wantOrigin)
			}
			if got := rec.Header().Get(echo.HeaderAccessControlMaxAge); got != tc.wantMaxAge {
				t.Errorf("max age = %q, want %q", got, tc.wantMaxAge)
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowOrigins: []string{"*"}}))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(echo.HeaderOrigin, "https://any.example")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("allow origin = %q", got)
	}
}
