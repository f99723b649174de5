package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-lead-desk/internal/config"
	"github.com/iliyamo/insurance-lead-desk/internal/model"
)

func TestRateLimitPassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	e.POST("/leads", func(c echo.Context) error { return c.NoContent(http.StatusCreated) },
		RateLimit(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, discard()))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
}

func TestRateKey(t *testing.T) {
	cases := []struct {
		strategy string
		withUser bool
		want     string
	}{
		{"ip", false, "rl:ip:192.0.2.1"},
		{"user", true, "rl:user:u1"},
		{"user", false, "rl:user:anon"},
		{"route", false, "rl:route:POST /api/leads"},
		{"ip_route", false, "rl:ip:192.0.2.1:route:POST /api/leads"},
		{"IP_USER", true, "rl:ip:192.0.2.1:user:u1"},
		{"other", false, "rl:ip:192.0.2.1:user:anon:route:POST /api/leads"},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.strategy, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			c := e.NewContext(req, httptest.NewRecorder())
			c.SetPath("/api/leads")
			if tc.withUser {
				c.Set(principalKey, model.Principal{ID: "u1"})
			}
			got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}, c)
			if got != tc.want {
				t.Errorf("rateKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAsInt64(t *testing.T) {
	for in, want := range map[any]int64{int64(3): 3, 4: 4, 5.0: 5, "6": 6, "x": 0} {
		if got := asInt64(in); got != want {
			t.Errorf("asInt64(%v) = %d", in, got)
		}
	}
}

func TestMetricsStatus(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
