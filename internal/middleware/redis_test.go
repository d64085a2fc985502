package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapid-reservation/rapid-api/internal/config"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour, // no refill during the test
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}

	e := echo.New()
	h := NewTokenBucket(cfg, rdb)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/table", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketDisabledIsPassThrough(t *testing.T) {
	e := echo.New()
	h := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/table", nil), rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRedisCacheServesSecondReadFromCache(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}

	e := echo.New()
	calls := 0
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"table_id": 1, "table_available": true})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/table/1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/table/:table_id")
		require.NoError(t, h(c))
		return rec
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls, "second read must not reach the handler")
}

func TestFlushCacheDropsStaleEntry(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}

	e := echo.New()
	available := true
	calls := 0
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"table_id": 1, "table_available": available})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/table/1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/table/:table_id")
		require.NoError(t, h(c))
		return rec
	}

	// Prime the cache with an available table, then reserve it. After
	// the flush the next read must come from the handler and carry the
	// new availability, never the pre-mutation entry.
	first := do()
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Contains(t, first.Body.String(), `"table_available":true`)

	available = false
	require.NoError(t, FlushCache(context.Background(), rdb, cfg.Prefix))

	fresh := do()
	assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
	assert.Contains(t, fresh.Body.String(), `"table_available":false`)
	assert.Equal(t, 2, calls)
}

func TestRedisCacheKeysPerTable(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}

	e := echo.New()
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"table_id": c.Param("table_id")})
	})

	do := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/table/:table_id")
		c.SetParamNames("table_id")
		c.SetParamValues(target[len("/table/"):])
		require.NoError(t, h(c))
		return rec
	}

	do("/table/1")
	do("/table/2")

	// Both tables are cached now; each hit must replay its own body.
	one := do("/table/1")
	two := do("/table/2")
	assert.Equal(t, "HIT", one.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", two.Header().Get("X-Cache"))
	assert.Contains(t, one.Body.String(), `"table_id":"1"`)
	assert.Contains(t, two.Body.String(), `"table_id":"2"`)
}

func TestRedisCacheSkipsOversizedBodies(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 8,
	}

	e := echo.New()
	calls := 0
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"table_id": 1, "table_available": true})
	})

	// A body over the cap must be served in full and never stored; a
	// stored truncation would replay as corrupt JSON on the next read.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/table/1", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Contains(t, rec.Body.String(), `"table_available":true`)
	}
	assert.Equal(t, 2, calls)
}

func TestRedisCacheSkipsUncachedMethods(t *testing.T) {
	rdb := testRedis(t)
	cfg := config.CacheConfig{
		Enabled: true,
		Methods: map[string]bool{"GET": true},
		TTL:     time.Minute,
		Prefix:  "cache",
	}

	e := echo.New()
	calls := 0
	h := NewRedisCache(cfg, rdb)(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/table/set/1", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(req, rec)))
	}
	assert.Equal(t, 2, calls)
}
