package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/kngrck/mern-project/internal/config"
)

// cachedResponse is the value stored in Redis for one cached GET: the
// status line is always 200 (only successful responses are cached), so it
// is enough to keep the content type and body.
type cachedResponse struct {
    ContentType string `json:"ct"`
    Body        []byte `json:"b"`
}

// captureWriter tees the response body into a buffer while forwarding it
// to the client, so a miss can populate the cache after the handler ran.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int64
    size   int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 || cw.size < cw.limit {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// cacheKey hashes the route template and the bound path parameters, so
// /api/places/:pid and /api/places/user/:uid each get one entry per id.
func cacheKey(prefix string, c echo.Context) string {
    tail := c.Path()
    for _, name := range c.ParamNames() {
        tail += ":" + name + "=" + c.Param(name)
    }
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", prefix, sum[:])
}

// NewRedisCache returns an Echo middleware caching successful GET
// responses in Redis for the configured TTL.  It is applied per-route to
// the public place reads; mutations go through different routes so
// staleness is bounded by the TTL alone.  A nil client or a disabled
// config yields a pass-through middleware.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg.Prefix, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var cr cachedResponse
                if json.Unmarshal(bs, &cr) == nil {
                    c.Response().Header().Set(echo.HeaderContentType, cr.ContentType)
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(http.StatusOK)
                    _, _ = c.Response().Write(cr.Body)
                    return nil
                }
                // Unreadable entry: drop it and fall through to the handler.
                _ = rdb.Del(ctx, key).Err()
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            body := cw.buf.Bytes()
            if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
                cr := cachedResponse{
                    ContentType: c.Response().Header().Get(echo.HeaderContentType),
                    Body:        body,
                }
                if payload, err := json.Marshal(cr); err == nil {
                    _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
                }
            }
            return nil
        }
    }
}
