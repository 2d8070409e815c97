package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	processingTTL = 10 * time.Second
	responseTTL   = 24 * time.Hour
)

// Idempotency deduplicates state-changing requests carrying an
// Idempotency-Key header. The first request takes a short-lived redis
// lock, runs, and stores its response; replays with the same key get
// the stored response back without re-executing the handler.
func Idempotency(redisClient *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := fmt.Sprintf("idempotency:%s:%s", r.URL.Path, key)
			ctx := r.Context()

			val, err := redisClient.Get(ctx, idemKey).Result()
			if err == nil {
				if val == "PROCESSING" {
					w.WriteHeader(http.StatusConflict)
					w.Write([]byte(`{"error": "concurrent request"}`))
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				w.Write([]byte(val))
				return
			} else if err != redis.Nil {
				// redis down: better to process twice than never
				next.ServeHTTP(w, r)
				return
			}

			// Short TTL on the lock so a crash mid-request does not wedge the key.
			acquired, err := redisClient.SetNX(ctx, idemKey, "PROCESSING", processingTTL).Result()
			if err != nil || !acquired {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "concurrent request"}`))
				return
			}

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				redisClient.Set(ctx, idemKey, rec.body.String(), responseTTL)
			} else {
				// failed requests may be retried with the same key
				redisClient.Del(ctx, idemKey)
			}
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
