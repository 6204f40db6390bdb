package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ibrahimvarli/noresrp-sub001/internal/domain"
	"github.com/ibrahimvarli/noresrp-sub001/internal/repository"
)

// RequestTimer samples every handled request into performance_logs. The
// write happens after the response is flushed and its failure is logged,
// never surfaced: losing a latency sample must not fail a request.
func RequestTimer(perf repository.PerfLogRepository, nodeID string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			entry := &domain.PerformanceLog{
				NodeID:     nodeID,
				Path:       r.URL.Path,
				StatusCode: ww.Status(),
				DurationMS: time.Since(start).Milliseconds(),
			}
			if err := perf.Record(entry); err != nil {
				logger.DebugContext(r.Context(), "performance log write failed",
					"path", r.URL.Path, "error", err)
			}
		})
	}
}
