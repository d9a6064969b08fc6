package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/alexivanou/crwd-api/internal/metrics"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Hijack lets websocket upgrades pass through the recorder
func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	if !w.wrote {
		w.status = http.StatusSwitchingProtocols
		w.wrote = true
	}
	return h.Hijack()
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// Observe records request metrics and logs every request
func Observe(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			route := routeTemplate(r)
			dur := time.Since(start)
			metrics.ObserveHTTP(route, r.Method, sw.Status(), dur)
			logger.Info("http_request",
				zap.String("route", route),
				zap.String("method", r.Method),
				zap.Int("status", sw.Status()),
				zap.Duration("duration", dur),
			)
		})
	}
}
