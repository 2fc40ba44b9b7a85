// Package metrics define las métricas Prometheus del servicio. Vive en un
// paquete propio para que services, middlewares y jobs lo importen sin ciclos.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de canje de code (label "result").
const (
	ExchangeOK              = "ok"
	ExchangeInvalidRequest  = "invalid_request"
	ExchangeInvalidGrant    = "invalid_grant"
	ExchangeExpired         = "expired_grant"
	ExchangeClientMismatch  = "client_mismatch"
	ExchangeInvalidVerifier = "invalid_verifier"
	ExchangeAccessDenied    = "access_denied"
	ExchangeError           = "error"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	CodesIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_codes_issued_total",
		Help: "Authorization codes emitidos por aplicación",
	}, []string{"client_id"})

	TokenExchangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_token_exchanges_total",
		Help: "Canjes de authorization code por resultado",
	}, []string{"result"})

	CORSRejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_cors_rejects_total",
		Help: "Requests rechazadas por origin no permitido",
	}, []string{"origin"})

	CodesSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oauth_codes_swept_total",
		Help: "Authorization codes vencidos eliminados por el sweeper",
	})
)

// Register registra las métricas en reg (o el default si es nil) y devuelve
// el handler de /metrics. pool es opcional.
func Register(reg prometheus.Registerer, pool *pgxpool.Pool) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HTTPRequestsTotal, HTTPRequestDuration,
		CodesIssuedTotal, TokenExchangesTotal, CORSRejectsTotal, CodesSweptTotal,
	} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	if pool != nil {
		if err := registerCollector(reg, newPoolCollector(pool)); err != nil {
			return nil, err
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{}), nil
	}
	return promhttp.Handler(), nil
}

// registerCollector registra el collector, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

func RecordRequest(method, path string, status int, d time.Duration) {
	p := NormalizePath(path)
	HTTPRequestsTotal.WithLabelValues(method, p, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, p).Observe(d.Seconds())
}

func RecordCodeIssued(clientID string) { CodesIssuedTotal.WithLabelValues(clientID).Inc() }

func RecordExchange(result string) { TokenExchangesTotal.WithLabelValues(result).Inc() }

func RecordCORSReject(origin string) { CORSRejectsTotal.WithLabelValues(origin).Inc() }

func RecordSwept(n int) {
	if n > 0 {
		CodesSweptTotal.Add(float64(n))
	}
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath colapsa segmentos dinámicos para acotar la cardinalidad.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
