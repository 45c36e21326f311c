package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shop"

// HTTPRequestsTotal peticiones atendidas. Labels: method, route (patrón, no la URL), status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total de peticiones HTTP atendidas.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration latencia por ruta.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AuthLoginTotal intentos de login. Label result: success|invalid_credentials|error.
var AuthLoginTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_login_total",
		Help:      "Intentos de login por resultado.",
	},
	[]string{"result"},
)

// AccessDecisionsTotal decisiones del guard. Label outcome: anonymous|allowed|unauthenticated|forbidden.
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Decisiones de control de acceso por resultado.",
	},
	[]string{"outcome"},
)

// ObserveLogin se registra como auth.LoginObserver.
func ObserveLogin(result string) {
	AuthLoginTotal.WithLabelValues(result).Inc()
}

func observeRequest(method, route string, status int, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// MetricsHandler expone el registry por defecto en formato Prometheus.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
