package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Database
	// ============================================
	DBConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "travel_db_connection_status",
		Help: "Database connection status (1=healthy, 0=unhealthy)",
	})

	// ============================================
	// NATS
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "travel_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_nats_messages_published_total",
			Help: "Total number of NATS messages published",
		},
		[]string{"subject", "status"},
	)

	// ============================================
	// Chain RPC
	// ============================================
	BalanceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_balance_fetch_total",
			Help: "Native balance lookups per chain and result",
		},
		[]string{"chain", "status"},
	)

	BalanceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_balance_fetch_duration_seconds",
			Help:    "Native balance lookup duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain"},
	)

	// ============================================
	// Bookkeeping API
	// ============================================
	TravelAPIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_api_requests_total",
			Help: "Requests to the bookkeeping backend",
		},
		[]string{"operation", "status"},
	)

	// ============================================
	// Mint
	// ============================================
	MintAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_mint_attempts_total",
			Help: "Mint attempts by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	MintAttemptsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "travel_mint_attempts_in_flight",
		Help: "Mint attempts that have not settled",
	})

	SignaturePollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_signature_poll_attempts",
		Help:    "Lookups needed before a relay signature became available",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
	})

	SignaturePollTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travel_signature_poll_timeouts_total",
		Help: "Relay signature waits that hit the timeout",
	})

	MintConfirmationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_mint_confirmation_duration_seconds",
		Help:    "Time from submission to receipt",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	// ============================================
	// Sessions / push
	// ============================================
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "travel_active_sessions",
		Help: "Wallet sessions with a connected wallet",
	})

	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "travel_websocket_connections",
		Help: "Open notification websocket connections",
	})

	// ============================================
	// HTTP
	// ============================================
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
