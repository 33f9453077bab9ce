package engine

// Observer is the thin metrics sink the Engine writes to. It carries no
// process-global state, so callers can wire in whatever implementation
// fits — a Prometheus-backed one in production, a no-op one in tests.
type Observer interface {
	CacheHit()
	CacheMiss()
	PostingsDecodeError()
	BooleanFallbackTriggered()
	QueryLatency(queryType string, seconds float64)
}
