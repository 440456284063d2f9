package clientdata

import "time"

// TTL constants, added to now when storing to compute expires_at.
const (
	TTLExchangeRate = time.Hour // Live rates are considered fresh for an hour

	// Stale rates stay usable as a last-known fallback for this long after expiry
	StaleRateRetention = 7 * 24 * time.Hour
)
