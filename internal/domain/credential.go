package domain

import "time"

// Credential is the resolved secret material for one account. An account
// with neither a username nor a password is unauthenticated, which is valid:
// not every backend requires auth.
type Credential struct {
	Username string
	Password string
}

// Empty reports whether the credential carries no secret material at all.
func (c Credential) Empty() bool {
	return c.Username == "" && c.Password == ""
}

// HealthVerdict is the most recent health state observed for one account.
// Overwritten in place on every health cycle; no history is kept.
type HealthVerdict struct {
	// Healthy is true when the last probe succeeded.
	Healthy bool `json:"healthy"`

	// CheckedAt is the UTC time the verdict was produced.
	CheckedAt time.Time `json:"checked_at"`

	// Error holds the failure detail of the last probe, empty when healthy.
	Error string `json:"error,omitempty"`
}
