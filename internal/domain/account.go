package domain

import "context"

// CapabilityType tags what a monitoring account can be used for.
type CapabilityType string

const (
	// CapabilityMetricsStore marks accounts that can serve metric queries.
	// Only accounts with this capability get a remote client and are
	// eligible for health checking.
	CapabilityMetricsStore CapabilityType = "METRICS_STORE"

	// CapabilityObjectStore marks accounts backing object storage.
	CapabilityObjectStore CapabilityType = "OBJECT_STORE"

	// CapabilityConfigurationStore marks accounts backing configuration storage.
	CapabilityConfigurationStore CapabilityType = "CONFIGURATION_STORE"

	// CapabilityRemoteJudge marks accounts backing a remote judgement service.
	CapabilityRemoteJudge CapabilityType = "REMOTE_JUDGE"
)

// KnownCapabilities lists every capability tag the accounts file may carry.
var KnownCapabilities = []CapabilityType{
	CapabilityMetricsStore,
	CapabilityObjectStore,
	CapabilityConfigurationStore,
	CapabilityRemoteJudge,
}

// AccountDescriptor is the validated input configuration for one monitoring
// account, as loaded from the accounts file. Immutable once loaded.
type AccountDescriptor struct {
	// Name is the unique, user-facing identifier of the account.
	Name string

	// Endpoint is the base URL of the Prometheus-compatible backend.
	Endpoint string

	// Username and Password hold inline credentials. Password may be empty.
	Username string
	Password string

	// UsernamePasswordFile points to a file holding a single "user:password"
	// line. Mutually exclusive with an inline Username.
	UsernamePasswordFile string

	// SupportedTypes lists the capabilities this account provides.
	SupportedTypes []CapabilityType
}

// HasCapability reports whether the descriptor carries the given tag.
func (d AccountDescriptor) HasCapability(c CapabilityType) bool {
	for _, t := range d.SupportedTypes {
		if t == c {
			return true
		}
	}
	return false
}

// RemoteClient is the surface of a client bound to one account's endpoint
// and credential. Only METRICS_STORE accounts get one.
type RemoteClient interface {
	// Healthy issues a lightweight liveness probe against the backend.
	Healthy(ctx context.Context) error

	// MetricNames lists the metric names the backend currently knows about.
	MetricNames(ctx context.Context) ([]string, error)
}

// AccountRecord is the registered, runtime form of an account. It is owned
// by the account registry after registration and never mutated in place.
type AccountRecord struct {
	Name           string
	Endpoint       string
	Credential     Credential
	SupportedTypes []CapabilityType

	// Client is nil for accounts without the METRICS_STORE capability.
	Client RemoteClient
}

// Eligible reports whether the record can be health checked.
func (r *AccountRecord) Eligible() bool {
	return r.Client != nil
}

// HasCapability reports whether the record carries the given tag.
func (r *AccountRecord) HasCapability(c CapabilityType) bool {
	for _, t := range r.SupportedTypes {
		if t == c {
			return true
		}
	}
	return false
}
