package bootstrap

import (
	"errors"
	"fmt"

	"github.com/promreg/promregistry/internal/credentials"
	"github.com/promreg/promregistry/internal/domain"
	"github.com/promreg/promregistry/internal/logger"
	"github.com/promreg/promregistry/internal/registry"
)

// ErrClientCreation means the remote client factory rejected an account's
// (endpoint, credential) pair. Contained to that account, like any other
// bootstrap failure.
var ErrClientCreation = errors.New("remote client creation failed")

// ClientFactory produces a remote client bound to an endpoint and credential.
// Used only for accounts with the METRICS_STORE capability.
type ClientFactory func(endpoint string, cred domain.Credential) (domain.RemoteClient, error)

// AccountError pairs a failed account's name with the error that sank it.
type AccountError struct {
	Name string
	Err  error
}

// Orchestrator populates the account registry from a list of descriptors.
type Orchestrator struct {
	registry *registry.Registry
	factory  ClientFactory
	logger   logger.Logger
}

// New creates an orchestrator writing into the given registry.
func New(reg *registry.Registry, factory ClientFactory, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		registry: reg,
		factory:  factory,
		logger:   log,
	}
}

// Bootstrap processes every descriptor independently, in the order given,
// and returns the number of accounts registered plus the per-account errors
// for those that failed. One malformed account never prevents the rest from
// becoming usable, and zero registered accounts is a legal outcome.
func (o *Orchestrator) Bootstrap(descriptors []domain.AccountDescriptor) (int, []AccountError) {
	registered := 0
	var failures []AccountError

	for _, desc := range descriptors {
		o.logger.Info("registering account",
			logger.String("account", desc.Name),
			logger.Any("supported_types", desc.SupportedTypes))

		record, err := o.buildRecord(desc)
		if err != nil {
			o.logger.Error("failed to register account",
				logger.String("account", desc.Name),
				logger.Error(err))
			failures = append(failures, AccountError{Name: desc.Name, Err: err})
			continue
		}

		if replaced := o.registry.Register(record); replaced {
			// Last write wins on duplicate names. Upstream does not flag
			// this as an error, so it stays observable but non-fatal.
			o.logger.Warn("duplicate account name, later definition wins",
				logger.String("account", desc.Name))
		}
		registered++
	}

	o.logger.Infof("populated account registry with %d accounts (%d failed)",
		o.registry.Count(), len(failures))

	return registered, failures
}

func (o *Orchestrator) buildRecord(desc domain.AccountDescriptor) (*domain.AccountRecord, error) {
	cred, err := credentials.Resolve(desc)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials: %w", err)
	}

	record := &domain.AccountRecord{
		Name:           desc.Name,
		Endpoint:       desc.Endpoint,
		Credential:     cred,
		SupportedTypes: desc.SupportedTypes,
	}

	if desc.HasCapability(domain.CapabilityMetricsStore) {
		client, err := o.factory(desc.Endpoint, cred)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w: %v", desc.Name, ErrClientCreation, err)
		}
		record.Client = client
	}

	return record, nil
}
