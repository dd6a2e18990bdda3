package accounts

import (
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/promreg/promregistry/internal/domain"
)

// Mapper converts raw account properties to domain.AccountDescriptor values.
type Mapper struct{}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapAccounts validates each entry and converts it to a descriptor. A single
// invalid entry fails the whole load: descriptors are startup configuration
// and a malformed accounts file should be fixed, not partially applied.
//
// Having both a username and a usernamePasswordFile is deliberately NOT
// rejected here: that conflict is reported per account during credential
// resolution so that one misconfigured account never blocks the others.
func (m *Mapper) MapAccounts(entries []AccountProps) ([]domain.AccountDescriptor, error) {
	descriptors := make([]domain.AccountDescriptor, 0, len(entries))

	for i, props := range entries {
		if err := props.Validate(); err != nil {
			return nil, fmt.Errorf("account %d (%q): %w", i, props.Name, err)
		}

		types := make([]domain.CapabilityType, 0, len(props.SupportedTypes))
		for _, t := range props.SupportedTypes {
			types = append(types, domain.CapabilityType(t))
		}

		descriptors = append(descriptors, domain.AccountDescriptor{
			Name:                 props.Name,
			Endpoint:             props.Endpoint,
			Username:             props.Username,
			Password:             props.Password,
			UsernamePasswordFile: props.UsernamePasswordFile,
			SupportedTypes:       types,
		})
	}

	return descriptors, nil
}

// Validate checks one raw account entry.
func (p AccountProps) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Endpoint, validation.Required, validation.By(validateEndpointURL)),
		validation.Field(&p.SupportedTypes, validation.Each(validation.By(validateCapability))),
	)
}

func validateEndpointURL(value interface{}) error {
	endpoint, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

func validateCapability(value interface{}) error {
	tag, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	for _, known := range domain.KnownCapabilities {
		if domain.CapabilityType(tag) == known {
			return nil
		}
	}
	return validation.NewError("validation_unknown_capability",
		fmt.Sprintf("unknown capability %q", tag))
}
