package accounts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/promreg/promregistry/internal/domain"
)

// Loader handles loading and parsing of the accounts YAML file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for the given accounts file.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the accounts file and returns the validated
// descriptors in file order. Order matters downstream: on duplicate names
// the later descriptor wins.
func (l *Loader) Load() ([]domain.AccountDescriptor, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var file accountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts yaml: %w", err)
	}

	return NewMapper().MapAccounts(file.Accounts)
}
