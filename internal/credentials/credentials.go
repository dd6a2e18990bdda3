package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/promreg/promregistry/internal/domain"
)

var (
	// ErrAmbiguous means an account configured both an inline username and a
	// credential file. Exactly one source must be chosen.
	ErrAmbiguous = errors.New("both inline username and usernamePasswordFile are set")

	// ErrFileUnreadable means a credential file was configured but could not
	// be read at resolution time.
	ErrFileUnreadable = errors.New("credential file unreadable")
)

// Resolve derives a usable credential from one account descriptor.
//
// The file, when configured, is read eagerly so that an unreadable file
// surfaces during bootstrap rather than on the first probe. The expected
// file content is a single "user:password" line.
func Resolve(desc domain.AccountDescriptor) (domain.Credential, error) {
	inline := desc.Username != ""
	fromFile := desc.UsernamePasswordFile != ""

	switch {
	case inline && fromFile:
		return domain.Credential{}, fmt.Errorf("account %q: %w", desc.Name, ErrAmbiguous)

	case fromFile:
		return readFile(desc.Name, desc.UsernamePasswordFile)

	case inline:
		// An empty password is valid and means "no authentication required
		// beyond the username".
		return domain.Credential{Username: desc.Username, Password: desc.Password}, nil

	default:
		// Unauthenticated backend.
		return domain.Credential{}, nil
	}
}

func readFile(account, path string) (domain.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("account %q: %w: %v", account, ErrFileUnreadable, err)
	}

	line := strings.TrimSpace(string(data))
	user, pass, found := strings.Cut(line, ":")
	if !found || user == "" {
		return domain.Credential{}, fmt.Errorf("account %q: %w: expected a user:password line in %s",
			account, ErrFileUnreadable, path)
	}

	return domain.Credential{Username: user, Password: pass}, nil
}
