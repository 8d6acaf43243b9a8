// Package identity validates the name and email captured before a play.
package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/spotcheck/internal/domain/model"
)

// Sentinel kinds for identity errors. All of them wrap ErrInvalidIdentity.
var (
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrMissingName     = fmt.Errorf("%w: name is required", ErrInvalidIdentity)
	ErrMissingEmail    = fmt.Errorf("%w: email is required", ErrInvalidIdentity)
	ErrInvalidEmail    = fmt.Errorf("%w: email is malformed", ErrInvalidIdentity)
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate trims name and email and checks both.
func Validate(name, email string) (model.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	switch {
	case name == "":
		return model.Identity{}, ErrMissingName
	case email == "":
		return model.Identity{}, ErrMissingEmail
	case !emailPattern.MatchString(email):
		return model.Identity{}, ErrInvalidEmail
	}
	return model.Identity{Name: name, Email: email}, nil
}
