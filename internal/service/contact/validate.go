package contact

import (
	"errors"
	"regexp"
	"strings"

	"github.com/springlegal/website/backend/internal/model/contact"
)

var (
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidCaptcha = errors.New("invalid captcha answer")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrStoreFailure   = errors.New("store submission")
	ErrSessionFailure = errors.New("read session")
)

// emailPattern treats Unicode separators, \v and BOM as whitespace alongside
// RE2's ASCII \s.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// Validate checks presence, then the captcha answer, then the email shape,
// stopping at the first failure. hasSecret is false when the session holds no
// answer (never issued, expired or consumed), which fails like a wrong answer.
func Validate(in contact.Input, secret string, hasSecret bool) (contact.Submission, error) {
	if err := checkPresence(in); err != nil {
		return contact.Submission{}, err
	}

	if !hasSecret || secret == "" || !strings.EqualFold(in.TypeTheWord, secret) {
		return contact.Submission{}, ErrInvalidCaptcha
	}

	if !emailPattern.MatchString(in.Email) {
		return contact.Submission{}, ErrInvalidEmail
	}

	return contact.Submission{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Subject: in.Subject,
		Message: in.Message,
	}, nil
}

func checkPresence(in contact.Input) error {
	if in.Name == "" || in.Email == "" || in.Subject == "" || in.Message == "" {
		return ErrMissingField
	}
	return nil
}
