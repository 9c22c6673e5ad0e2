package credential

import (
	"errors"
	"regexp"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
)

// MinLength is the shortest password we accept.
const MinLength = 6

// SpecialChars is the exact set counted as "special" by both the signup form and the API.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	numberRe    = regexp.MustCompile(`[0-9]`)
	specialRe   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// Rule errors, in the order the API reports them.
var (
	ErrTooShort     = errors.New("Password must be at least 6 characters long")
	ErrNoUppercase  = errors.New("Password must contain at least one uppercase letter")
	ErrNoLowercase  = errors.New("Password must contain at least one lowercase letter")
	ErrNoNumber     = errors.New("Password must contain at least one number")
	ErrNoSpecial    = errors.New("Password must contain at least one special character")
	ErrRequirements = errors.New("Password does not meet requirements")
)

// Report is the per-rule breakdown used for live form feedback.
type Report struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Special   bool `json:"special"`
}

// Check evaluates every rule against the whole password. No rule is skipped
// because an earlier one failed.
func Check(password string) Report {
	return Report{
		Length:    codeUnits(password) >= MinLength,
		Uppercase: uppercaseRe.MatchString(password),
		Lowercase: lowercaseRe.MatchString(password),
		Number:    numberRe.MatchString(password),
		Special:   specialRe.MatchString(password),
	}
}

// codeUnits counts UTF-16 code units, which is how browsers measure string length.
func codeUnits(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Valid reports whether all five rules passed.
func (r Report) Valid() bool {
	return r.Length && r.Uppercase && r.Lowercase && r.Number && r.Special
}

// Err returns the first failing rule's error, or nil.
func (r Report) Err() error {
	switch {
	case !r.Length:
		return ErrTooShort
	case !r.Uppercase:
		return ErrNoUppercase
	case !r.Lowercase:
		return ErrNoLowercase
	case !r.Number:
		return ErrNoNumber
	case !r.Special:
		return ErrNoSpecial
	}
	return nil
}

// Validate is Check followed by Err.
func Validate(password string) error {
	return Check(password).Err()
}

// Tag is the struct-tag name registered by RegisterValidation.
const Tag = "strongpassword"

// RegisterValidation installs the "strongpassword" tag on a validator so
// request binding applies the same five rules.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(Tag, func(fl validator.FieldLevel) bool {
		return Check(fl.Field().String()).Valid()
	})
}
