package contextutils

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValidEmail checks if an email address is valid using go-playground/validator
func IsValidEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

// SanitizeFilename makes an uploaded filename safe to store on disk: any
// leading directory component from the client is discarded and each
// whitespace character becomes an underscore.
func SanitizeFilename(name string) string {
	// Clients may send full paths; keep only the final element.
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}
