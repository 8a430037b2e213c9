package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Guliveer/twitch-helix-go/internal/apierr"
)

// Credentials are the application id and secret used for the
// client-credentials grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// placeholderSecrets are normalized (lowercase, alphanumerics only) values
// that appear in documentation and sample configs.
var placeholderSecrets = map[string]bool{
	"xxx":                true,
	"secret":             true,
	"clientsecret":       true,
	"yourclientsecret":   true,
	"yoursecret":         true,
	"mysecret":           true,
	"myclientsecret":     true,
	"twitchclientsecret": true,
	"changeme":           true,
	"replaceme":          true,
	"placeholder":        true,
	"todo":               true,
	"tbd":                true,
	"none":               true,
	"null":               true,
	"abc123":             true,
	"123456":             true,
	"password":           true,
	"insertsecrethere":   true,
	"yoursecrethere":     true,
}

// ValidateCredentials rejects missing and placeholder credentials before
// any network call is made.
func ValidateCredentials(c Credentials) error {
	if strings.TrimSpace(c.ClientID) == "" {
		return &apierr.ConfigurationError{Option: "clientId", Reason: "needs clientId option"}
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return &apierr.ConfigurationError{Option: "clientSecret", Reason: "needs clientSecret option"}
	}
	if LooksLikePlaceholder(c.ClientSecret) {
		return &apierr.ConfigurationError{
			Option: "clientSecret",
			Reason: fmt.Sprintf("option clientSecret is %q which looks like a placeholder value", c.ClientSecret),
		}
	}
	return nil
}

// LooksLikePlaceholder reports whether value is an example credential:
// a known sample value, a single repeated character, a template marker
// such as <secret> or ${SECRET}, or text mentioning "your ... secret",
// "example" or "placeholder".
func LooksLikePlaceholder(value string) bool {
	raw := strings.ToLower(strings.TrimSpace(value))
	norm := alnum(raw)

	if norm == "" || placeholderSecrets[norm] {
		return true
	}
	if repeatedRune(norm) {
		return true
	}
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		return true
	}
	if strings.HasPrefix(raw, "${") || strings.HasPrefix(raw, "{{") {
		return true
	}
	if strings.Contains(norm, "your") && strings.Contains(norm, "secret") {
		return true
	}
	return strings.Contains(norm, "example") || strings.Contains(norm, "placeholder")
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func repeatedRune(s string) bool {
	var first rune
	for i, r := range s {
		if i == 0 {
			first = r
			continue
		}
		if r != first {
			return false
		}
	}
	return true
}
