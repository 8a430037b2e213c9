package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/twitch-helix-go/internal/apierr"
)

func TestValidateCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		creds  Credentials
		option string
		reason string
	}{
		{"missing id", Credentials{ClientSecret: "s3cr3t-value-9f8e"}, "clientId", "needs clientId option"},
		{"missing secret", Credentials{ClientID: "abc"}, "clientSecret", "needs clientSecret option"},
		{"blank secret", Credentials{ClientID: "abc", ClientSecret: "   "}, "clientSecret", "needs clientSecret option"},
		{
			"placeholder secret",
			Credentials{ClientID: "abc", ClientSecret: "xxx"},
			"clientSecret",
			`option clientSecret is "xxx" which looks like a placeholder value`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateCredentials(tt.creds)
			var cfgErr *apierr.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.option, cfgErr.Option)
			assert.Equal(t, tt.reason, cfgErr.Reason)
		})
	}

	assert.NoError(t, ValidateCredentials(Credentials{ClientID: "abc", ClientSecret: "k2v9q0x7m3n1p8r4"}))
}

func TestLooksLikePlaceholder(t *testing.T) {
	t.Parallel()

	placeholders := []string{
		"xxx", "XXXXXXXX", "00000", "your-client-secret", "YOUR_SECRET_HERE",
		"<client secret>", "${TWITCH_CLIENT_SECRET}", "{{ secret }}", "example-secret",
		"my_placeholder", "changeme", "Client_Secret", "  ",
	}
	for _, v := range placeholders {
		assert.True(t, LooksLikePlaceholder(v), v)
	}

	real := []string{"k2v9q0x7m3n1p8r4", "gp762nuuoqcoxypju8c569th9wz7q5", "a1"}
	for _, v := range real {
		assert.False(t, LooksLikePlaceholder(v), v)
	}
}
