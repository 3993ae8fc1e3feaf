package phone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"5551234567":      "+15551234567",
		"+1 555 123 4567": "+15551234567",
		"(555) 123-4567":  "+15551234567",
		"1-555-123-4567":  "+15551234567",
		"44 20 7946 0958": "+442079460958",
		"123":             "",
		"":                "",
		"   ":             "",
		"abc":             "",
	}
	for in, want := range cases {
		require.Equal(t, want, Normalize(in), "input %q", in)
	}

	// "+" номера не валидируются, только чистятся от пробелов
	require.Equal(t, "+44207946", Normalize("  +44\t20 7946  "))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"5551234567", "+1 555 123 4567", "123", "", "+", "+ 1", "555.123.4567 x89",
		"001 44 20 7946 0958", "+44 (0) 20", "phone: 555 123 4567",
	}
	for _, in := range inputs {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), "input %q", in)
	}
}
