package totp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// RFC 6238 appendix B seed "12345678901234567890" in Base32.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestVerifier_CodeAt(t *testing.T) {
	t.Parallel()

	v := totp.NewVerifier()
	secret := totp.MustParseSecret(rfcSecret)

	tests := []struct {
		unix int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}

	for _, tt := range tests {
		code, err := v.CodeAt(secret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.code, code, "time %d", tt.unix)
	}
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	v := totp.NewVerifier()
	secret := totp.MustParseSecret("JBSWY3DPEHPK3PXP")
	now := time.Date(2026, 10, 16, 12, 0, 15, 0, time.UTC)
	step := time.Duration(totp.Period) * time.Second

	code, err := v.CodeAt(secret, now)
	require.NoError(t, err)

	t.Run("accepts code for current step", func(t *testing.T) {
		t.Parallel()
		assert.True(t, v.Verify(secret, code, now))
	})

	t.Run("accepts code within window", func(t *testing.T) {
		t.Parallel()
		for i := -totp.Window; i <= totp.Window; i++ {
			at := now.Add(time.Duration(i) * step)
			assert.True(t, v.Verify(secret, code, at), "offset %d", i)
		}
	})

	t.Run("rejects code outside window", func(t *testing.T) {
		t.Parallel()
		assert.False(t, v.Verify(secret, code, now.Add(time.Duration(totp.Window+1)*step)))
		assert.False(t, v.Verify(secret, code, now.Add(-time.Duration(totp.Window+1)*step)))
		assert.False(t, v.Verify(secret, code, now.Add(10*time.Minute)))
	})

	t.Run("accepts grouped and fullwidth input", func(t *testing.T) {
		t.Parallel()
		assert.True(t, v.Verify(secret, code[:3]+" "+code[3:], now))
		fullwidth := ""
		for _, r := range code {
			fullwidth += string(r - '0' + '０')
		}
		assert.True(t, v.Verify(secret, fullwidth, now))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		t.Parallel()
		other := totp.MustParseSecret(rfcSecret)
		otherCode, err := v.CodeAt(other, now)
		require.NoError(t, err)
		if otherCode != code {
			assert.False(t, v.Verify(secret, otherCode, now))
		}
	})

	t.Run("rejects zero secret", func(t *testing.T) {
		t.Parallel()
		assert.False(t, v.Verify(totp.Secret{}, code, now))
	})
}

func TestVerifier_MalformedInput(t *testing.T) {
	t.Parallel()

	v := totp.NewVerifier()
	secret := totp.MustParseSecret("JBSWY3DPEHPK3PXP")
	now := time.Now()

	inputs := []string{
		"",
		"12345",
		"1234567",
		"12a456",
		"abcdef",
		"١٢٣٤٥٦",
		"12345\x00",
		"-123456",
		string(make([]byte, 4096)),
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			assert.False(t, v.Verify(secret, in, now), "input %q", in)
		})
	}
}

func TestVerifier_Match(t *testing.T) {
	t.Parallel()

	v := totp.NewVerifier()
	secret := totp.MustParseSecret("JBSWY3DPEHPK3PXP")
	now := time.Unix(1_800_000_000, 0)

	prev := now.Add(-time.Duration(totp.Period) * time.Second)
	code, err := v.CodeAt(secret, prev)
	require.NoError(t, err)

	step, ok := v.Match(secret, code, now)
	require.True(t, ok)
	assert.Equal(t, totp.Step(prev), step)
	assert.Equal(t, totp.Step(now)-1, step)
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	code, ok := totp.NormalizeCode(" 123 456 ")
	assert.True(t, ok)
	assert.Equal(t, "123456", code)

	_, ok = totp.NormalizeCode("12345")
	assert.False(t, ok)
}
