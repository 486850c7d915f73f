package totp_test

import (
	"bytes"
	"encoding/base32"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

func TestNewCodec(t *testing.T) {
	t.Parallel()

	_, err := totp.NewCodec("  ")
	require.ErrorIs(t, err, totp.ErrMissingIssuer)

	codec, err := totp.NewCodec("Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", codec.Issuer())
}

func TestCodec_GenerateSecret(t *testing.T) {
	t.Parallel()

	codec, err := totp.NewCodec("Acme Corp")
	require.NoError(t, err)

	t.Run("produces 160-bit base32 secret and valid URI", func(t *testing.T) {
		t.Parallel()

		secret, uri, err := codec.GenerateSecret("alice@example.com")
		require.NoError(t, err)

		raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret.Reveal())
		require.NoError(t, err)
		assert.Len(t, raw, totp.SecretSize)

		u, err := url.Parse(uri)
		require.NoError(t, err)
		assert.Equal(t, "otpauth", u.Scheme)
		assert.Equal(t, "totp", u.Host)
		assert.Contains(t, u.Path, "alice@example.com")

		q := u.Query()
		assert.Equal(t, secret.Reveal(), q.Get("secret"))
		assert.Equal(t, "Acme Corp", q.Get("issuer"))
		assert.Equal(t, "SHA1", q.Get("algorithm"))
		assert.Equal(t, "6", q.Get("digits"))
		assert.Equal(t, "30", q.Get("period"))
	})

	t.Run("secrets are unique", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{})
		for range 50 {
			secret, _, err := codec.GenerateSecret("bob")
			require.NoError(t, err)
			_, dup := seen[secret.Reveal()]
			require.False(t, dup)
			seen[secret.Reveal()] = struct{}{}
		}
	})

	t.Run("deterministic with custom reader", func(t *testing.T) {
		t.Parallel()

		seed := bytes.Repeat([]byte{0x42}, totp.SecretSize)
		c, err := totp.NewCodec("Acme", totp.WithRandReader(bytes.NewReader(seed)))
		require.NoError(t, err)

		secret, _, err := c.GenerateSecret("carol")
		require.NoError(t, err)
		assert.Equal(t, base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(seed), secret.Reveal())
	})

	t.Run("generated secret verifies", func(t *testing.T) {
		t.Parallel()

		secret, _, err := codec.GenerateSecret("dave")
		require.NoError(t, err)

		v := totp.NewVerifier()
		now := time.Now()
		code, err := v.CodeAt(secret, now)
		require.NoError(t, err)
		assert.True(t, v.Verify(secret, code, now))
	})

	t.Run("requires label", func(t *testing.T) {
		t.Parallel()

		_, _, err := codec.GenerateSecret(" ")
		require.ErrorIs(t, err, totp.ErrMissingAccountName)
	})
}

func TestCodec_QRCode(t *testing.T) {
	t.Parallel()

	codec, err := totp.NewCodec("Acme", totp.WithQRCodeSize(128))
	require.NoError(t, err)

	png, err := codec.QRCode("otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP&issuer=Acme")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	uri, err := codec.QRCodeDataURI("otpauth://totp/Acme:alice?secret=JBSWY3DPEHPK3PXP&issuer=Acme")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, err = codec.QRCode("   ")
	require.ErrorIs(t, err, totp.ErrEmptyContent)
}
