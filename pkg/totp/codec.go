package totp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	skipqrcode "github.com/skip2/go-qrcode"
)

const (
	// SecretSize is the raw secret length in bytes (160 bits, RFC 4226 recommendation).
	SecretSize = 20

	defaultQRCodeSize = 256
)

// Codec generates shared secrets and renders them for authenticator apps.
type Codec struct {
	issuer string
	rand   io.Reader
	qrSize int
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithRandReader overrides the entropy source. Intended for tests.
func WithRandReader(r io.Reader) CodecOption {
	return func(c *Codec) {
		if r != nil {
			c.rand = r
		}
	}
}

// WithQRCodeSize sets the edge length of generated QR codes in pixels.
func WithQRCodeSize(size int) CodecOption {
	return func(c *Codec) {
		if size > 0 {
			c.qrSize = size
		}
	}
}

// NewCodec creates a Codec that labels secrets with the given issuer.
func NewCodec(issuer string, opts ...CodecOption) (*Codec, error) {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return nil, ErrMissingIssuer
	}

	c := &Codec{
		issuer: issuer,
		rand:   rand.Reader,
		qrSize: defaultQRCodeSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issuer returns the issuer embedded in provisioning URIs.
func (c *Codec) Issuer() string {
	return c.issuer
}

// GenerateSecret creates a new random secret for the account label and the
// otpauth:// provisioning URI that carries it. Nothing is persisted.
func (c *Codec) GenerateSecret(label string) (Secret, string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Secret{}, "", ErrMissingAccountName
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      c.issuer,
		AccountName: label,
		Period:      Period,
		SecretSize:  SecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		Rand:        c.rand,
	})
	if err != nil {
		return Secret{}, "", errors.Join(ErrFailedToGenerateSecret, err)
	}

	secret, err := ParseSecret(key.Secret())
	if err != nil {
		return Secret{}, "", errors.Join(ErrFailedToGenerateSecret, err)
	}

	return secret, key.URL(), nil
}

// QRCode renders content as a PNG image using the codec's configured size.
func (c *Codec) QRCode(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, c.qrSize)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// QRCodeDataURI renders content as a data:image/png;base64 URI ready for an
// <img src> attribute.
func (c *Codec) QRCodeDataURI(content string) (string, error) {
	png, err := c.QRCode(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
