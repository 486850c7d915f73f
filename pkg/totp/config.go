package totp

// Config holds provisioning settings shown to authenticator apps.
type Config struct {
	Issuer     string `env:"TOTP_ISSUER" envDefault:"TwoFactor"` // Service name displayed in authenticator apps
	QRCodeSize int    `env:"TOTP_QR_SIZE" envDefault:"256"`      // Edge length of the provisioning QR code in pixels
}

// NewCodecFromConfig creates a Codec from the provided Config.
func NewCodecFromConfig(cfg Config, opts ...CodecOption) (*Codec, error) {
	configOpts := make([]CodecOption, 0, len(opts)+1)
	if cfg.QRCodeSize > 0 {
		configOpts = append(configOpts, WithQRCodeSize(cfg.QRCodeSize))
	}
	configOpts = append(configOpts, opts...)
	return NewCodec(cfg.Issuer, configOpts...)
}
