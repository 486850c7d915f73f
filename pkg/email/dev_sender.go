package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxStemLen = 100

// DevSender stores messages on disk instead of delivering them. Each message
// becomes <stamp>_<tag>.html with the body and <stamp>_<tag>.json with the
// envelope, so local runs can inspect what users would receive.
type DevSender struct {
	dir string
	now func() time.Time
}

// NewDevSender creates a DevSender. The directory is created on first send.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

type devEnvelope struct {
	SentAt  time.Time `json:"sent_at"`
	SendTo  string    `json:"send_to"`
	Subject string    `json:"subject"`
	Tag     string    `json:"tag,omitempty"`
	Text    string    `json:"body_text,omitempty"`
}

func (d *DevSender) SendEmail(_ context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	now := d.now()
	envelope, err := json.MarshalIndent(devEnvelope{
		SentAt:  now.UTC(),
		SendTo:  params.SendTo,
		Subject: params.Subject,
		Tag:     params.Tag,
		Text:    params.BodyText,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode envelope: %v", ErrFailedToSendEmail, err)
	}

	label := params.Tag
	if label == "" {
		label = params.Subject
	}
	stem := now.UTC().Format("20060102T150405.000000") + "_" + fileStem(label)

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrFailedToSendEmail, d.dir, err)
	}
	for ext, content := range map[string][]byte{
		".html": []byte(params.BodyHTML),
		".json": envelope,
	} {
		path := filepath.Join(d.dir, stem+ext)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrFailedToSendEmail, path, err)
		}
	}
	return nil
}

// fileStem keeps letters, digits, dots, dashes and underscores. Spaces become
// underscores and everything else is dropped.
func fileStem(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			return r
		}
		return -1
	}, s)
	if len(s) > maxStemLen {
		s = s[:maxStemLen]
	}
	if s == "" {
		return "email"
	}
	return strings.ToLower(s)
}
