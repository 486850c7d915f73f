package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/sanitizer"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Directory resolves the address security notices are sent to.
type Directory interface {
	EmailFor(ctx context.Context, userID uuid.UUID) (string, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, userID uuid.UUID) (string, error)

func (f DirectoryFunc) EmailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	return f(ctx, userID)
}

// Notifier turns two-factor notifications into emails.
type Notifier struct {
	sender      EmailSender
	directory   Directory
	productName string
}

var _ twofactor.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier. productName appears in subjects and bodies.
func NewNotifier(sender EmailSender, directory Directory, productName string) *Notifier {
	if productName == "" {
		productName = "Your account"
	}
	return &Notifier{sender: sender, directory: directory, productName: productName}
}

type message struct {
	subject string
	lead    string
	advice  string
}

var messages = map[twofactor.EventKind]message{
	twofactor.EventEnabled: {
		subject: "Two-factor authentication enabled",
		lead:    "Two-factor authentication was turned on for your account.",
		advice:  "Keep your backup codes somewhere safe. Each one works once.",
	},
	twofactor.EventDisabled: {
		subject: "Two-factor authentication disabled",
		lead:    "Two-factor authentication was turned off and all remembered devices were signed out.",
		advice:  "If you did not do this, change your password and turn it back on.",
	},
	twofactor.EventBackupCodeUsed: {
		subject: "A backup code was used",
		lead:    "One of your backup codes was just used to sign in.",
		advice:  "If this was not you, regenerate your backup codes now.",
	},
	twofactor.EventBackupCodesRegenerated: {
		subject: "New backup codes generated",
		lead:    "A new set of backup codes was generated. The previous codes no longer work.",
		advice:  "If you did not request this, review your account security.",
	},
	twofactor.EventSessionsRevoked: {
		subject: "Remembered devices signed out",
		lead:    "Every device that skipped two-factor prompts was signed out.",
		advice:  "You will be asked for a code on your next sign-in.",
	},
}

var bodyTemplate = template.Must(template.New("notice").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<h2>{{.Subject}}</h2>
<p>{{.Lead}}</p>
{{if .ShowRemaining}}<p>Backup codes left: <strong>{{.Remaining}}</strong></p>{{end}}
<p>{{.Advice}}</p>
<p style="color:#888">{{.Product}} &middot; {{.At}}</p>
</body></html>`))

type bodyData struct {
	Subject       string
	Lead          string
	Advice        string
	Product       string
	At            string
	Remaining     int
	ShowRemaining bool
}

// Notify renders and sends the notice for n. Unknown kinds are ignored.
func (s *Notifier) Notify(ctx context.Context, n twofactor.Notification) error {
	msg, ok := messages[n.Kind]
	if !ok {
		return nil
	}

	to, err := s.directory.EmailFor(ctx, n.UserID)
	if err != nil {
		return errors.Join(ErrRecipientNotFound, err)
	}
	to = sanitizer.NormalizeEmail(to)

	data := bodyData{
		Subject:       fmt.Sprintf("%s: %s", s.productName, msg.subject),
		Lead:          msg.lead,
		Advice:        msg.advice,
		Product:       s.productName,
		At:            n.At.UTC().Format(time.RFC1123),
		Remaining:     n.RemainingBackupCodes,
		ShowRemaining: n.Kind == twofactor.EventBackupCodeUsed || n.Kind == twofactor.EventBackupCodesRegenerated,
	}

	var html bytes.Buffer
	if err := bodyTemplate.Execute(&html, data); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	text := data.Lead + "\n\n"
	if data.ShowRemaining {
		text += fmt.Sprintf("Backup codes left: %d\n\n", data.Remaining)
	}
	text += data.Advice + "\n"

	err = s.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  data.Subject,
		BodyHTML: html.String(),
		BodyText: text,
		Tag:      string(n.Kind),
	})
	if err != nil {
		// The address is masked because this error ends up in service logs.
		return fmt.Errorf("%w (to %s)", err, sanitizer.MaskEmail(to))
	}
	return nil
}
