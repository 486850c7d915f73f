package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/useragent"
)

type empty struct{}

type setupRequest struct {
	Label string `json:"label"`
}

type setupResponse struct {
	Secret          string    `json:"secret"`
	ProvisioningURI string    `json:"provisioning_uri"`
	QRCode          string    `json:"qr_code"`
	BackupCodes     []string  `json:"backup_codes"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func (a *API) beginSetup(r *http.Request, req setupRequest) Response {
	setup, err := a.svc.BeginSetup(r.Context(), userIDFrom(r.Context()), req.Label)
	if err != nil {
		return Error(err)
	}
	defer setup.Secret.Zero()

	return JSON(setupResponse{
		Secret:          setup.Secret.Reveal(),
		ProvisioningURI: setup.ProvisioningURI,
		QRCode:          setup.QRCode,
		BackupCodes:     setup.BackupCodes,
		ExpiresAt:       setup.ExpiresAt,
	}, WithStatus(http.StatusCreated))
}

type confirmRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

type enabledResponse struct {
	Enabled bool `json:"enabled"`
}

func (a *API) confirmSetup(r *http.Request, req confirmRequest) Response {
	if strings.TrimSpace(req.Secret) == "" {
		return Error(twofactor.ErrMissingSecret)
	}
	secret, err := totp.ParseSecret(req.Secret)
	if err != nil {
		return Error(err)
	}
	defer secret.Zero()

	ok, err := a.svc.ConfirmSetup(r.Context(), userIDFrom(r.Context()), secret, req.Code)
	if err != nil {
		return Error(err)
	}
	if !ok {
		return Error(ErrRejectedCode)
	}
	return JSON(enabledResponse{Enabled: true})
}

type challengeRequest struct {
	Method      twofactor.Method `json:"method"`
	Code        string           `json:"code"`
	TrustDevice bool             `json:"trust_device"`
}

type challengeResponse struct {
	Method               twofactor.Method `json:"method"`
	SessionToken         string           `json:"session_token,omitempty"`
	SessionExpiresAt     *time.Time       `json:"session_expires_at,omitempty"`
	RemainingBackupCodes *int             `json:"remaining_backup_codes,omitempty"`
}

func (a *API) challenge(r *http.Request, req challengeRequest) Response {
	var ch twofactor.Challenge
	switch req.Method {
	case twofactor.MethodTOTP, "":
		ch = twofactor.TOTP(req.Code)
	case twofactor.MethodBackupCode:
		ch = twofactor.BackupCode(req.Code)
	default:
		return Error(fmt.Errorf("%w: unknown method %q", ErrBadRequest, req.Method))
	}

	res, err := a.svc.Challenge(r.Context(), userIDFrom(r.Context()), ch, req.TrustDevice)
	if err != nil {
		return Error(err)
	}
	if !res.Success {
		return Error(ErrInvalidCode)
	}

	body := challengeResponse{
		Method:           res.Method,
		SessionToken:     res.SessionToken,
		SessionExpiresAt: res.SessionExpiresAt,
	}
	if res.Method == twofactor.MethodBackupCode {
		remaining := res.RemainingBackupCodes
		body.RemainingBackupCodes = &remaining
	}

	var opts []JSONOption
	if res.SessionToken != "" {
		opts = append(opts, WithHeader(a.transport.Name(), res.SessionToken))
		if res.SessionExpiresAt != nil {
			opts = append(opts, WithHeader(a.transport.Name()+"-Expires", res.SessionExpiresAt.UTC().Format(time.RFC3339)))
		}
	}
	return JSON(body, opts...)
}

type disableResponse struct {
	Disabled       bool `json:"disabled"`
	CascadePending bool `json:"cascade_pending"`
}

func (a *API) disable(r *http.Request, _ empty) Response {
	err := a.svc.Disable(r.Context(), userIDFrom(r.Context()))
	switch {
	case errors.Is(err, twofactor.ErrCascadeIncomplete):
		a.log.WarnContext(r.Context(), "disable cascade deferred to janitor")
		return JSON(disableResponse{Disabled: true, CascadePending: true})
	case err != nil:
		return Error(err)
	}
	return JSON(disableResponse{Disabled: true})
}

type backupCodesRequest struct {
	Count int `json:"count"`
}

type backupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

func (a *API) regenerateBackupCodes(r *http.Request, req backupCodesRequest) Response {
	codes, err := a.svc.RegenerateBackupCodes(r.Context(), userIDFrom(r.Context()), req.Count)
	if err != nil {
		return Error(err)
	}
	return JSON(backupCodesResponse{BackupCodes: codes}, WithStatus(http.StatusCreated))
}

type sessionView struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	UserAgent string    `json:"user_agent,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionsResponse struct {
	Sessions []sessionView `json:"sessions"`
}

func (a *API) listSessions(r *http.Request, _ empty) Response {
	sessions, err := a.svc.ListSessions(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		return Error(err)
	}

	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView{
			ID:        s.ID,
			Device:    useragent.Label(s.UserAgent),
			UserAgent: s.UserAgent,
			IP:        s.IP,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		})
	}
	return JSON(sessionsResponse{Sessions: views})
}

type revokedResponse struct {
	Revoked int `json:"revoked"`
}

func (a *API) revokeSessions(r *http.Request, _ empty) Response {
	n, err := a.svc.RevokeAllSessions(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		return Error(err)
	}
	return JSON(revokedResponse{Revoked: n})
}

type verifySessionRequest struct {
	Token string `json:"token"`
}

// Session verification outcomes. A token that matches no record is absent;
// a matched record past its expiry is expired; a live record that no longer
// counts, because the user turned 2FA off, is revoked.
const (
	sessionValid   = "valid"
	sessionExpired = "expired"
	sessionRevoked = "revoked"
	sessionAbsent  = "absent"
)

type verifySessionResponse struct {
	Valid     bool       `json:"valid"`
	Status    string     `json:"status"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (a *API) verifySession(r *http.Request, req verifySessionRequest) Response {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token, _ = a.transport.GetToken(r)
	}
	if token == "" {
		return Error(fmt.Errorf("%w: missing session token", ErrBadRequest))
	}

	v, err := a.svc.VerifySession(r.Context(), token)
	if err != nil {
		return Error(err)
	}
	if v == nil {
		return JSON(verifySessionResponse{Status: sessionAbsent})
	}

	userID, expiresAt := v.UserID, v.ExpiresAt
	resp := verifySessionResponse{
		Valid:     v.Valid,
		Status:    sessionValid,
		UserID:    &userID,
		ExpiresAt: &expiresAt,
	}
	switch {
	case v.Valid:
	case !time.Now().Before(expiresAt):
		resp.Status = sessionExpired
	default:
		resp.Status = sessionRevoked
	}
	return JSON(resp)
}

type statusResponse struct {
	Status               string     `json:"status"`
	Enabled              bool       `json:"enabled"`
	SetupAt              *time.Time `json:"setup_at,omitempty"`
	PendingSince         *time.Time `json:"pending_since,omitempty"`
	RemainingBackupCodes int        `json:"remaining_backup_codes"`
	CascadePending       bool       `json:"cascade_pending"`
}

func (a *API) status(r *http.Request, _ empty) Response {
	info, err := a.svc.Status(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		return Error(err)
	}
	return JSON(statusResponse{
		Status:               string(info.Status),
		Enabled:              info.Enabled,
		SetupAt:              info.SetupAt,
		PendingSince:         info.PendingSince,
		RemainingBackupCodes: info.RemainingBackupCodes,
		CascadePending:       info.CascadePending,
	})
}
