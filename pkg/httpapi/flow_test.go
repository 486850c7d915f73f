package httpapi_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
	"github.com/dmitrymomot/twofactor/pkg/httpapi"
	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func newCoordinator(t *testing.T) *twofactor.Coordinator {
	t.Helper()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	sealer, err := secrets.NewSealer(key)
	require.NoError(t, err)

	coord, err := twofactor.New(
		twofactor.NewMemoryUserStore(),
		sealer,
		backupcode.NewManager(backupcode.NewMemoryStore(),
			backupcode.WithHasher(backupcode.KeyedHasher{Sealer: sealer})),
		trustedsession.New(),
	)
	require.NoError(t, err)
	return coord
}

func TestAPI_EnrollAndTrustDevice(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	h := httpapi.New(newCoordinator(t), testCfg).Handler()

	rec, env := do(t, h, http.MethodPost, "/2fa/setup", "", asUser(userID))
	require.Equal(t, http.StatusCreated, rec.Code)

	var setup struct {
		Secret      string   `json:"secret"`
		BackupCodes []string `json:"backup_codes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &setup))
	require.NotEmpty(t, setup.BackupCodes)

	code, err := totp.NewVerifier().CodeAt(totp.MustParseSecret(setup.Secret), time.Now())
	require.NoError(t, err)

	rec, _ = do(t, h, http.MethodPost, "/2fa/setup/confirm",
		`{"secret":"`+setup.Secret+`","code":"`+code+`"}`, asUser(userID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/2fa/setup/confirm",
		`{"secret":"`+setup.Secret+`","code":"`+code+`"}`, asUser(userID))
	assert.Equal(t, http.StatusConflict, rec.Code, "second confirmation must not re-enable")

	rec, env = do(t, h, http.MethodPost, "/2fa/challenge",
		`{"method":"backup_code","code":"`+setup.BackupCodes[0]+`","trust_device":true}`, asUser(userID))
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-Trusted-Session")
	require.NotEmpty(t, token)

	var challenge struct {
		Remaining int `json:"remaining_backup_codes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &challenge))
	assert.Equal(t, len(setup.BackupCodes)-1, challenge.Remaining)

	rec, env = do(t, h, http.MethodPost, "/2fa/challenge",
		`{"method":"backup_code","code":"`+setup.BackupCodes[0]+`"}`, asUser(userID))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "backup codes are single use")
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_code", env.Error.Code)

	rec, env = do(t, h, http.MethodPost, "/2fa/sessions/verify", "",
		map[string]string{"X-Trusted-Session": token})
	require.Equal(t, http.StatusOK, rec.Code)
	var verified struct {
		Valid  bool      `json:"valid"`
		UserID uuid.UUID `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.True(t, verified.Valid)
	assert.Equal(t, userID, verified.UserID)

	rec, env = do(t, h, http.MethodGet, "/2fa/status", "", asUser(userID))
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Status  string `json:"status"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "enabled", status.Status)
	assert.True(t, status.Enabled)

	rec, _ = do(t, h, http.MethodPost, "/2fa/disable", "", asUser(userID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/2fa/sessions/verify", `{"token":"`+token+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":false,"status":"absent"}`, string(env.Data))
}
