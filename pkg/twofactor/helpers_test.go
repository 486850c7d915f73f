package twofactor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// knownSecret is the secret used by authenticator app examples.
const knownSecret = "JBSWY3DPEHPK3PXP"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	coord    *twofactor.Coordinator
	users    *twofactor.MemoryUserStore
	codes    *backupcode.Manager
	sessions *trustedsession.Manager
	clock    *clock
}

// newFixture wires a coordinator over in-memory stores. sessions, when
// non-nil, replaces the real trusted session manager.
func newFixture(t *testing.T, sessions twofactor.TrustedSessions, opts ...twofactor.Option) *fixture {
	t.Helper()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	sealer, err := secrets.NewSealer(key)
	require.NoError(t, err)

	c := &clock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	f := &fixture{
		users: twofactor.NewMemoryUserStore(),
		codes: backupcode.NewManager(backupcode.NewMemoryStore(),
			backupcode.WithHasher(backupcode.KeyedHasher{Sealer: sealer}),
			backupcode.WithClock(c.Now),
		),
		sessions: trustedsession.New(trustedsession.WithClock(c.Now)),
		clock:    c,
	}

	var ts twofactor.TrustedSessions = f.sessions
	if sessions != nil {
		ts = sessions
	}

	f.coord, err = twofactor.New(f.users, sealer, f.codes, ts,
		append([]twofactor.Option{twofactor.WithClock(c.Now)}, opts...)...)
	require.NoError(t, err)
	return f
}

func codeAt(t *testing.T, secret totp.Secret, at time.Time) string {
	t.Helper()

	code, err := totp.NewVerifier().CodeAt(secret, at)
	require.NoError(t, err)
	return code
}
