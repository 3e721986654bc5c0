package service

import (
	"VaultKeeper/internal/audit"
	"VaultKeeper/internal/crypto"
	"VaultKeeper/internal/model"
	"VaultKeeper/internal/repo"
	"VaultKeeper/internal/security"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTracker: детерминированные оракулы, вердикт задаётся картами.
type fakeTracker struct {
	mu          sync.Mutex
	breached    map[string]uint
	unsafe      map[string][]string
	passwordHit int
	urlHit      int
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{breached: map[string]uint{}, unsafe: map[string][]string{}}
}

func (f *fakeTracker) CheckPassword(_ context.Context, password string) security.BreachResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordHit++
	n := f.breached[password]
	return security.BreachResult{IsCompromised: n > 0, BreachCount: n}
}

func (f *fakeTracker) CheckURL(_ context.Context, rawURL string) security.URLResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urlHit++
	if threats, ok := f.unsafe[rawURL]; ok {
		return security.URLResult{IsSafe: false, ThreatTypes: threats}
	}
	return security.URLResult{IsSafe: true}
}

func (f *fakeTracker) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwordHit, f.urlHit
}

type auditEntry struct {
	level    audit.Level
	message  string
	ownerID  int64
	metadata map[string]any
}

// recordingSink запоминает записи аудита для проверок.
type recordingSink struct {
	mu      sync.Mutex
	records []auditEntry
}

func (s *recordingSink) Record(_ context.Context, level audit.Level, message string, ownerID int64, metadata map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, auditEntry{level: level, message: message, ownerID: ownerID, metadata: metadata})
}

func (s *recordingSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.message)
	}
	return out
}

// stepClock выдаёт строго возрастающие метки времени.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type fixture struct {
	svc     *VaultService
	history *HistoryRecorder
	reuse   *ReuseDetector
	vaults  repo.VaultRepository
	hist    repo.HistoryRepository
	cipher  *crypto.Cipher
	tracker *fakeTracker
	sink    *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	c, err := crypto.New("test-encryption-key")
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	vaults := repo.NewVaultRepository(db)
	hist := repo.NewHistoryRepository(db)
	tracker := newFakeTracker()
	sink := &recordingSink{}

	clock := &stepClock{cur: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	history := NewHistoryRecorder(hist, vaults, c)
	history.now = clock.now
	reuse := NewReuseDetector(vaults, c, logger)
	svc := NewVaultService(vaults, history, reuse, tracker, c, sink, logger)
	svc.now = clock.now

	return &fixture{
		svc: svc, history: history, reuse: reuse,
		vaults: vaults, hist: hist, cipher: c,
		tracker: tracker, sink: sink,
	}
}

func (f *fixture) create(t *testing.T, owner int64, website, username, password string) *model.VaultEntry {
	t.Helper()
	e, err := f.svc.Create(context.Background(), owner, EntryDraft{Website: website, Username: username, Password: password})
	require.NoError(t, err)
	return e
}

func strPtr(s string) *string { return &s }
