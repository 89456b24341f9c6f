package journalretention

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/rtfeed/internal/adapters/sqlite"
	"github.com/bft-labs/rtfeed/internal/domain"
	"github.com/bft-labs/rtfeed/internal/testutil"
	"github.com/bft-labs/rtfeed/pkg/realtime"
)

type stubPruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (s *stubPruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	return 1, s.err
}

func (s *stubPruner) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cutoffs)
}

func TestPlugin_PrunesOnStartAndInterval(t *testing.T) {
	pruner := &stubPruner{}
	p := New(pruner, Config{MaxAge: time.Hour, CheckInterval: 10 * time.Millisecond, RunImmediately: true})
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Initialize(context.Background(), realtime.PluginConfig{Logger: testutil.NewRecordingLogger()}))
	require.Eventually(t, func() bool { return pruner.calls() >= 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Shutdown(context.Background()))

	calls := pruner.calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, pruner.calls(), "no pruning after shutdown")

	pruner.mu.Lock()
	assert.Equal(t, fixed.Add(-time.Hour), pruner.cutoffs[0])
	pruner.mu.Unlock()
	assert.GreaterOrEqual(t, p.Pruned(), int64(3))
}

func TestPlugin_PruneErrorLogged(t *testing.T) {
	logger := testutil.NewRecordingLogger()
	pruner := &stubPruner{err: errors.New("database is locked")}
	p := New(pruner, Config{CheckInterval: time.Hour, RunImmediately: true})

	require.NoError(t, p.Initialize(context.Background(), realtime.PluginConfig{Logger: logger}))
	require.Eventually(t, func() bool { return pruner.calls() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Shutdown(context.Background()))

	assert.True(t, logger.Has("error", "journal prune failed"))
	assert.Zero(t, p.Pruned())
}

func TestPlugin_DisabledWithoutJournal(t *testing.T) {
	logger := testutil.NewRecordingLogger()
	p := New(nil, DefaultConfig())

	require.NoError(t, p.Initialize(context.Background(), realtime.PluginConfig{Logger: logger}))
	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, logger.Has("warn", "journal retention disabled: no journal configured"))
}

func TestPlugin_SQLiteJournal(t *testing.T) {
	ctx := context.Background()
	j, err := sqlite.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	msg, err := domain.DecodeMessage([]byte(`{"event":"INSERT"}`))
	require.NoError(t, err)
	_, err = j.Append(ctx, msg, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	_, err = j.Append(ctx, msg, time.Now())
	require.NoError(t, err)

	p := New(j, Config{MaxAge: 24 * time.Hour, CheckInterval: time.Hour, RunImmediately: true})
	require.NoError(t, p.Initialize(ctx, realtime.PluginConfig{Logger: testutil.NewRecordingLogger()}))
	require.Eventually(t, func() bool { return p.Pruned() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Shutdown(ctx))

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
