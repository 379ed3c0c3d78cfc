package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// nextSeq draws one sequence number in its own transaction.
func nextSeq(t *testing.T, s *Store) int64 {
	t.Helper()
	var n int64
	err := s.seq.inTx(context.Background(), func(tx *sql.Tx) error {
		var err error
		n, err = s.seq.next(context.Background(), tx)
		return err
	})
	require.NoError(t, err)
	return n
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	if err == nil || !strings.Contains(err.Error(), "unsupported database driver") {
		t.Fatalf("err = %v, want unsupported driver", err)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by TestFileDatabase.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "kidquest.db")
	require.NoError(t, EnsureDir(path))

	s, err := Open(DriverSQLite, path)
	require.NoError(t, err)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	ctx := context.Background()
	require.NoError(t, s.EventRepo().AppendRewardEvent(ctx, RewardEventData{SessionID: "s1", GameID: "g", Kind: KindCoins, Amount: 4}))
	require.NoError(t, s.Close())

	// Reopening migrates idempotently and keeps data and the sequence.
	s, err = Open(DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()

	totals, err := s.EventRepo().WalletTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, totals.Coins)

	assert.Equal(t, int64(2), nextSeq(t, s))
}

func TestSequenceMonotonic(t *testing.T) {
	s := openTestStore(t)

	var prev int64
	for i := 0; i < 5; i++ {
		n := nextSeq(t, s)
		if n <= prev {
			t.Fatalf("sequence went from %d to %d", prev, n)
		}
		prev = n
	}
	if prev != 5 {
		t.Errorf("last sequence = %d, want 5", prev)
	}
}

func TestSessionSummaries(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", GameID: "finance-kids-12", Action: ActionStart}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
		SessionID: "s1", GameID: "finance-kids-12", Action: ActionEnd,
		CorrectCount: 3, Total: 5, Passed: true, Reward: 3, XP: 10, DurationMs: 42000,
	}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{
		SessionID: "s2", GameID: "moral-kids-4", Action: ActionEnd,
		CorrectCount: 1, Total: 3,
	}))

	got, err := repo.QuerySessionSummaries(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "s2", got[0].SessionID)
	assert.False(t, got[0].Passed)
	assert.Equal(t, "s1", got[1].SessionID)
	assert.True(t, got[1].Passed)
	assert.Equal(t, 3, got[1].CorrectCount)
	assert.Equal(t, int64(42000), got[1].DurationMs)
	assert.WithinDuration(t, time.Now(), got[1].Timestamp, time.Minute)
	assert.Greater(t, got[0].Sequence, got[1].Sequence)

	limited, err := repo.QuerySessionSummaries(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "s2", limited[0].SessionID)

	before, err := repo.QuerySessionSummaries(ctx, QueryOpts{Before: got[0].Sequence})
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, "s1", before[0].SessionID)

	passed, err := repo.PassedGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"finance-kids-12"}, passed)
}

func TestWalletAndBadges(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	totals, err := repo.WalletTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, WalletTotals{}, totals)

	for _, ev := range []RewardEventData{
		{SessionID: "s1", GameID: "a", Kind: KindCoins, Amount: 3},
		{SessionID: "s1", GameID: "a", Kind: KindXP, Amount: 10},
		{SessionID: "s2", GameID: "b", Kind: KindCoins, Amount: 5},
	} {
		require.NoError(t, repo.AppendRewardEvent(ctx, ev))
	}
	totals, err = repo.WalletTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, WalletTotals{Coins: 8, XP: 10}, totals)

	require.NoError(t, repo.AppendBadgeEvent(ctx, BadgeEventData{SessionID: "s1", GameID: "a", BadgeType: "session", Rarity: "epic", Reason: "80% accuracy"}))
	require.NoError(t, repo.AppendBadgeEvent(ctx, BadgeEventData{SessionID: "s2", GameID: "b", BadgeType: "streak", Rarity: "common", Reason: "5 in a row"}))
	require.NoError(t, repo.AppendBadgeEvent(ctx, BadgeEventData{SessionID: "s2", GameID: "b", BadgeType: "session", Rarity: "epic", Reason: "75% accuracy"}))

	byRarity, total, err := repo.BadgeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, map[string]int{"epic": 2, "common": 1}, byRarity)

	badges, err := repo.QueryBadgeEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, "75% accuracy", badges[0].Reason)
}

func TestUnlocks(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	ids, err := repo.UnlockedGames(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.AppendUnlockEvent(ctx, UnlockEventData{GameID: "finance-kids-13", SourceGameID: "finance-kids-12", SessionID: "s1"}))
	require.NoError(t, repo.AppendUnlockEvent(ctx, UnlockEventData{GameID: "finance-kids-13", SourceGameID: "finance-kids-12", SessionID: "s2"}))
	require.NoError(t, repo.AppendUnlockEvent(ctx, UnlockEventData{GameID: "moral-kids-5", SourceGameID: "moral-kids-4", SessionID: "s3"}))

	ids, err = repo.UnlockedGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"finance-kids-13", "moral-kids-5"}, ids)
}

func TestResponseEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendResponseEvent(ctx, ResponseEventData{
		SessionID: "s1", GameID: "a", ChallengeID: "q1", Variant: "single",
		Selection: `{"option_id":"b"}`, Satisfied: true, RewardDelta: 1,
	}))

	var (
		n         int
		satisfied bool
	)
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*), MAX(satisfied) FROM response_events").Scan(&n, &satisfied))
	assert.Equal(t, 1, n)
	assert.True(t, satisfied)
}

func TestLLMRequests(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "m", Purpose: "game-generation", InputTokens: 100, OutputTokens: 50, LatencyMs: 900, Success: true},
		{Provider: "anthropic", Model: "m", Purpose: "game-generation", InputTokens: 80, Success: false, ErrorMessage: "rate limited"},
		{Provider: "openai", Model: "g", Purpose: "other", InputTokens: 10, OutputTokens: 5, Success: true},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	recs, err := repo.QueryLLMRequests(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "openai", recs[0].Provider)
	assert.Equal(t, "rate limited", recs[1].ErrorMessage)
	assert.Equal(t, "", recs[2].ErrorMessage)

	usage, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, LLMUsage{Purpose: "game-generation", Requests: 2, Failures: 1, InputTokens: 180, OutputTokens: 50}, usage[0])
	assert.Equal(t, LLMUsage{Purpose: "other", Requests: 1, InputTokens: 10, OutputTokens: 5}, usage[1])
}

func TestWithSQLitePragmas(t *testing.T) {
	got := withSQLitePragmas("file:x?mode=memory")
	if !strings.HasPrefix(got, "file:x?mode=memory&_pragma=") {
		t.Errorf("withSQLitePragmas = %q", got)
	}
	got = withSQLitePragmas("/tmp/k.db")
	if !strings.HasPrefix(got, "/tmp/k.db?_pragma=journal_mode(WAL)") {
		t.Errorf("withSQLitePragmas = %q", got)
	}
}

func TestWithTxCommitsTogether(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	err := repo.WithTx(ctx, func(tx EventRepo) error {
		if err := tx.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", GameID: "g1", Action: ActionEnd, Total: 2, CorrectCount: 2, Passed: true, Reward: 3}); err != nil {
			return err
		}
		if err := tx.AppendRewardEvent(ctx, RewardEventData{SessionID: "s1", GameID: "g1", Kind: KindCoins, Amount: 3}); err != nil {
			return err
		}
		return tx.AppendUnlockEvent(ctx, UnlockEventData{GameID: "g2", SourceGameID: "g1", SessionID: "s1"})
	})
	require.NoError(t, err)

	totals, err := repo.WalletTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.Coins)
	unlocked, err := repo.UnlockedGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2"}, unlocked)
	assert.Equal(t, int64(4), nextSeq(t, s))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()
	boom := errors.New("disk full")

	err := repo.WithTx(ctx, func(tx EventRepo) error {
		if err := tx.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", GameID: "g1", Action: ActionEnd, Total: 1, CorrectCount: 1, Passed: true, Reward: 3}); err != nil {
			return err
		}
		if err := tx.AppendUnlockEvent(ctx, UnlockEventData{GameID: "g2", SourceGameID: "g1", SessionID: "s1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	sessions, err := repo.QuerySessionSummaries(ctx, QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	unlocked, err := repo.UnlockedGames(ctx)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, int64(1), nextSeq(t, s), "rolled back appends must not consume sequence numbers")
}
