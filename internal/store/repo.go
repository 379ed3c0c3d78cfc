package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // created >= From
	To     time.Time // created <= To
}

// Session actions.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// Wallet transaction kinds.
const (
	KindCoins = "coins"
	KindXP    = "xp"
)

// SessionEventData captures a session lifecycle event.
type SessionEventData struct {
	SessionID    string
	GameID       string
	Action       string // ActionStart or ActionEnd
	CorrectCount int
	Total        int
	Passed       bool
	Reward       int
	XP           int
	DurationMs   int64
}

// ResponseEventData captures one judged response.
type ResponseEventData struct {
	SessionID   string
	GameID      string
	ChallengeID string
	Variant     string
	Selection   string // JSON encoding of the learner's selection
	Satisfied   bool
	RewardDelta int
}

// RewardEventData is a wallet transaction.
type RewardEventData struct {
	SessionID string
	GameID    string
	Kind      string // KindCoins or KindXP
	Amount    int
	Reason    string
}

// BadgeEventData captures an awarded badge.
type BadgeEventData struct {
	SessionID string
	GameID    string
	BadgeType string
	Rarity    string
	Reason    string
}

// UnlockEventData records that passing SourceGameID unlocked GameID.
type UnlockEventData struct {
	GameID       string
	SourceGameID string
	SessionID    string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// SessionSummaryRecord is a completed session as shown in history.
type SessionSummaryRecord struct {
	SessionID    string
	GameID       string
	CorrectCount int
	Total        int
	Passed       bool
	Reward       int
	XP           int
	DurationMs   int64
	Sequence     int64
	Timestamp    time.Time
}

// BadgeEventRecord is a stored badge.
type BadgeEventRecord struct {
	SessionID string
	GameID    string
	BadgeType string
	Rarity    string
	Reason    string
	Sequence  int64
	Timestamp time.Time
}

// LLMRequestEventRecord is a stored LLM request.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	Sequence  int64
	Timestamp time.Time
}

// WalletTotals sums all wallet transactions.
type WalletTotals struct {
	Coins int
	XP    int
}

// LLMUsage aggregates LLM requests for one purpose.
type LLMUsage struct {
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendResponseEvent(ctx context.Context, data ResponseEventData) error
	AppendRewardEvent(ctx context.Context, data RewardEventData) error
	AppendBadgeEvent(ctx context.Context, data BadgeEventData) error
	AppendUnlockEvent(ctx context.Context, data UnlockEventData) error
	// WithTx runs fn against a repo whose appends commit together, or not
	// at all when fn returns an error.
	WithTx(ctx context.Context, fn func(EventRepo) error) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessionSummaries returns ended sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)
	// QueryBadgeEvents returns badges, newest first.
	QueryBadgeEvents(ctx context.Context, opts QueryOpts) ([]BadgeEventRecord, error)
	// QueryLLMRequests returns LLM request events, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	WalletTotals(ctx context.Context) (WalletTotals, error)
	// BadgeCounts returns badge counts keyed by rarity and the total.
	BadgeCounts(ctx context.Context) (map[string]int, int, error)
	// UnlockedGames returns the ids of every unlocked game.
	UnlockedGames(ctx context.Context) ([]string, error)
	// PassedGames returns the ids of games with at least one passed session.
	PassedGames(ctx context.Context) ([]string, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
