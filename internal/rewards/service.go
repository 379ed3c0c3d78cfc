package rewards

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/store"
)

const tracerName = "github.com/abhisek/kidquest/internal/rewards"

// Result is what the shell hands over once a session completes.
type Result struct {
	GameID    string
	Title     string
	SessionID string
	Next      string // game unlocked by a pass, if any
	Session   engine.Session
	Duration  time.Duration
}

// Award is the reward earned by one completed session.
type Award struct {
	Passed   bool
	Coins    int
	XP       int
	Badges   []Badge
	Unlocked string // id of the game unlocked, empty if none
	Streak   int    // longest run of satisfied challenges
}

// Wallet is the learner's accumulated progress.
type Wallet struct {
	Coins      int
	XP         int
	Badges     map[Rarity]int
	BadgeTotal int
	Unlocked   []string
	Passed     []string
}

// HasUnlocked reports whether id was unlocked by passing another game.
func (w Wallet) HasUnlocked(id string) bool {
	return slices.Contains(w.Unlocked, id)
}

// HasPassed reports whether id has been passed at least once.
func (w Wallet) HasPassed(id string) bool {
	return slices.Contains(w.Passed, id)
}

// Playable reports whether a game may be started. Entry games are always
// open; other games open once unlocked or passed.
func (w Wallet) Playable(id string, entry bool) bool {
	return entry || w.HasUnlocked(id) || w.HasPassed(id)
}

// Service turns completed sessions into wallet transactions, badges and
// unlocks, and persists them as events.
type Service struct {
	repo   store.EventRepo
	logger hclog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a Service. A nil repo computes awards without
// persisting them.
func NewService(repo store.EventRepo, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		repo:   repo,
		logger: logger.Named("rewards"),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

// Evaluate computes the award for a completed session without persisting.
func (s *Service) Evaluate(res Result) (Award, error) {
	outcome, err := engine.ComputeOutcome(res.Session)
	if err != nil {
		return Award{}, err
	}

	award := Award{
		Passed: outcome.Passed,
		Coins:  outcome.TotalReward,
		XP:     outcome.XP,
		Streak: LongestStreak(res.Session.Responses()),
	}
	now := s.now()

	if outcome.Passed {
		name := res.Title
		if name == "" {
			name = res.GameID
		}
		award.Badges = append(award.Badges, Badge{
			Type:      BadgeSession,
			Rarity:    AccuracyRarity(outcome.Accuracy()),
			GameID:    res.GameID,
			SessionID: res.SessionID,
			Reason:    fmt.Sprintf("%s cleared (%.0f%% accuracy)", name, outcome.Accuracy()*100),
			AwardedAt: now,
		})
		award.Unlocked = res.Next
	}
	if award.Streak >= MinStreak {
		award.Badges = append(award.Badges, Badge{
			Type:      BadgeStreak,
			Rarity:    StreakRarity(award.Streak),
			GameID:    res.GameID,
			SessionID: res.SessionID,
			Reason:    fmt.Sprintf("%d correct in a row!", award.Streak),
			AwardedAt: now,
		})
	}
	return award, nil
}

// Started records the start of a session.
func (s *Service) Started(ctx context.Context, gameID, sessionID string) error {
	if s.repo == nil {
		return nil
	}
	err := s.repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: sessionID,
		GameID:    gameID,
		Action:    store.ActionStart,
	})
	if err != nil {
		s.logger.Warn("record session start failed", "game", gameID, "session", sessionID, "error", err)
	}
	return err
}

// Record evaluates a completed session and persists the session summary,
// every response, the wallet transactions, badges and unlock. The award is
// returned even when persistence fails so the shell can still show it; a
// persistence failure is returned, never retried.
func (s *Service) Record(ctx context.Context, res Result) (*Award, error) {
	ctx, span := s.tracer.Start(ctx, "rewards.Record", trace.WithAttributes(
		attribute.String("game.id", res.GameID),
		attribute.String("session.id", res.SessionID),
	))
	defer span.End()

	award, err := s.Evaluate(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluate")
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("session.passed", award.Passed),
		attribute.Int("reward.coins", award.Coins),
		attribute.Int("reward.xp", award.XP),
	)

	if err := s.persist(ctx, res, award); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist")
		s.logger.Error("record session failed", "game", res.GameID, "session", res.SessionID, "error", err)
		return &award, err
	}

	s.logger.Debug("session recorded",
		"game", res.GameID, "session", res.SessionID,
		"passed", award.Passed, "coins", award.Coins, "xp", award.XP, "badges", len(award.Badges))
	return &award, nil
}

// persist writes everything Record produces in one transaction, so a
// failure leaves neither the session summary nor the unlock behind.
func (s *Service) persist(ctx context.Context, res Result, award Award) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.WithTx(ctx, func(repo store.EventRepo) error {
		return writeAward(ctx, repo, res, award)
	})
}

func writeAward(ctx context.Context, repo store.EventRepo, res Result, award Award) error {
	outcome, _ := engine.ComputeOutcome(res.Session)
	err := repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:    res.SessionID,
		GameID:       res.GameID,
		Action:       store.ActionEnd,
		CorrectCount: outcome.CorrectCount,
		Total:        outcome.Total,
		Passed:       outcome.Passed,
		Reward:       award.Coins,
		XP:           award.XP,
		DurationMs:   res.Duration.Milliseconds(),
	})
	if err != nil {
		return err
	}

	challenges := res.Session.Challenges()
	for i, r := range res.Session.Responses() {
		sel, err := encodeSelection(r.Selection)
		if err != nil {
			return fmt.Errorf("encode selection for %q: %w", r.ChallengeID, err)
		}
		err = repo.AppendResponseEvent(ctx, store.ResponseEventData{
			SessionID:   res.SessionID,
			GameID:      res.GameID,
			ChallengeID: r.ChallengeID,
			Variant:     string(challenges[i].Variant),
			Selection:   sel,
			Satisfied:   r.Satisfied,
			RewardDelta: r.RewardDelta,
		})
		if err != nil {
			return err
		}
	}

	if award.Coins > 0 {
		err := repo.AppendRewardEvent(ctx, store.RewardEventData{
			SessionID: res.SessionID,
			GameID:    res.GameID,
			Kind:      store.KindCoins,
			Amount:    award.Coins,
			Reason:    "game reward",
		})
		if err != nil {
			return err
		}
	}
	if award.XP > 0 {
		err := repo.AppendRewardEvent(ctx, store.RewardEventData{
			SessionID: res.SessionID,
			GameID:    res.GameID,
			Kind:      store.KindXP,
			Amount:    award.XP,
			Reason:    "game completed",
		})
		if err != nil {
			return err
		}
	}
	for _, b := range award.Badges {
		err := repo.AppendBadgeEvent(ctx, store.BadgeEventData{
			SessionID: b.SessionID,
			GameID:    b.GameID,
			BadgeType: string(b.Type),
			Rarity:    string(b.Rarity),
			Reason:    b.Reason,
		})
		if err != nil {
			return err
		}
	}
	if award.Unlocked != "" {
		return repo.AppendUnlockEvent(ctx, store.UnlockEventData{
			GameID:       award.Unlocked,
			SourceGameID: res.GameID,
			SessionID:    res.SessionID,
		})
	}
	return nil
}

// Wallet reads the learner's accumulated progress.
func (s *Service) Wallet(ctx context.Context) (Wallet, error) {
	w := Wallet{Badges: make(map[Rarity]int)}
	if s.repo == nil {
		return w, nil
	}

	totals, err := s.repo.WalletTotals(ctx)
	if err != nil {
		return w, err
	}
	w.Coins, w.XP = totals.Coins, totals.XP

	counts, total, err := s.repo.BadgeCounts(ctx)
	if err != nil {
		return w, err
	}
	for rarity, n := range counts {
		w.Badges[Rarity(rarity)] = n
	}
	w.BadgeTotal = total

	if w.Unlocked, err = s.repo.UnlockedGames(ctx); err != nil {
		return w, err
	}
	if w.Passed, err = s.repo.PassedGames(ctx); err != nil {
		return w, err
	}
	return w, nil
}

// LongestStreak returns the longest run of consecutive satisfied responses.
func LongestStreak(responses []engine.Response) int {
	best, run := 0, 0
	for _, r := range responses {
		if r.Satisfied {
			run++
			best = max(best, run)
		} else {
			run = 0
		}
	}
	return best
}

type selectionJSON struct {
	OptionID  string            `json:"option_id,omitempty"`
	OptionIDs []string          `json:"option_ids,omitempty"`
	Text      string            `json:"text,omitempty"`
	Pairs     map[string]string `json:"pairs,omitempty"`
}

func encodeSelection(sel engine.Selection) (string, error) {
	b, err := json.Marshal(selectionJSON{
		OptionID:  sel.OptionID,
		OptionIDs: sel.OptionIDs,
		Text:      sel.Text,
		Pairs:     sel.Pairs,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
