package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendRewardEvent(ctx context.Context, data RewardEventData) error {
	err := r.insert(ctx, RewardEventsTable.Name,
		[]string{"session_id", "game_id", "kind", "amount", "reason"},
		[]any{data.SessionID, data.GameID, data.Kind, data.Amount, data.Reason},
	)
	if err != nil {
		return fmt.Errorf("save reward event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendBadgeEvent(ctx context.Context, data BadgeEventData) error {
	err := r.insert(ctx, BadgeEventsTable.Name,
		[]string{"session_id", "game_id", "badge_type", "rarity", "reason"},
		[]any{data.SessionID, data.GameID, data.BadgeType, data.Rarity, data.Reason},
	)
	if err != nil {
		return fmt.Errorf("save badge event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendUnlockEvent(ctx context.Context, data UnlockEventData) error {
	err := r.insert(ctx, UnlockEventsTable.Name,
		[]string{"game_id", "source_game_id", "session_id"},
		[]any{data.GameID, data.SourceGameID, data.SessionID},
	)
	if err != nil {
		return fmt.Errorf("save unlock event: %w", err)
	}
	return nil
}

func (r *eventRepo) WalletTotals(ctx context.Context) (WalletTotals, error) {
	b := r.builder()
	t := b.Table(RewardEventsTable.Name)
	q, args := b.Select(t.C("kind"), entsql.As(entsql.Sum(t.C("amount")), "total")).
		From(t).
		GroupBy(t.C("kind")).
		Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return WalletTotals{}, fmt.Errorf("query wallet totals: %w", err)
	}
	defer rows.Close()

	var totals WalletTotals
	for rows.Next() {
		var (
			kind string
			sum  sql.NullInt64
		)
		if err := rows.Scan(&kind, &sum); err != nil {
			return WalletTotals{}, fmt.Errorf("scan wallet totals: %w", err)
		}
		switch kind {
		case KindCoins:
			totals.Coins = int(sum.Int64)
		case KindXP:
			totals.XP = int(sum.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return WalletTotals{}, fmt.Errorf("query wallet totals: %w", err)
	}
	return totals, nil
}

func (r *eventRepo) QueryBadgeEvents(ctx context.Context, opts QueryOpts) ([]BadgeEventRecord, error) {
	b := r.builder()
	t := b.Table(BadgeEventsTable.Name)
	sel := b.Select(
		t.C("session_id"), t.C("game_id"), t.C("badge_type"), t.C("rarity"), t.C("reason"),
		t.C("sequence"), t.C("created_at"),
	).
		From(t).
		OrderBy(entsql.Desc(t.C("sequence")))
	applyOpts(sel, t, opts)

	q, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query badge events: %w", err)
	}
	defer rows.Close()

	var records []BadgeEventRecord
	for rows.Next() {
		var (
			rec     BadgeEventRecord
			created int64
		)
		if err := rows.Scan(&rec.SessionID, &rec.GameID, &rec.BadgeType, &rec.Rarity, &rec.Reason, &rec.Sequence, &created); err != nil {
			return nil, fmt.Errorf("scan badge event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(created)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query badge events: %w", err)
	}
	return records, nil
}

func (r *eventRepo) BadgeCounts(ctx context.Context) (map[string]int, int, error) {
	b := r.builder()
	t := b.Table(BadgeEventsTable.Name)
	q, args := b.Select(t.C("rarity"), entsql.As(entsql.Count("*"), "n")).
		From(t).
		GroupBy(t.C("rarity")).
		Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query badge counts: %w", err)
	}
	defer rows.Close()

	byRarity := make(map[string]int)
	total := 0
	for rows.Next() {
		var (
			rarity string
			n      int
		)
		if err := rows.Scan(&rarity, &n); err != nil {
			return nil, 0, fmt.Errorf("scan badge counts: %w", err)
		}
		byRarity[rarity] = n
		total += n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("query badge counts: %w", err)
	}
	return byRarity, total, nil
}

func (r *eventRepo) UnlockedGames(ctx context.Context) ([]string, error) {
	b := r.builder()
	t := b.Table(UnlockEventsTable.Name)
	q, args := b.Select(t.C("game_id")).
		Distinct().
		From(t).
		OrderBy(t.C("game_id")).
		Query()
	return r.queryStrings(ctx, "query unlocked games", q, args)
}
