package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builder and the global
// sequence counter. A repo bound to tx appends inside that transaction.
type eventRepo struct {
	db      *sql.DB
	dialect string
	seq     *sequenceCounter
	tx      *sql.Tx
}

func (r *eventRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

// WithTx runs fn with a repo whose appends share one transaction. Nested
// calls reuse the outer transaction.
func (r *eventRepo) WithTx(ctx context.Context, fn func(EventRepo) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.seq.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&eventRepo{db: r.db, dialect: r.dialect, seq: r.seq, tx: tx})
	})
}

// insert appends one event row, stamping it with the next sequence number
// and the current time.
func (r *eventRepo) insert(ctx context.Context, table string, cols []string, vals []any) error {
	if r.tx != nil {
		return r.insertTx(ctx, r.tx, table, cols, vals)
	}
	return r.seq.inTx(ctx, func(tx *sql.Tx) error {
		return r.insertTx(ctx, tx, table, cols, vals)
	})
}

func (r *eventRepo) insertTx(ctx context.Context, tx *sql.Tx, table string, cols []string, vals []any) error {
	seqNum, err := r.seq.next(ctx, tx)
	if err != nil {
		return err
	}

	q, args := r.builder().Insert(table).
		Columns(append([]string{"sequence", "created_at"}, cols...)...).
		Values(append([]any{seqNum, time.Now().UnixMilli()}, vals...)...).
		Query()
	_, err = tx.ExecContext(ctx, q, args...)
	return err
}

// applyOpts narrows sel by sequence, time window and limit.
func applyOpts(sel *entsql.Selector, t *entsql.SelectTable, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT(t.C("sequence"), opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT(t.C("sequence"), opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(t.C("created_at"), opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(t.C("created_at"), opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, SessionEventsTable.Name,
		[]string{"session_id", "game_id", "action", "correct_count", "total", "passed", "reward", "xp", "duration_ms"},
		[]any{data.SessionID, data.GameID, data.Action, data.CorrectCount, data.Total, data.Passed, data.Reward, data.XP, data.DurationMs},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendResponseEvent(ctx context.Context, data ResponseEventData) error {
	err := r.insert(ctx, ResponseEventsTable.Name,
		[]string{"session_id", "game_id", "challenge_id", "variant", "selection", "satisfied", "reward_delta"},
		[]any{data.SessionID, data.GameID, data.ChallengeID, data.Variant, data.Selection, data.Satisfied, data.RewardDelta},
	)
	if err != nil {
		return fmt.Errorf("save response event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	b := r.builder()
	t := b.Table(SessionEventsTable.Name)
	sel := b.Select(
		t.C("session_id"), t.C("game_id"), t.C("correct_count"), t.C("total"), t.C("passed"),
		t.C("reward"), t.C("xp"), t.C("duration_ms"), t.C("sequence"), t.C("created_at"),
	).
		From(t).
		Where(entsql.EQ(t.C("action"), ActionEnd)).
		OrderBy(entsql.Desc(t.C("sequence")))
	applyOpts(sel, t, opts)

	q, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var (
			rec     SessionSummaryRecord
			created int64
		)
		if err := rows.Scan(
			&rec.SessionID, &rec.GameID, &rec.CorrectCount, &rec.Total, &rec.Passed,
			&rec.Reward, &rec.XP, &rec.DurationMs, &rec.Sequence, &created,
		); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		rec.Timestamp = time.UnixMilli(created)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	return records, nil
}

func (r *eventRepo) PassedGames(ctx context.Context) ([]string, error) {
	b := r.builder()
	t := b.Table(SessionEventsTable.Name)
	q, args := b.Select(t.C("game_id")).
		Distinct().
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("action"), ActionEnd),
			entsql.EQ(t.C("passed"), true),
		)).
		OrderBy(t.C("game_id")).
		Query()
	return r.queryStrings(ctx, "query passed games", q, args)
}

func (r *eventRepo) queryStrings(ctx context.Context, op, q string, args []any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
