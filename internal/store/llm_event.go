package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	var errMsg any
	if data.ErrorMessage != "" {
		errMsg = data.ErrorMessage
	}
	err := r.insert(ctx, LLMRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message"},
		[]any{data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, errMsg},
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	b := r.builder()
	t := b.Table(LLMRequestEventsTable.Name)
	sel := b.Select(
		t.C("provider"), t.C("model"), t.C("purpose"), t.C("input_tokens"), t.C("output_tokens"),
		t.C("latency_ms"), t.C("success"), t.C("error_message"), t.C("sequence"), t.C("created_at"),
	).
		From(t).
		OrderBy(entsql.Desc(t.C("sequence")))
	applyOpts(sel, t, opts)

	q, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM requests: %w", err)
	}
	defer rows.Close()

	var records []LLMRequestEventRecord
	for rows.Next() {
		var (
			rec     LLMRequestEventRecord
			errMsg  sql.NullString
			created int64
		)
		if err := rows.Scan(
			&rec.Provider, &rec.Model, &rec.Purpose, &rec.InputTokens, &rec.OutputTokens,
			&rec.LatencyMs, &rec.Success, &errMsg, &rec.Sequence, &created,
		); err != nil {
			return nil, fmt.Errorf("scan LLM request: %w", err)
		}
		rec.ErrorMessage = errMsg.String
		rec.Timestamp = time.UnixMilli(created)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query LLM requests: %w", err)
	}
	return records, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	b := r.builder()
	t := b.Table(LLMRequestEventsTable.Name)
	q, args := b.Select(
		t.C("purpose"),
		t.C("success"),
		entsql.As(entsql.Count("*"), "n"),
		entsql.As(entsql.Sum(t.C("input_tokens")), "input_tokens"),
		entsql.As(entsql.Sum(t.C("output_tokens")), "output_tokens"),
	).
		From(t).
		GroupBy(t.C("purpose"), t.C("success")).
		Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	byPurpose := make(map[string]*LLMUsage)
	for rows.Next() {
		var (
			purpose string
			success bool
			n       int
			in, out sql.NullInt64
		)
		if err := rows.Scan(&purpose, &success, &n, &in, &out); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		u, ok := byPurpose[purpose]
		if !ok {
			u = &LLMUsage{Purpose: purpose}
			byPurpose[purpose] = u
		}
		u.Requests += n
		if !success {
			u.Failures += n
		}
		u.InputTokens += int(in.Int64)
		u.OutputTokens += int(out.Int64)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}

	usage := make([]LLMUsage, 0, len(byPurpose))
	for _, u := range byPurpose {
		usage = append(usage, *u)
	}
	sort.Slice(usage, func(i, j int) bool { return usage[i].Purpose < usage[j].Purpose })
	return usage, nil
}
