package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Column sizes for free-form text. Matches what ent generates for
// field.Text so MySQL gets LONGTEXT instead of VARCHAR(255).
const textSize = 2147483647

// eventColumns returns the columns every event table starts with: surrogate
// id, global sequence and creation time in unix milliseconds.
func eventColumns(cols ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "created_at", Type: field.TypeInt64},
	}, cols...)
}

func eventTable(name string, cols []*schema.Column, indexed ...string) *schema.Table {
	t := &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
	}
	for _, col := range indexed {
		for _, c := range cols {
			if c.Name == col {
				t.Indexes = append(t.Indexes, &schema.Index{
					Name:    name + "_" + col,
					Columns: []*schema.Column{c},
				})
			}
		}
	}
	return t
}

var (
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	SessionEventsTable = eventTable("session_events", eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "game_id", Type: field.TypeString},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "correct_count", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "total", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "passed", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "reward", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "xp", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "duration_ms", Type: field.TypeInt64, Default: 0},
	), "session_id", "game_id")

	ResponseEventsTable = eventTable("response_events", eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "game_id", Type: field.TypeString},
		&schema.Column{Name: "challenge_id", Type: field.TypeString},
		&schema.Column{Name: "variant", Type: field.TypeString},
		&schema.Column{Name: "selection", Type: field.TypeString, Size: textSize},
		&schema.Column{Name: "satisfied", Type: field.TypeBool},
		&schema.Column{Name: "reward_delta", Type: field.TypeInt, Default: 0},
	), "session_id")

	RewardEventsTable = eventTable("reward_events", eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "game_id", Type: field.TypeString},
		&schema.Column{Name: "kind", Type: field.TypeString},
		&schema.Column{Name: "amount", Type: field.TypeInt},
		&schema.Column{Name: "reason", Type: field.TypeString, Default: ""},
	), "kind")

	BadgeEventsTable = eventTable("badge_events", eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "game_id", Type: field.TypeString},
		&schema.Column{Name: "badge_type", Type: field.TypeString},
		&schema.Column{Name: "rarity", Type: field.TypeString},
		&schema.Column{Name: "reason", Type: field.TypeString, Default: ""},
	), "session_id")

	UnlockEventsTable = eventTable("unlock_events", eventColumns(
		&schema.Column{Name: "game_id", Type: field.TypeString},
		&schema.Column{Name: "source_game_id", Type: field.TypeString},
		&schema.Column{Name: "session_id", Type: field.TypeString},
	), "game_id")

	LLMRequestEventsTable = eventTable("llm_request_events", eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Size: textSize, Nullable: true},
	), "purpose")

	// Tables lists every table created at Open.
	Tables = []*schema.Table{
		GlobalSequenceTable,
		SessionEventsTable,
		ResponseEventsTable,
		RewardEventsTable,
		BadgeEventsTable,
		UnlockEventsTable,
		LLMRequestEventsTable,
	}
)
