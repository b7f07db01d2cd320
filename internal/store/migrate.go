package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	itemsTable        = "items"
	reviewEventsTable = "review_events"
	llmCallsTable     = "llm_calls"
)

// The tables mirror the entities in ent/schema. They are declared here in
// the form ent's migrate package uses so auto-migration runs without
// generated client code.
var (
	itemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "stage", Type: field.TypeString, Default: "first_time"},
		{Name: "status", Type: field.TypeString, Default: "active"},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "last_reviewed", Type: field.TypeTime, Nullable: true},
		{Name: "next_review", Type: field.TypeTime},
		{Name: "interval_days", Type: field.TypeFloat64},
		{Name: "performance", Type: field.TypeFloat64, Default: 0},
		{Name: "halflife", Type: field.TypeFloat64, Nullable: true},
		{Name: "version", Type: field.TypeInt64, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	itemsTableDef = &schema.Table{
		Name:       itemsTable,
		Columns:    itemsColumns,
		PrimaryKey: []*schema.Column{itemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "item_status_next_review", Columns: []*schema.Column{itemsColumns[2], itemsColumns[5]}},
		},
	}

	reviewEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "position", Type: field.TypeInt},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "performance", Type: field.TypeFloat64},
		{Name: "interval_applied", Type: field.TypeFloat64},
		{Name: "halflife", Type: field.TypeFloat64, Nullable: true},
		{Name: "recall_probability", Type: field.TypeFloat64, Nullable: true},
		{Name: "halflife_source", Type: field.TypeString, Default: ""},
		{Name: "stage_before", Type: field.TypeString},
		{Name: "stage_after", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
	}
	reviewEventsTableDef = &schema.Table{
		Name:       reviewEventsTable,
		Columns:    reviewEventsColumns,
		PrimaryKey: []*schema.Column{reviewEventsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "review_events_items_reviews",
				Columns:    []*schema.Column{reviewEventsColumns[12]},
				RefColumns: []*schema.Column{itemsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "reviewevent_item_id_position", Unique: true, Columns: []*schema.Column{reviewEventsColumns[12], reviewEventsColumns[3]}},
			{Name: "reviewevent_sequence", Columns: []*schema.Column{reviewEventsColumns[1]}},
			{Name: "reviewevent_timestamp", Columns: []*schema.Column{reviewEventsColumns[2]}},
		},
	}

	llmCallsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "vendor", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "error", Type: field.TypeString, Default: ""},
		{Name: "request", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmCallsTableDef = &schema.Table{
		Name:       llmCallsTable,
		Columns:    llmCallsColumns,
		PrimaryKey: []*schema.Column{llmCallsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmcall_sequence", Columns: []*schema.Column{llmCallsColumns[1]}},
			{Name: "llmcall_timestamp", Columns: []*schema.Column{llmCallsColumns[2]}},
			{Name: "llmcall_purpose", Columns: []*schema.Column{llmCallsColumns[5]}},
			{Name: "llmcall_model", Columns: []*schema.Column{llmCallsColumns[4]}},
		},
	}

	tables = []*schema.Table{itemsTableDef, reviewEventsTableDef, llmCallsTableDef}
)

func init() {
	reviewEventsTableDef.ForeignKeys[0].RefTable = itemsTableDef
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
