package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Item is a reviewable topic identified by its Subject/Area/Topic path.
type Item struct {
	ent.Schema
}

func (Item) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable().
			Comment("Slash-separated topic path"),
		field.String("stage").
			Default("first_time").
			Comment("Learning stage label"),
		field.String("status").
			Default("active").
			Comment("active, disabled or completed"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("last_reviewed").
			Optional().
			Nillable(),
		field.Time("next_review"),
		field.Float("interval_days"),
		field.Float("performance").
			Default(0),
		field.Float("halflife").
			Optional().
			Nillable(),
		field.Int64("version").
			Default(0).
			Comment("Optimistic concurrency counter"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

func (Item) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("reviews", ReviewEvent.Type),
	}
}

func (Item) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "next_review"),
	}
}
