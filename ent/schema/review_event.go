package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ReviewEvent is one append-only entry of an item's review history.
type ReviewEvent struct {
	ent.Schema
}

func (ReviewEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ReviewEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable().
			Comment("UUID assigned by the scheduler"),
		field.String("item_id").
			Immutable(),
		field.Int("position").
			Immutable().
			Comment("Zero-based index in the item's history"),
		field.String("difficulty").
			Immutable(),
		field.Float("performance").
			Immutable(),
		field.Float("interval_applied").
			Immutable(),
		field.Float("halflife").
			Optional().
			Nillable().
			Immutable(),
		field.Float("recall_probability").
			Optional().
			Nillable().
			Immutable(),
		field.String("halflife_source").
			Default("").
			Immutable(),
		field.String("stage_before").
			Immutable(),
		field.String("stage_after").
			Immutable(),
	}
}

func (ReviewEvent) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("item", Item.Type).
			Ref("reviews").
			Field("item_id").
			Unique().
			Required().
			Immutable(),
	}
}

func (ReviewEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("item_id", "position").Unique(),
	}
}
