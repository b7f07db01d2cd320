package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// EventMixin makes a table an append-only log. Rows carry a sequence drawn
// from the store-wide counter, so review events and LLM calls interleave in
// the order they happened.
type EventMixin struct {
	mixin.Schema
}

func (EventMixin) Fields() []ent.Field {
	seq := field.Int64("sequence").Unique().Immutable()
	at := field.Time("timestamp").Immutable().Default(func() time.Time { return time.Now().UTC() })
	return []ent.Field{seq, at}
}

func (EventMixin) Indexes() []ent.Index {
	return []ent.Index{index.Fields("sequence"), index.Fields("timestamp")}
}
