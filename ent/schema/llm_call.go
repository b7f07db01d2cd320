package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMCall is one request sent by the LLM half-life predictor. Retries are
// separate rows.
type LLMCall struct {
	ent.Schema
}

func (LLMCall) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMCall) Fields() []ent.Field {
	return []ent.Field{
		field.String("vendor"),
		field.String("model").
			Comment("Model that served the request, as reported by the vendor"),
		field.String("purpose"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0),
		field.String("error").
			Default("").
			Comment("Empty when the call succeeded"),
		field.Text("request").
			Default(""),
		field.Text("response").
			Default(""),
	}
}

func (LLMCall) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose"),
		index.Fields("model"),
	}
}
