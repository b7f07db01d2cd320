package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/cadence/internal/llm"
	"github.com/m-mizutani/goerr/v2"
)

// CallRecord is a stored llm.Call.
type CallRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	llm.Call
}

// CallFilter narrows Calls. Zero fields are ignored.
type CallFilter struct {
	Limit   int
	Purpose string
	Since   time.Time
	Failed  bool
}

// Usage is the token total for one group of calls.
type Usage struct {
	Key          string
	Calls        int
	Failed       int
	InputTokens  int
	OutputTokens int
	AvgLatency   time.Duration
}

func (u Usage) Tokens() llm.Usage {
	return llm.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
}

// UsageGroup picks the column Usage groups by.
type UsageGroup string

const (
	ByPurpose UsageGroup = "purpose"
	ByModel   UsageGroup = "model"
)

// CallRepo is the LLM call log. It implements llm.CallLog.
type CallRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ llm.CallLog = (*CallRepo)(nil)

var callColumns = []string{
	"id", "sequence", "timestamp", "vendor", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "error", "request", "response",
}

func (r *CallRepo) RecordCall(ctx context.Context, c llm.Call) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(llmCallsTable).
		Columns(callColumns[1:]...).
		Values(seq, time.Now().UTC(), c.Vendor, c.Model, c.Purpose,
			c.InputTokens, c.OutputTokens, c.Latency.Milliseconds(),
			c.Err, c.Request, c.Response).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return goerr.Wrap(err, "record llm call", goerr.V("purpose", c.Purpose))
	}
	return nil
}

// Calls returns matching calls, newest first.
func (r *CallRepo) Calls(ctx context.Context, f CallFilter) ([]CallRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(callColumns...).
		From(entsql.Table(llmCallsTable)).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if f.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", f.Purpose))
	}
	if !f.Since.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", f.Since.UTC()))
	}
	if f.Failed {
		preds = append(preds, entsql.NEQ("error", ""))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "query llm calls")
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		rec, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Call returns the call with id. ok is false when there is none.
func (r *CallRepo) Call(ctx context.Context, id int) (rec CallRecord, ok bool, err error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(callColumns...).
		From(entsql.Table(llmCallsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err = scanCall(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return CallRecord{}, false, nil
	}
	if err != nil {
		return CallRecord{}, false, err
	}
	return rec, true, nil
}

// Usage totals tokens per purpose or per model, ordered by key.
func (r *CallRepo) Usage(ctx context.Context, by UsageGroup) ([]Usage, error) {
	if by != ByPurpose && by != ByModel {
		return nil, goerr.New("unknown usage grouping", goerr.V("group", string(by)))
	}
	col := string(by)
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			col,
			entsql.As(entsql.Count("*"), "calls"),
			entsql.As("SUM(CASE WHEN error <> '' THEN 1 ELSE 0 END)", "failed"),
			entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
			entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
			entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
		).
		From(entsql.Table(llmCallsTable)).
		GroupBy(col).
		OrderBy(col).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "query llm usage", goerr.V("group", col))
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		var avgMs float64
		if err := rows.Scan(&u.Key, &u.Calls, &u.Failed, &u.InputTokens, &u.OutputTokens, &avgMs); err != nil {
			return nil, goerr.Wrap(err, "scan llm usage")
		}
		u.AvgLatency = time.Duration(avgMs * float64(time.Millisecond))
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCall(s scanner) (CallRecord, error) {
	var rec CallRecord
	var latencyMs int64
	err := s.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp,
		&rec.Vendor, &rec.Model, &rec.Purpose,
		&rec.InputTokens, &rec.OutputTokens, &latencyMs,
		&rec.Err, &rec.Request, &rec.Response)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, goerr.Wrap(err, "scan llm call")
	}
	rec.Latency = time.Duration(latencyMs) * time.Millisecond
	return rec, nil
}
