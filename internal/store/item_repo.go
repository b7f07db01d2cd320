package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/m-mizutani/goerr/v2"
)

// ItemRepo persists items and their review history. It implements
// spacedrep.Repository.
type ItemRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ spacedrep.Repository = (*ItemRepo)(nil)

var itemColumns = []string{
	"id", "stage", "status", "created_at", "last_reviewed", "next_review",
	"interval_days", "performance", "halflife", "version",
}

var reviewColumns = []string{
	"id", "timestamp", "difficulty", "performance", "interval_applied",
	"halflife", "recall_probability", "halflife_source", "stage_before", "stage_after",
}

func (r *ItemRepo) LoadItem(ctx context.Context, id string) (*spacedrep.Item, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(itemColumns...).
		From(entsql.Table(itemsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, spacedrep.ErrItemNotFound
	}
	if err != nil {
		return nil, goerr.Wrap(err, "load item", goerr.V("id", id))
	}

	history, err := r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	item.History = history
	return item, nil
}

func (r *ItemRepo) ListItems(ctx context.Context) ([]*spacedrep.Item, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(itemColumns...).
		From(entsql.Table(itemsTable)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "list items")
	}
	var items []*spacedrep.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, goerr.Wrap(err, "scan item")
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "list items")
	}

	// Histories are read after the item cursor is closed; the store runs on
	// a single connection.
	byID, err := r.loadAllHistory(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.History = byID[it.ID]
	}
	return items, nil
}

// SaveItem inserts or updates item and appends any history events not yet
// stored, all in one transaction.
func (r *ItemRepo) SaveItem(ctx context.Context, item *spacedrep.Item) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	b := entsql.Dialect(dialect.SQLite)
	now := time.Now().UTC()

	var stored int64
	query, args := b.Select("version").From(entsql.Table(itemsTable)).Where(entsql.EQ("id", item.ID)).Query()
	switch scanErr := tx.QueryRowContext(ctx, query, args...).Scan(&stored); {
	case errors.Is(scanErr, sql.ErrNoRows):
		if item.Version != 0 {
			return spacedrep.ErrItemNotFound
		}
		query, args = b.Insert(itemsTable).
			Columns(append(itemColumns, "updated_at")...).
			Values(item.ID, item.Stage.String(), string(item.Status), item.CreatedAt.UTC(),
				utcOrNil(item.LastReviewed), item.NextReview.UTC(), item.IntervalDays,
				item.Performance, item.HalfLife, int64(1), now).
			Query()
	case scanErr != nil:
		return goerr.Wrap(scanErr, "read item version", goerr.V("id", item.ID))
	default:
		if stored != item.Version {
			return spacedrep.ErrVersionConflict
		}
		query, args = b.Update(itemsTable).
			Set("stage", item.Stage.String()).
			Set("status", string(item.Status)).
			Set("last_reviewed", utcOrNil(item.LastReviewed)).
			Set("next_review", item.NextReview.UTC()).
			Set("interval_days", item.IntervalDays).
			Set("performance", item.Performance).
			Set("halflife", item.HalfLife).
			Set("version", item.Version+1).
			Set("updated_at", now).
			Where(entsql.And(entsql.EQ("id", item.ID), entsql.EQ("version", item.Version))).
			Query()
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return goerr.Wrap(err, "write item", goerr.V("id", item.ID))
	}

	if err = r.appendHistory(ctx, tx, item); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return goerr.Wrap(err, "commit item", goerr.V("id", item.ID))
	}
	item.Version++
	return nil
}

// appendHistory inserts the events past the stored history length. Stored
// events must match the item's prefix; history is never shrunk or rewritten.
func (r *ItemRepo) appendHistory(ctx context.Context, tx *sql.Tx, item *spacedrep.Item) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id").
		From(entsql.Table(reviewEventsTable)).
		Where(entsql.EQ("item_id", item.ID)).
		OrderBy("position").
		Query()
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return goerr.Wrap(err, "read stored history", goerr.V("id", item.ID))
	}
	var storedIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return goerr.Wrap(err, "scan stored history")
		}
		storedIDs = append(storedIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return goerr.Wrap(err, "read stored history")
	}

	if len(item.History) < len(storedIDs) {
		return spacedrep.ErrVersionConflict
	}
	for i, id := range storedIDs {
		if item.History[i].ID != id {
			return spacedrep.ErrVersionConflict
		}
	}

	for pos := len(storedIDs); pos < len(item.History); pos++ {
		ev := item.History[pos]
		seq, err := r.seq.NextIn(ctx, tx)
		if err != nil {
			return err
		}
		query, args := entsql.Dialect(dialect.SQLite).
			Insert(reviewEventsTable).
			Columns(append(reviewColumns, "item_id", "position", "sequence")...).
			Values(ev.ID, ev.Date.UTC(), string(ev.Difficulty), ev.Performance, ev.IntervalApplied,
				ev.HalfLife, ev.RecallProbability, string(ev.HalfLifeSource),
				ev.StageBefore.String(), ev.StageAfter.String(),
				item.ID, pos, seq).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return goerr.Wrap(err, "append review event", goerr.V("id", item.ID), goerr.V("position", pos))
		}
	}
	return nil
}

func (r *ItemRepo) loadHistory(ctx context.Context, id string) ([]spacedrep.ReviewEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(append([]string{"item_id"}, reviewColumns...)...).
		From(entsql.Table(reviewEventsTable)).
		Where(entsql.EQ("item_id", id)).
		OrderBy("position").
		Query()
	byID, err := r.queryHistory(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return byID[id], nil
}

func (r *ItemRepo) loadAllHistory(ctx context.Context) (map[string][]spacedrep.ReviewEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(append([]string{"item_id"}, reviewColumns...)...).
		From(entsql.Table(reviewEventsTable)).
		OrderBy("item_id", "position").
		Query()
	return r.queryHistory(ctx, query, args)
}

func (r *ItemRepo) queryHistory(ctx context.Context, query string, args []any) (map[string][]spacedrep.ReviewEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "query history")
	}
	defer rows.Close()

	out := make(map[string][]spacedrep.ReviewEvent)
	for rows.Next() {
		var (
			itemID, difficulty, source, before, after string
			ev                                        spacedrep.ReviewEvent
			h, recall                                 sql.NullFloat64
		)
		if err := rows.Scan(&itemID, &ev.ID, &ev.Date, &difficulty, &ev.Performance, &ev.IntervalApplied,
			&h, &recall, &source, &before, &after); err != nil {
			return nil, goerr.Wrap(err, "scan review event")
		}
		ev.Difficulty = spacedrep.Difficulty(difficulty)
		ev.HalfLifeSource = spacedrep.HalfLifeSource(source)
		ev.HalfLife = nullFloat(h)
		ev.RecallProbability = nullFloat(recall)
		if ev.StageBefore, err = spacedrep.ParseStage(before); err != nil {
			return nil, goerr.Wrap(err, "decode review event", goerr.V("event", ev.ID))
		}
		if ev.StageAfter, err = spacedrep.ParseStage(after); err != nil {
			return nil, goerr.Wrap(err, "decode review event", goerr.V("event", ev.ID))
		}
		out[itemID] = append(out[itemID], ev)
	}
	return out, rows.Err()
}

func scanItem(s scanner) (*spacedrep.Item, error) {
	var (
		it            spacedrep.Item
		stage, status string
		last          sql.NullTime
		h             sql.NullFloat64
	)
	if err := s.Scan(&it.ID, &stage, &status, &it.CreatedAt, &last, &it.NextReview,
		&it.IntervalDays, &it.Performance, &h, &it.Version); err != nil {
		return nil, err
	}

	var err error
	if it.Stage, err = spacedrep.ParseStage(stage); err != nil {
		return nil, err
	}
	if it.Status, err = spacedrep.ParseStatus(status); err != nil {
		return nil, err
	}
	if last.Valid {
		t := last.Time
		it.LastReviewed = &t
	}
	it.HalfLife = nullFloat(h)
	return &it, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
