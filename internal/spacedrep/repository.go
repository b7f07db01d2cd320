package spacedrep

import "context"

// Repository persists items and their review history.
type Repository interface {
	// LoadItem returns the item with id, or ErrItemNotFound.
	LoadItem(ctx context.Context, id string) (*Item, error)

	// SaveItem inserts a new item (Version 0) or updates an existing one.
	// An update whose Version differs from the stored one, or that would
	// drop or rewrite recorded history, fails with ErrVersionConflict. On
	// success the item's Version is advanced to the stored value.
	SaveItem(ctx context.Context, item *Item) error

	// ListItems returns every item ordered by ID.
	ListItems(ctx context.Context) ([]*Item, error)
}
