package store

import (
	"context"
	"fmt"

	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/model"
)

const itemsCollection = "items"

// DefaultItemLimit caps item listings when no explicit limit is given.
const DefaultItemLimit = 30

// CreateItem persists a new open item for the given owner and returns its id.
func CreateItem(ctx context.Context, cli docstore.Client, ownerID string, input model.ItemInput) (string, error) {
	images := input.Images
	if images == nil {
		images = []string{}
	}

	id, err := cli.Create(ctx, itemsCollection, docstore.Fields{
		"ownerId":            ownerID,
		"title":              input.Title,
		"description":        input.Description,
		"category":           input.Category,
		"condition":          input.Condition,
		"images":             images,
		"handoffMethod":      input.HandoffMethod,
		"shippingCostPaidBy": model.ShippingPaidByReceiver,
		"status":             model.ItemStatusOpen,
		"createdAt":          docstore.ServerTimestamp{},
	})
	if err != nil {
		return "", fmt.Errorf("creating item: %w", err)
	}
	return id, nil
}

// GetItem returns an item by id, or nil when it does not exist.
func GetItem(ctx context.Context, cli docstore.Client, id string) (*model.Item, error) {
	doc, err := cli.Get(ctx, itemsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return decodeItem(doc)
}

// ItemFilter narrows an item listing. Zero values mean "no filter".
type ItemFilter struct {
	Category string
	OwnerID  string
	Max      int
}

// ListItems returns items newest first, optionally filtered by exact
// category or owner, truncated to Max (DefaultItemLimit when unset).
// The result is a snapshot of store state at call time.
func ListItems(ctx context.Context, cli docstore.Client, filter ItemFilter) ([]model.Item, error) {
	q := docstore.Query{OrderBy: "createdAt", Desc: true, Limit: filter.Max}
	if q.Limit <= 0 {
		q.Limit = DefaultItemLimit
	}
	if filter.Category != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "category", Value: filter.Category})
	}
	if filter.OwnerID != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "ownerId", Value: filter.OwnerID})
	}

	docs, err := cli.Query(ctx, itemsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	items := make([]model.Item, 0, len(docs))
	for i := range docs {
		item, err := decodeItem(&docs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// SetItemStatus overwrites an item's status without checking the
// current value. Workflow steps should use SetItemStatusIf instead.
func SetItemStatus(ctx context.Context, cli docstore.Client, id, status string) error {
	if err := cli.Update(ctx, itemsCollection, id, docstore.Fields{"status": status}); err != nil {
		return fmt.Errorf("setting item status: %w", err)
	}
	return nil
}

// SetItemStatusIf moves an item from one status to another, reporting
// whether the transition was applied.
func SetItemStatusIf(ctx context.Context, cli docstore.Client, id, status, from string) (bool, error) {
	ok, err := cli.UpdateIf(ctx, itemsCollection, id, docstore.Fields{"status": status},
		docstore.Filter{Field: "status", Value: from})
	if err != nil {
		return false, fmt.Errorf("transitioning item status: %w", err)
	}
	return ok, nil
}

// UpdateItem applies a partial update to an item's listing fields.
func UpdateItem(ctx context.Context, cli docstore.Client, id string, update model.ItemUpdate) error {
	fields := docstore.Fields{}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Category != nil {
		fields["category"] = *update.Category
	}
	if update.Condition != nil {
		fields["condition"] = *update.Condition
	}
	if update.Images != nil {
		fields["images"] = *update.Images
	}
	if update.HandoffMethod != nil {
		fields["handoffMethod"] = *update.HandoffMethod
	}
	if len(fields) == 0 {
		return nil
	}

	if err := cli.Update(ctx, itemsCollection, id, fields); err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// AppendItemImages adds image URLs to an item's gallery. Read-modify-
// write is fine here: the owner is the only writer of this field.
func AppendItemImages(ctx context.Context, cli docstore.Client, id string, urls []string) error {
	item, err := GetItem(ctx, cli, id)
	if err != nil {
		return err
	}
	if item == nil {
		return docstore.ErrNotFound
	}

	images := append(item.Images, urls...)
	if err := cli.Update(ctx, itemsCollection, id, docstore.Fields{"images": images}); err != nil {
		return fmt.Errorf("updating item images: %w", err)
	}
	return nil
}

// DeleteItem removes an item.
func DeleteItem(ctx context.Context, cli docstore.Client, id string) error {
	if err := cli.Delete(ctx, itemsCollection, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func decodeItem(doc *docstore.Doc) (*model.Item, error) {
	item := &model.Item{}
	if err := doc.Decode(item); err != nil {
		return nil, fmt.Errorf("decoding item %s: %w", doc.ID, err)
	}
	item.ID = doc.ID
	return item, nil
}
