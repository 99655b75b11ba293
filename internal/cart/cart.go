// Package cart implements carts of line items (offer lists, transfer baskets) whose
// contents are persisted to a storage.Store after every mutation.
//
// Quantities are clamped to [0, available stock] rather than rejected. Adding an id
// that is already present merges into the existing line.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/logging"
	"github.com/rshade/stockdesk/internal/storage"
)

// Fixed storage keys, one per cart type.
const (
	KeyOfferList     = "offer-list"
	KeyTransferItems = "transfer-items"
)

// SnapshotVersion is the schema version of the persisted cart document.
const SnapshotVersion = 1

// Cart errors. ErrValidation is the api sentinel so api.KindOf classifies cart failures.
var (
	ErrValidation   = api.ErrValidation
	ErrItemNotFound = errors.New("cart item not found")
)

func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// snapshot is the persisted form of a cart.
type snapshot struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// Cart is an ordered collection of line items backed by a storage key.
// It is safe for concurrent use.
type Cart struct {
	store storage.Store
	key   string

	mu    sync.Mutex
	items []LineItem
}

// Open loads the cart stored under key. Missing, unreadable or corrupt data yields an
// empty cart; the problem is logged, not returned.
func Open(ctx context.Context, store storage.Store, key string) (*Cart, error) {
	if store == nil {
		return nil, errors.New("cart store is required")
	}
	if key == "" {
		return nil, storage.ErrInvalidKey
	}

	c := &Cart{store: store, key: key, items: []LineItem{}}
	c.items = c.load(ctx)
	return c, nil
}

func (c *Cart) load(ctx context.Context) []LineItem {
	log := logging.FromContext(ctx)

	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		log.Warn().Ctx(ctx).
			Str("component", "cart").
			Str("operation", "load").
			Str("key", c.key).
			Err(err).
			Msg("cart storage unreadable, starting empty")
		return []LineItem{}
	}
	if !ok {
		return []LineItem{}
	}

	var snap snapshot
	if unmarshalErr := json.Unmarshal([]byte(raw), &snap); unmarshalErr != nil {
		log.Warn().Ctx(ctx).
			Str("component", "cart").
			Str("operation", "load").
			Str("key", c.key).
			Err(unmarshalErr).
			Msg("cart snapshot corrupted, starting empty")
		return []LineItem{}
	}
	if snap.Version != SnapshotVersion {
		log.Warn().Ctx(ctx).
			Str("component", "cart").
			Str("operation", "load").
			Str("key", c.key).
			Int("version", snap.Version).
			Int("expected_version", SnapshotVersion).
			Msg("unsupported cart snapshot version, starting empty")
		return []LineItem{}
	}

	items := make([]LineItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		if vErr := it.validate(); vErr != nil {
			log.Warn().Ctx(ctx).
				Str("component", "cart").
				Str("operation", "load").
				Str("key", c.key).
				Err(vErr).
				Msg("skipping invalid cart item")
			continue
		}
		items = mergeInto(items, it.normalized())
	}

	log.Debug().Ctx(ctx).
		Str("component", "cart").
		Str("operation", "load").
		Str("key", c.key).
		Int("items", len(items)).
		Msg("cart loaded")
	return items
}

// Key returns the storage key.
func (c *Cart) Key() string {
	return c.key
}

// Add appends item, or merges it into the line with the same id: quantities are summed
// and clamped, the other fields are taken from item, and the line keeps its position.
func (c *Cart) Add(ctx context.Context, item LineItem) (LineItem, error) {
	if err := item.validate(); err != nil {
		return LineItem{}, err
	}

	var added LineItem
	err := c.mutate(ctx, "add", func(items []LineItem) ([]LineItem, error) {
		items = mergeInto(items, item.normalized())
		added = items[indexOf(items, item.ID)]
		return items, nil
	})
	if err != nil {
		return LineItem{}, err
	}
	return added, nil
}

// Remove deletes the line with id and reports whether it existed.
func (c *Cart) Remove(ctx context.Context, id string) (bool, error) {
	removed := false
	err := c.mutate(ctx, "remove", func(items []LineItem) ([]LineItem, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, errNoChange
		}
		removed = true
		return slices.Delete(items, i, i+1), nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// SetQuantity sets the quantity of id, clamped to [0, available stock].
// A quantity of zero keeps the line.
func (c *Cart) SetQuantity(ctx context.Context, id string, qty int) (LineItem, error) {
	return c.update(ctx, "set_quantity", id, func(li *LineItem) {
		li.Quantity = li.Clamp(qty)
	})
}

// SetStock records the available stock of id and re-clamps its quantity.
// NoStockLimit removes the cap.
func (c *Cart) SetStock(ctx context.Context, id string, stock int) (LineItem, error) {
	if stock < NoStockLimit {
		return LineItem{}, errorf("available stock must be >= 0, got %d", stock)
	}
	return c.update(ctx, "set_stock", id, func(li *LineItem) {
		if stock == NoStockLimit {
			li.AvailableStock = nil
		} else {
			li.AvailableStock = StockPtr(stock)
		}
		li.Quantity = li.Clamp(li.Quantity)
	})
}

// Clear removes every line.
func (c *Cart) Clear(ctx context.Context) error {
	return c.mutate(ctx, "clear", func([]LineItem) ([]LineItem, error) {
		return []LineItem{}, nil
	})
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Get returns the line with id.
func (c *Cart) Get(id string) (LineItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexOf(c.items, id)
	if i < 0 {
		return LineItem{}, false
	}
	return cloneItems(c.items[i : i+1])[0], true
}

// Count returns the number of lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalQuantity returns the sum of all quantities.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, li := range c.items {
		total += li.Quantity
	}
	return total
}

// TotalValue returns the sum of line totals, computed on every call.
func (c *Cart) TotalValue() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.TotalValue())
	}
	return total
}

var errNoChange = errors.New("no change")

func (c *Cart) update(ctx context.Context, op, id string, fn func(*LineItem)) (LineItem, error) {
	var updated LineItem
	err := c.mutate(ctx, op, func(items []LineItem) ([]LineItem, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
		}
		fn(&items[i])
		updated = items[i]
		return items, nil
	})
	if err != nil {
		return LineItem{}, err
	}
	return updated, nil
}

// mutate applies fn to a copy of the lines and persists the result. The in-memory
// lines change only after the snapshot is written.
func (c *Cart) mutate(ctx context.Context, op string, fn func([]LineItem) ([]LineItem, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(cloneItems(c.items))
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}

	if persistErr := c.persist(ctx, next); persistErr != nil {
		logging.FromContext(ctx).Error().Ctx(ctx).
			Str("component", "cart").
			Str("operation", op).
			Str("key", c.key).
			Err(persistErr).
			Msg("failed to persist cart, change rolled back")
		return fmt.Errorf("persisting cart %s: %w", c.key, persistErr)
	}

	c.items = next
	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "cart").
		Str("operation", op).
		Str("key", c.key).
		Int("items", len(next)).
		Msg("cart updated")
	return nil
}

func (c *Cart) persist(ctx context.Context, items []LineItem) error {
	data, err := json.Marshal(snapshot{Version: SnapshotVersion, Items: items})
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	return c.store.Set(ctx, c.key, string(data))
}

func mergeInto(items []LineItem, item LineItem) []LineItem {
	i := indexOf(items, item.ID)
	if i < 0 {
		return append(items, item)
	}
	qty := items[i].Quantity + item.Quantity
	item.Quantity = item.Clamp(qty)
	items[i] = item
	return items
}

func indexOf(items []LineItem, id string) int {
	return slices.IndexFunc(items, func(li LineItem) bool { return li.ID == id })
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, li := range items {
		out[i] = li
		if li.AvailableStock != nil {
			out[i].AvailableStock = StockPtr(*li.AvailableStock)
		}
	}
	return out
}
