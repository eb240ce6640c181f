package cart

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"storefront-service/internal/session"
	"storefront-service/pkg/logkey"
)

// API is the slice of the backend the cart flow talks to.
type API interface {
	ClientProfile(ctx context.Context, sess *session.Session) (Profile, error)
	Cart(ctx context.Context, sess *session.Session, clientID int64) (Cart, error)
	CartItems(ctx context.Context, sess *session.Session, cartID int64) ([]Item, error)
	AddItem(ctx context.Context, sess *session.Session, cartID, productID int64, quantity int) (Item, error)
	UpdateItemQuantity(ctx context.Context, sess *session.Session, itemID int64, quantity int) (Item, error)
	RemoveItem(ctx context.Context, sess *session.Session, itemID int64) error
	ClearCart(ctx context.Context, sess *session.Session, cartID int64) error
}

// Workflow holds one session's cart state between requests: the items as the
// backend last confirmed them, the raw quantity values the user has typed,
// and the debounce tasks for edits that have not been flushed yet.
//
// Every operation either fully applies the backend's post-call state or
// leaves the local state exactly as it was before the call.
type Workflow struct {
	api         API
	debounce    *scheduler
	callTimeout time.Duration

	mu       sync.Mutex
	sess     *session.Session
	loaded   bool
	cartID   int64
	clientID int64
	items    []Item
	raw      map[int64]string // raw typed quantity per item, mirrors the input box
	nextSeq  map[int64]uint64
	applied  map[int64]uint64
	notices  []string
}

// Snapshot is the cart state handed back to the UI.
type Snapshot struct {
	CartID  int64            `json:"cart_id"`
	Items   []Item           `json:"items"`
	Raw     map[int64]string `json:"raw_quantities"`
	Total   float64          `json:"total_price"`
	Notices []string         `json:"notices,omitempty"`
}

// UpdateResult describes what happened to a single quantity edit.
type UpdateResult struct {
	Raw       string `json:"raw"`
	Clamped   bool   `json:"clamped"`
	Stock     int    `json:"stock"`
	Scheduled bool   `json:"scheduled"`
	Warning   string `json:"warning,omitempty"`
}

// Load resolves profile -> cart -> items sequentially and replaces the local
// state with what the backend returned. Each stage wraps its own error so
// failures name the stage that broke.
func (w *Workflow) Load(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	sess := w.sess
	w.mu.Unlock()

	profile, err := w.api.ClientProfile(ctx, sess)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading client profile: %w", err)
	}

	crt, err := w.api.Cart(ctx, sess, profile.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading cart for client %d: %w", profile.ID, err)
	}

	items, err := w.api.CartItems(ctx, sess, crt.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading items for cart %d: %w", crt.ID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loaded = true
	w.cartID = crt.ID
	w.clientID = profile.ID
	w.items = items
	w.raw = make(map[int64]string, len(items))
	for _, item := range items {
		w.raw[item.ID] = strconv.Itoa(item.Quantity)
	}
	return w.snapshotLocked(), nil
}

// UpdateQuantity records a keystroke in the quantity box for one item.
//
// The raw value is always kept so the input stays responsive. An unparsable
// value or one below 1 issues no server call and leaves the confirmed item
// untouched. A value above the item's known stock is clamped to the stock,
// reported with a warning, and likewise issues no call for this keystroke.
// A valid value is debounced: the pending task for this item (if any) is
// cancelled and a fresh one is scheduled, so rapid edits collapse into a
// single PUT carrying the final value.
func (w *Workflow) UpdateQuantity(itemID int64, rawValue string) (UpdateResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.loaded {
		return UpdateResult{}, fmt.Errorf("cart not loaded")
	}
	item, ok := w.itemLocked(itemID)
	if !ok {
		return UpdateResult{}, fmt.Errorf("item %d not in cart", itemID)
	}

	w.raw[itemID] = rawValue
	result := UpdateResult{Raw: rawValue, Stock: item.ProductStockQuantity}

	quantity, err := strconv.Atoi(rawValue)
	if err != nil || quantity < 1 {
		// Input stays visibly inconsistent until the user corrects it.
		return result, nil
	}

	if quantity > item.ProductStockQuantity {
		clamped := strconv.Itoa(item.ProductStockQuantity)
		w.raw[itemID] = clamped
		result.Raw = clamped
		result.Clamped = true
		result.Warning = fmt.Sprintf("only %d in stock", item.ProductStockQuantity)
		return result, nil
	}

	seq := w.nextSeq[itemID] + 1
	w.nextSeq[itemID] = seq
	sess := w.sess
	w.debounce.Schedule(itemID, func() {
		w.flushQuantity(sess, itemID, quantity, seq)
	})
	result.Scheduled = true
	return result, nil
}

// flushQuantity performs the deferred PUT once the debounce window closes.
// Responses that lost the race against a newer applied edit are discarded.
func (w *Workflow) flushQuantity(sess *session.Session, itemID int64, quantity int, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), w.callTimeout)
	defer cancel()

	updated, err := w.api.UpdateItemQuantity(ctx, sess, itemID, quantity)
	if err != nil {
		slog.Error("failed to update cart item quantity",
			slog.Int64(logkey.ItemID, itemID), slog.Int("Quantity", quantity),
			slog.String(logkey.ERROR, err.Error()))
		w.mu.Lock()
		w.notices = append(w.notices, fmt.Sprintf("failed to update quantity for %q", w.itemNameLocked(itemID)))
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if seq < w.applied[itemID] {
		// A newer edit already settled; this response is stale.
		return
	}
	w.applied[itemID] = seq
	for i := range w.items {
		if w.items[i].ID == itemID {
			w.items[i] = updated
			break
		}
	}
}

// Add puts a product into the cart and patches the local list with the line
// the backend returned. When the backend merged the quantity into an existing
// line, the local line is replaced; otherwise the line is appended. On failure
// the local state is left as it was.
func (w *Workflow) Add(ctx context.Context, productID int64, quantity int) (Snapshot, error) {
	w.mu.Lock()
	if !w.loaded {
		w.mu.Unlock()
		return Snapshot{}, fmt.Errorf("cart not loaded")
	}
	sess := w.sess
	cartID := w.cartID
	w.mu.Unlock()

	item, err := w.api.AddItem(ctx, sess, cartID, productID, quantity)
	if err != nil {
		return Snapshot{}, fmt.Errorf("adding product %d to cart %d: %w", productID, cartID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	replaced := false
	for i := range w.items {
		if w.items[i].ID == item.ID {
			w.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		w.items = append(w.items, item)
	}
	w.raw[item.ID] = strconv.Itoa(item.Quantity)
	return w.snapshotLocked(), nil
}

// Remove deletes one line immediately. On failure the local list is left as
// it was.
func (w *Workflow) Remove(ctx context.Context, itemID int64) (Snapshot, error) {
	w.mu.Lock()
	if !w.loaded {
		w.mu.Unlock()
		return Snapshot{}, fmt.Errorf("cart not loaded")
	}
	sess := w.sess
	w.mu.Unlock()

	w.debounce.Cancel(itemID)
	if err := w.api.RemoveItem(ctx, sess, itemID); err != nil {
		return Snapshot{}, fmt.Errorf("removing item %d: %w", itemID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.items[:0]
	for _, item := range w.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	w.items = kept
	delete(w.raw, itemID)
	delete(w.nextSeq, itemID)
	delete(w.applied, itemID)
	return w.snapshotLocked(), nil
}

// Clear empties the whole cart. All-or-nothing: a failed backend call leaves
// the local state untouched.
func (w *Workflow) Clear(ctx context.Context) error {
	w.mu.Lock()
	if !w.loaded {
		w.mu.Unlock()
		return fmt.Errorf("cart not loaded")
	}
	sess := w.sess
	cartID := w.cartID
	w.mu.Unlock()

	if err := w.api.ClearCart(ctx, sess, cartID); err != nil {
		return fmt.Errorf("clearing cart %d: %w", cartID, err)
	}

	w.debounce.Reset()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = nil
	w.raw = make(map[int64]string)
	w.nextSeq = make(map[int64]uint64)
	w.applied = make(map[int64]uint64)
	return nil
}

// Snapshot returns the current local view, draining accumulated notices.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// EffectiveItems returns the items with the latest edited quantities applied:
// a valid raw value wins over the last confirmed quantity. Used to build the
// order draft at checkout.
func (w *Workflow) EffectiveItems() []Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	items := make([]Item, len(w.items))
	copy(items, w.items)
	for i := range items {
		raw, ok := w.raw[items[i].ID]
		if !ok {
			continue
		}
		if q, err := strconv.Atoi(raw); err == nil && q >= 1 && q <= items[i].ProductStockQuantity {
			items[i].Quantity = q
		}
	}
	return items
}

func (w *Workflow) CartID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cartID
}

func (w *Workflow) ClientID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clientID
}

func (w *Workflow) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// Stop abandons all pending debounce tasks. Called on session teardown.
func (w *Workflow) Stop() {
	w.debounce.Stop()
}

func (w *Workflow) snapshotLocked() Snapshot {
	items := make([]Item, len(w.items))
	copy(items, w.items)
	raw := make(map[int64]string, len(w.raw))
	for k, v := range w.raw {
		raw[k] = v
	}
	notices := w.notices
	w.notices = nil
	return Snapshot{
		CartID:  w.cartID,
		Items:   items,
		Raw:     raw,
		Total:   TotalPrice(items),
		Notices: notices,
	}
}

func (w *Workflow) itemLocked(itemID int64) (Item, bool) {
	for _, item := range w.items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

func (w *Workflow) itemNameLocked(itemID int64) string {
	if item, ok := w.itemLocked(itemID); ok {
		return item.ProductName
	}
	return strconv.FormatInt(itemID, 10)
}
