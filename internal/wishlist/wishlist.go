package wishlist

import (
	"github.com/joao-fontenele/storefront-core/internal/domain"
)

// Wishlist is a saved-for-later list with set semantics: a product appears
// at most once. It is independent of the cart and survives checkout.
type Wishlist struct {
	entries []domain.WishlistEntry
	index   map[string]int
}

func New() *Wishlist {
	return &Wishlist{index: make(map[string]int)}
}

func FromEntries(entries []domain.WishlistEntry) *Wishlist {
	w := New()
	for _, e := range entries {
		if _, ok := w.index[e.ProductID]; ok {
			continue
		}
		w.index[e.ProductID] = len(w.entries)
		w.entries = append(w.entries, e)
	}
	return w
}

// Toggle adds the product when absent and removes it when present,
// returning the resulting membership.
func (w *Wishlist) Toggle(p domain.Product) bool {
	if _, ok := w.index[p.ProductID]; ok {
		w.Remove(p.ProductID)
		return false
	}
	w.index[p.ProductID] = len(w.entries)
	w.entries = append(w.entries, domain.WishlistEntry{
		ProductID: p.ProductID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageRef:  p.ImageRef,
	})
	return true
}

// Remove deletes the entry; removing an absent product is a no-op.
func (w *Wishlist) Remove(productID string) {
	pos, ok := w.index[productID]
	if !ok {
		return
	}
	w.entries = append(w.entries[:pos], w.entries[pos+1:]...)
	delete(w.index, productID)
	for i := pos; i < len(w.entries); i++ {
		w.index[w.entries[i].ProductID] = i
	}
}

func (w *Wishlist) Get(productID string) (domain.WishlistEntry, bool) {
	pos, ok := w.index[productID]
	if !ok {
		return domain.WishlistEntry{}, false
	}
	return w.entries[pos], true
}

func (w *Wishlist) Contains(productID string) bool {
	_, ok := w.index[productID]
	return ok
}

func (w *Wishlist) Entries() []domain.WishlistEntry {
	entries := make([]domain.WishlistEntry, len(w.entries))
	copy(entries, w.entries)
	return entries
}
