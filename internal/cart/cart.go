package cart

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/internal/menu"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
)

// ItemResolver looks a catalog item up by the id a cart line copied at
// add-time. Lines never hold live references into the menu.
type ItemResolver interface {
	ItemByID(id menu.ItemID) *menu.Item
}

// Customization is one applied option on a cart line. Price is the per-unit
// option price copied from the catalog at the time it was applied.
type Customization struct {
	Group    string          `json:"group"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Line is one cart entry. UnitPrice is the fully loaded per-unit price:
// base/size price plus every applied customization. Every mutation that
// touches Customizations adjusts UnitPrice in the same step.
type Line struct {
	LineID         uuid.UUID       `json:"line_id"`
	ItemID         menu.ItemID     `json:"item_id"`
	DisplayName    string          `json:"display_name"`
	SelectedSize   string          `json:"selected_size,omitempty"`
	BasePrice      decimal.Decimal `json:"base_price"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	Customizations []Customization `json:"customizations"`
}

// Subtotal is UnitPrice × Quantity.
func (l *Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// priceFromScratch recomputes what UnitPrice must be from the base price and
// the customization list alone.
func (l *Line) priceFromScratch() decimal.Decimal {
	price := l.BasePrice
	for _, c := range l.Customizations {
		price = price.Add(c.Price.Mul(decimal.NewFromInt(int64(c.Quantity))))
	}
	return price
}

// Clone returns a value copy with its own customization slice.
func (l *Line) Clone() Line {
	dup := *l
	dup.Customizations = make([]Customization, len(l.Customizations))
	copy(dup.Customizations, l.Customizations)
	return dup
}

// Cart is an ordered collection of lines for a single session. It is not
// safe for concurrent use; the owning session serializes access.
type Cart struct {
	lines []*Line
}

func New() *Cart {
	return &Cart{}
}

// Lines exposes the live lines in insertion order.
func (c *Cart) Lines() []*Line {
	return c.lines
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Snapshot deep-copies every line, in order.
func (c *Cart) Snapshot() []Line {
	snapshot := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		snapshot = append(snapshot, line.Clone())
	}
	return snapshot
}

// Add resolves pricing for the item and appends a line, or merges into an
// equivalent existing line (same item, size and customizations) by bumping
// its quantity. The second return reports whether a merge happened.
//
// Initial customizations are matched best-effort against the item's groups
// by case-insensitive name; unknown names are skipped silently. That loose
// policy is deliberate for this bundled path only; the explicit
// AddCustomization operation rejects unknown options instead.
func (c *Cart) Add(item *menu.Item, sizeName string, quantity int, initialCustomizations []string) (*Line, bool, error) {
	if item == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	if quantity <= 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	basePrice, selectedSize, err := resolvePrice(item, sizeName)
	if err != nil {
		return nil, false, err
	}

	displayName := item.DisplayName()
	if selectedSize != "" {
		displayName = fmt.Sprintf("%s (%s)", displayName, selectedSize)
	}

	line := &Line{
		LineID:       uuid.New(),
		ItemID:       item.ID,
		DisplayName:  displayName,
		SelectedSize: selectedSize,
		BasePrice:    basePrice,
		UnitPrice:    basePrice,
		Quantity:     quantity,
	}

	for _, name := range initialCustomizations {
		group, option, ok := findOptionAnywhere(item, name)
		if !ok {
			continue
		}
		line.Customizations = append(line.Customizations, Customization{
			Group:    group,
			Name:     option.Name,
			Price:    option.Price,
			Quantity: 1,
		})
		line.UnitPrice = line.UnitPrice.Add(option.Price)
	}

	if existing := c.findEquivalent(line); existing != nil {
		existing.Quantity += quantity
		return existing, true, nil
	}

	c.lines = append(c.lines, line)
	return line, false, nil
}

func resolvePrice(item *menu.Item, sizeName string) (decimal.Decimal, string, error) {
	if len(item.Sizes) == 0 {
		return item.BasePrice, "", nil
	}

	if sizeName != "" {
		size, ok := item.SizeByName(sizeName)
		if !ok {
			return decimal.Zero, "", pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("size %q is not available for %s", sizeName, item.DisplayName())).
				WithDetails(map[string]any{"available_sizes": item.SizeNames()})
		}
		return size.Price, size.Name, nil
	}

	if len(item.Sizes) == 1 {
		return item.Sizes[0].Price, item.Sizes[0].Name, nil
	}

	return decimal.Zero, "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("%s comes in multiple sizes, please choose one", item.DisplayName())).
		WithDetails(map[string]any{"available_sizes": item.SizeNames()})
}

func findOptionAnywhere(item *menu.Item, name string) (string, menu.Option, bool) {
	for group, options := range item.Customization {
		for _, option := range options {
			if strings.EqualFold(option.Name, name) {
				return group, option, true
			}
		}
	}
	return "", menu.Option{}, false
}

func (c *Cart) findEquivalent(candidate *Line) *Line {
	for _, line := range c.lines {
		if line.ItemID == candidate.ItemID &&
			strings.EqualFold(line.SelectedSize, candidate.SelectedSize) &&
			equivalentCustomizations(line.Customizations, candidate.Customizations) {
			return line
		}
	}
	return nil
}

func equivalentCustomizations(a, b []Customization) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
outer:
	for _, ca := range a {
		for i, cb := range b {
			if matched[i] {
				continue
			}
			if strings.EqualFold(ca.Group, cb.Group) &&
				strings.EqualFold(ca.Name, cb.Name) &&
				ca.Quantity == cb.Quantity {
				matched[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// FindLine resolves a caller-supplied matcher against the cart: line id
// first, then item id, then case-insensitive name-contains. When several
// lines could match, the most recently added wins.
func (c *Cart) FindLine(matcher string) *Line {
	matcher = strings.TrimSpace(matcher)
	if matcher == "" {
		return nil
	}

	if id, err := uuid.Parse(matcher); err == nil {
		for i := len(c.lines) - 1; i >= 0; i-- {
			if c.lines[i].LineID == id {
				return c.lines[i]
			}
		}
	}

	for i := len(c.lines) - 1; i >= 0; i-- {
		if string(c.lines[i].ItemID) == matcher {
			return c.lines[i]
		}
	}

	needle := strings.ToLower(matcher)
	for i := len(c.lines) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToLower(c.lines[i].DisplayName), needle) {
			return c.lines[i]
		}
	}
	return nil
}

// UpdateQuantity sets a new quantity on the first matching line. A missing
// line is reported as false, not an error. Zero or negative quantities are
// rejected; removal is never a side effect of a quantity update.
func (c *Cart) UpdateQuantity(matcher string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	line := c.FindLine(matcher)
	if line == nil {
		return false, nil
	}
	line.Quantity = quantity
	return true, nil
}

// Remove deletes the first matching line and returns it.
func (c *Cart) Remove(matcher string) (*Line, bool) {
	line := c.FindLine(matcher)
	if line == nil {
		return nil, false
	}
	for i, l := range c.lines {
		if l == line {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
	return line, true
}

// Total sums UnitPrice × Quantity over every line. It is recomputed from the
// lines on every call; customization mutations adjust unit prices in place,
// so a cached total would go stale.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.lines = nil
}
