package menu

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemID is an opaque catalog identifier. The upstream feed is inconsistent
// about whether ids are JSON strings or numbers, so both decode into the
// canonical string form.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) String() string {
	return string(id)
}

// Option is a single customization choice with its own price.
type Option struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Size is a named price point for items sold in multiple sizes.
type Size struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Item is a read-only catalog record sourced from the upstream menu feed.
// When Sizes is non-empty, BasePrice is ignored and a size must be chosen.
type Item struct {
	ID            ItemID              `json:"id"`
	Name          string              `json:"name"`
	ShortName     string              `json:"short_name,omitempty"`
	Description   string              `json:"description,omitempty"`
	Category      string              `json:"category"`
	BasePrice     decimal.Decimal     `json:"price"`
	Sizes         []Size              `json:"sizes,omitempty"`
	Customization map[string][]Option `json:"customization,omitempty"`
}

// DisplayName prefers the short name for speech and chat output.
func (it *Item) DisplayName() string {
	if it == nil {
		return ""
	}
	if it.ShortName != "" {
		return it.ShortName
	}
	return it.Name
}

// SizeByName resolves a size by case-insensitive name.
func (it *Item) SizeByName(name string) (Size, bool) {
	for _, s := range it.Sizes {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Size{}, false
}

// SizeNames lists the selectable size names in catalog order.
func (it *Item) SizeNames() []string {
	names := make([]string, 0, len(it.Sizes))
	for _, s := range it.Sizes {
		names = append(names, s.Name)
	}
	return names
}

// Group resolves a customization group by case-insensitive name, returning
// the canonical group name from the catalog.
func (it *Item) Group(name string) (string, []Option, bool) {
	for group, options := range it.Customization {
		if strings.EqualFold(group, name) {
			return group, options, true
		}
	}
	return "", nil, false
}

// HasCustomizations reports whether any group offers at least one option.
func (it *Item) HasCustomizations() bool {
	for _, options := range it.Customization {
		if len(options) > 0 {
			return true
		}
	}
	return false
}

// RequiredGroups lists the single-select groups that must end up with exactly
// one selection before the item is considered fully customized.
func (it *Item) RequiredGroups() []string {
	var groups []string
	for group, options := range it.Customization {
		if len(options) > 0 && SingleSelect(group) {
			groups = append(groups, group)
		}
	}
	return groups
}

// SingleSelect reports whether a group carries at-most-one semantics.
// "Sauce" groups take exactly one choice; everything else (toppings and the
// like) accumulates.
func SingleSelect(group string) bool {
	return strings.EqualFold(strings.TrimSpace(group), "sauce")
}
