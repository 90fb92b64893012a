package cart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jimmynenos/ordering-backend/internal/menu"
)

// Summary renders the cart as customer-facing text, one numbered line per
// entry with its customizations and subtotal.
func (c *Cart) Summary() string {
	if c.Empty() {
		return "Your cart is empty. What would you like to order?"
	}

	var b strings.Builder
	b.WriteString("Here's your current order:\n")
	for i, line := range c.lines {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, line.Describe()))
		b.WriteString(fmt.Sprintf(" - $%s\n", line.Subtotal().StringFixed(2)))
	}
	b.WriteString(fmt.Sprintf("\nTotal: $%s", c.Total().StringFixed(2)))
	return b.String()
}

// Describe renders one line the way it reads in a summary: quantity prefix
// when above one, then the customization list.
func (l *Line) Describe() string {
	name := l.DisplayName
	if l.Quantity > 1 {
		name = fmt.Sprintf("%dx %s", l.Quantity, name)
	}
	if len(l.Customizations) == 0 {
		return name
	}

	parts := make([]string, 0, len(l.Customizations))
	for _, custom := range l.Customizations {
		if custom.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", custom.Name, custom.Quantity))
		} else {
			parts = append(parts, custom.Name)
		}
	}
	return fmt.Sprintf("%s with %s", name, strings.Join(parts, ", "))
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func groupNames(item *menu.Item) []string {
	names := make([]string, 0, len(item.Customization))
	for group := range item.Customization {
		names = append(names, group)
	}
	sort.Strings(names)
	return names
}

func optionNames(options []menu.Option) []string {
	names := make([]string, 0, len(options))
	for _, option := range options {
		names = append(names, option.Name)
	}
	return names
}
