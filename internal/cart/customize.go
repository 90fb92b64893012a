package cart

import (
	"fmt"
	"strings"

	"github.com/jimmynenos/ordering-backend/internal/menu"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
)

// AddCustomization applies an option to a cart line. The target line is
// resolved from the matcher when one is given; otherwise the most recently
// added line whose menu item actually offers the group is used, falling back
// to the last line in the cart.
//
// Single-select groups replace any existing selection in the group; others
// merge by quantity when the same option is already applied.
func (c *Cart) AddCustomization(resolver ItemResolver, matcher, groupName, optionName string, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}
	if c.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "there is nothing in the cart to customize")
	}

	line := c.FindLine(matcher)
	if line == nil {
		line = c.lineOfferingGroup(resolver, groupName)
	}
	if line == nil {
		line = c.lines[len(c.lines)-1]
	}

	item := resolver.ItemByID(line.ItemID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("%s is no longer on the menu", line.DisplayName))
	}

	canonicalGroup, options, ok := item.Group(groupName)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s has no %s options", item.DisplayName(), groupName)).
			WithDetails(map[string]any{"available_groups": groupNames(item)})
	}

	var selected *Customization
	for _, option := range options {
		if strings.EqualFold(option.Name, optionName) {
			selected = &Customization{
				Group:    canonicalGroup,
				Name:     option.Name,
				Price:    option.Price,
				Quantity: quantity,
			}
			break
		}
	}
	if selected == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%q is not a valid %s option for %s", optionName, canonicalGroup, item.DisplayName())).
			WithDetails(map[string]any{"valid_options": optionNames(options)})
	}

	if menu.SingleSelect(canonicalGroup) {
		c.replaceInGroup(line, canonicalGroup, *selected)
		return line, nil
	}

	for i := range line.Customizations {
		existing := &line.Customizations[i]
		if strings.EqualFold(existing.Group, canonicalGroup) && strings.EqualFold(existing.Name, selected.Name) {
			existing.Quantity += quantity
			line.UnitPrice = line.UnitPrice.Add(selected.Price.Mul(decimalFromInt(quantity)))
			return line, nil
		}
	}

	line.Customizations = append(line.Customizations, *selected)
	line.UnitPrice = line.UnitPrice.Add(selected.Price.Mul(decimalFromInt(quantity)))
	return line, nil
}

// replaceInGroup strips every selection in the group, then applies the new
// one. UnitPrice absorbs both the removals and the addition.
func (c *Cart) replaceInGroup(line *Line, group string, replacement Customization) {
	kept := line.Customizations[:0]
	for _, existing := range line.Customizations {
		if strings.EqualFold(existing.Group, group) {
			line.UnitPrice = line.UnitPrice.Sub(existing.Price.Mul(decimalFromInt(existing.Quantity)))
			continue
		}
		kept = append(kept, existing)
	}
	line.Customizations = append(kept, replacement)
	line.UnitPrice = line.UnitPrice.Add(replacement.Price.Mul(decimalFromInt(replacement.Quantity)))
}

// RemoveCustomization removes an applied option by name from a line. With no
// matcher it targets the most recent line carrying the option.
func (c *Cart) RemoveCustomization(matcher, optionName string) (*Line, bool) {
	line := c.FindLine(matcher)
	if line != nil {
		if c.stripCustomization(line, optionName) {
			return line, true
		}
		return nil, false
	}

	for i := len(c.lines) - 1; i >= 0; i-- {
		if c.stripCustomization(c.lines[i], optionName) {
			return c.lines[i], true
		}
	}
	return nil, false
}

func (c *Cart) stripCustomization(line *Line, optionName string) bool {
	needle := strings.ToLower(strings.TrimSpace(optionName))
	if needle == "" {
		return false
	}
	for i, existing := range line.Customizations {
		if strings.Contains(strings.ToLower(existing.Name), needle) {
			line.UnitPrice = line.UnitPrice.Sub(existing.Price.Mul(decimalFromInt(existing.Quantity)))
			line.Customizations = append(line.Customizations[:i], line.Customizations[i+1:]...)
			return true
		}
	}
	return false
}

// lineOfferingGroup scans newest-first for a line whose catalog item offers
// the named group.
func (c *Cart) lineOfferingGroup(resolver ItemResolver, groupName string) *Line {
	for i := len(c.lines) - 1; i >= 0; i-- {
		item := resolver.ItemByID(c.lines[i].ItemID)
		if item == nil {
			continue
		}
		if _, _, ok := item.Group(groupName); ok {
			return c.lines[i]
		}
	}
	return nil
}

// NeedsCustomization reports whether the line still has a single-select
// group with no selection, per its catalog item.
func NeedsCustomization(resolver ItemResolver, line *Line) bool {
	item := resolver.ItemByID(line.ItemID)
	if item == nil {
		return false
	}
	for _, group := range item.RequiredGroups() {
		found := false
		for _, existing := range line.Customizations {
			if strings.EqualFold(existing.Group, group) {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

// PendingLines lists lines with an unmet single-select group, in cart order.
func (c *Cart) PendingLines(resolver ItemResolver) []*Line {
	var pending []*Line
	for _, line := range c.lines {
		if NeedsCustomization(resolver, line) {
			pending = append(pending, line)
		}
	}
	return pending
}
