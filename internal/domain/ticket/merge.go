package ticket

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mergeNewLines collapses lines added since the last submit into the
// minimal set of distinct lines. It returns the surviving lines; every input
// line missing from the result was absorbed by a merge target whose quantity
// has already been increased.
//
// Lines with a quantity other than one are never merged, and neither is any
// unit line sharing a menu item with them. Unit lines with properties stay
// distinct. The remaining unit lines merge into an earlier line with the same
// menu item, portion and gift flag.
func mergeNewLines(newLines []*LineItem) []*LineItem {
	one := decimal.NewFromInt(1)

	merged := make([]*LineItem, 0, len(newLines))
	pinned := make(map[uuid.UUID]bool)
	for _, l := range newLines {
		if !l.Quantity.Equal(one) {
			merged = append(merged, l)
			pinned[l.MenuItemID] = true
		}
	}
	for _, l := range newLines {
		if l.Quantity.Equal(one) && pinned[l.MenuItemID] {
			merged = append(merged, l)
		}
	}

	for _, l := range newLines {
		if !l.Quantity.Equal(one) || pinned[l.MenuItemID] {
			continue
		}
		if l.HasProperties() {
			merged = append(merged, l)
			continue
		}
		if target := findMergeTarget(merged, l); target != nil {
			target.Quantity = target.Quantity.Add(l.Quantity)
			continue
		}
		merged = append(merged, l)
	}
	return merged
}

func findMergeTarget(merged []*LineItem, l *LineItem) *LineItem {
	for _, m := range merged {
		if !m.HasProperties() &&
			m.MenuItemID == l.MenuItemID &&
			m.PortionName == l.PortionName &&
			m.Gifted == l.Gifted {
			return m
		}
	}
	return nil
}

// MergePrintLines groups property-less lines that print identically into
// one line with the summed quantity. Lines with properties pass through.
// The result is a new slice of copies ordered by creation time; the input is
// not modified.
func MergePrintLines(lines []*LineItem) []*LineItem {
	type key struct {
		menuItemID    uuid.UUID
		name          string
		voided        bool
		gifted        bool
		price         string
		taxAmount     string
		taxTemplateID uuid.UUID
		portion       string
		portionCount  int
		reasonID      int
	}

	result := make([]*LineItem, 0, len(lines))
	groups := make(map[key]*LineItem)
	for _, l := range lines {
		if l.HasProperties() {
			c := *l
			result = append(result, &c)
			continue
		}
		k := key{
			menuItemID:    l.MenuItemID,
			name:          l.MenuItemName,
			voided:        l.Voided,
			gifted:        l.Gifted,
			price:         l.Price.String(),
			taxAmount:     l.TaxAmount.String(),
			taxTemplateID: l.TaxTemplateID,
			portion:       l.PortionName,
			portionCount:  l.PortionCount,
			reasonID:      l.ReasonID,
		}
		if g, ok := groups[k]; ok {
			g.Quantity = g.Quantity.Add(l.Quantity)
			g.CreatedAt = l.CreatedAt
			g.OrderNumber = l.OrderNumber
			continue
		}
		c := *l
		c.Properties = nil
		groups[k] = &c
		result = append(result, &c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}
