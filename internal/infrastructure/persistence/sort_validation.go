package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted "field DIR" clause
func orderClause(field, dir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(field, allowed, defaultField) + " " + ValidateSortOrder(dir)
}

// TicketSortFields contains allowed sort fields for tickets
var TicketSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"ticket_number":     true,
	"location_name":     true,
	"account_name":      true,
	"total_amount":      true,
	"remaining_amount":  true,
	"last_order_date":   true,
	"last_payment_date": true,
}

// MenuItemSortFields contains allowed sort fields for menu items
var MenuItemSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"group_code": true,
}
