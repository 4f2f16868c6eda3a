// Package filter computes the visible subset of loaded items. Everything here
// is pure: inputs are never mutated and output order follows input order.
package filter

import (
	"sort"
	"strings"

	"jobboard-listing/internal/common/textutil"
	"jobboard-listing/internal/models"
)

// Predicate decides whether one item is visible.
type Predicate func(item models.ListingItem) bool

// Apply returns the items matching every active filter of f.
func Apply(items []models.ListingItem, f models.FilterState) []models.ListingItem {
	preds := Predicates(f)
	out := make([]models.ListingItem, 0, len(items))
	for _, item := range items {
		if matchAll(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

// Count is len(Apply(items, f)) without building the slice.
func Count(items []models.ListingItem, f models.FilterState) int {
	preds := Predicates(f)
	n := 0
	for _, item := range items {
		if matchAll(item, preds) {
			n++
		}
	}
	return n
}

func matchAll(item models.ListingItem, preds []Predicate) bool {
	for _, p := range preds {
		if !p(item) {
			return false
		}
	}
	return true
}

// Predicates builds one predicate per active filter. Unset filters add none,
// so an empty FilterState yields no predicates and everything passes.
// Extra (server-only) filters are never evaluated locally.
func Predicates(f models.FilterState) []Predicate {
	var preds []Predicate
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		preds = append(preds, Search(q))
	}
	if f.SectorID != 0 {
		id := f.SectorID
		preds = append(preds, func(i models.ListingItem) bool { return i.CategoryID == id })
	}
	if f.JobID != 0 {
		id := f.JobID
		preds = append(preds, func(i models.ListingItem) bool { return i.SubCategoryID == id })
	}
	if f.OrganizationID != 0 {
		id := f.OrganizationID
		preds = append(preds, func(i models.ListingItem) bool { return i.OrganizationID == id })
	}
	if f.City != "" {
		city := f.City
		preds = append(preds, func(i models.ListingItem) bool { return i.Location == city })
	}
	if f.ContractType != "" {
		ct := f.ContractType
		preds = append(preds, func(i models.ListingItem) bool { return i.ContractType == ct })
	}
	if f.Status != models.Any {
		preds = append(preds, Status(f.Status))
	}
	return preds
}

// Search matches when any searchable field contains query, case-insensitively.
func Search(query string) Predicate {
	q := strings.ToLower(query)
	return func(item models.ListingItem) bool {
		for _, field := range searchFields(item) {
			if field != "" && strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
}

// searchFields lists the searchable text in match order. The description is
// compared as plain text.
func searchFields(item models.ListingItem) [7]string {
	return [7]string{
		item.Title,
		textutil.StripHTML(item.Description),
		item.OrganizationName,
		item.CategoryName,
		item.SubCategoryName,
		item.Location,
		item.ContractType,
	}
}

// Status matches the three-state flag. An item without a flag counts as false.
func Status(want models.TriState) Predicate {
	return func(item models.ListingItem) bool {
		flag := item.StatusFlag != nil && *item.StatusFlag
		switch want {
		case models.Yes:
			return flag
		case models.No:
			return !flag
		default:
			return true
		}
	}
}

// Cities returns the distinct non-empty locations, sorted.
func Cities(items []models.ListingItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if item.Location == "" || seen[item.Location] {
			continue
		}
		seen[item.Location] = true
		out = append(out, item.Location)
	}
	sort.Strings(out)
	return out
}

// ContractTypes returns the distinct non-empty contract types, sorted.
func ContractTypes(items []models.ListingItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if item.ContractType == "" || seen[item.ContractType] {
			continue
		}
		seen[item.ContractType] = true
		out = append(out, item.ContractType)
	}
	sort.Strings(out)
	return out
}

// Organizations returns the distinct organizations referenced by items,
// sorted by name. Items missing either the id or the name are skipped.
func Organizations(items []models.ListingItem) []models.Organization {
	seen := make(map[int64]bool)
	var out []models.Organization
	for _, item := range items {
		if item.OrganizationID == 0 || item.OrganizationName == "" || seen[item.OrganizationID] {
			continue
		}
		seen[item.OrganizationID] = true
		out = append(out, models.Organization{ID: item.OrganizationID, Name: item.OrganizationName})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}
