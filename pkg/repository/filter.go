package repository

import (
	"strings"

	"github.com/example/storefront/pkg/models"
)

// ProductFilter is conjunctive across fields and disjunctive within a list.
// Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID   *int64
	Conditions   []models.Condition
	Marketplaces []models.Marketplace
	MinPrice     *float64
	MaxPrice     *float64
	Brands       []string
	Search       string
}

func (f ProductFilter) Matches(p models.Product) bool {
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if len(f.Conditions) > 0 && !contains(f.Conditions, p.Condition) {
		return false
	}
	if len(f.Marketplaces) > 0 && (p.Marketplace == nil || !contains(f.Marketplaces, *p.Marketplace)) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.Brand), term) {
			return false
		}
	}
	return true
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func toStrings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
