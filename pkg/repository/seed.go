package repository

import (
	"context"
	"fmt"

	"github.com/example/storefront/pkg/models"
)

func icon(s string) *string { return &s }

var defaultCategories = []models.Category{
	{Name: "Laptops", Slug: "laptops", Icon: icon("fas fa-laptop")},
	{Name: "Smartphones", Slug: "smartphones", Icon: icon("fas fa-mobile-alt")},
	{Name: "Tablets", Slug: "tablets", Icon: icon("fas fa-tablet-alt")},
	{Name: "Headphones", Slug: "headphones", Icon: icon("fas fa-headphones")},
	{Name: "TVs", Slug: "tvs", Icon: icon("fas fa-tv")},
	{Name: "Gaming", Slug: "gaming", Icon: icon("fas fa-gamepad")},
}

// Seed creates the default categories when the store has none.
func Seed(ctx context.Context, store Store) error {
	return store.Transact(ctx, func(tx Store) error {
		existing, err := tx.Categories().List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}
		for _, c := range defaultCategories {
			c := c
			if err := tx.Categories().Create(ctx, &c); err != nil {
				return fmt.Errorf("failed to seed category %s: %w", c.Slug, err)
			}
		}
		return nil
	})
}
