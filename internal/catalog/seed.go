package catalog

import (
	"context"
	"fmt"

	"campus_delivery/internal/models"
)

// DemoRestaurants is the starter set loaded by `campusctl seed`.
func DemoRestaurants() []models.Restaurant {
	return []models.Restaurant{
		{
			Name:        "Arthouse Kitchen Café",
			Location:    "Corner of Oxford Street & Greens Road",
			Description: "Brunch, coffee and pastries.",
			Menu: []models.MenuItem{
				{Name: "Smashed Avo", Description: "Sourdough, feta, poached egg", Price: 16.5},
				{Name: "Flat White", Description: "Double shot", Price: 4.8},
			},
		},
		{
			Name:        "Classic Kebab",
			Location:    "Mathews Food Court (F23)",
			Description: "Kebabs, snack packs and falafel.",
			Menu: []models.MenuItem{
				{Name: "Chicken Kebab", Description: "Garlic sauce, salad", Price: 13},
				{Name: "Snack Pack", Description: "Mixed meat, chips, three sauces", Price: 17},
			},
		},
		{
			Name:        "Guzman Y Gomez",
			Location:    "University Terraces (B8)",
			Description: "Mexican street food.",
			Menu: []models.MenuItem{
				{Name: "Burrito Bowl", Description: "Rice, beans, salsa", Price: 16},
				{Name: "Nachos", Description: "Cheese, guac, jalapeños", Price: 10},
			},
		},
		{
			Name:        "Laksa Delight",
			Location:    "Mathews Food Court (E24a)",
			Description: "Malaysian noodle soups.",
			Menu: []models.MenuItem{
				{Name: "Chicken Laksa", Description: "Coconut curry broth", Price: 14.5},
				{Name: "Curry Puff", Description: "Potato and chicken", Price: 3.5},
			},
		},
	}
}

// Seed inserts restaurants that are not present yet, matched by name.
// It reports how many were inserted.
func (c *Catalog) Seed(ctx context.Context, restaurants []models.Restaurant) (int, error) {
	const op = "catalog.Seed"

	inserted := 0

	for i := range restaurants {
		var count int64

		err := c.db.WithContext(ctx).
			Model(&models.Restaurant{}).
			Where("name = ?", restaurants[i].Name).
			Count(&count).Error
		if err != nil {
			return inserted, fmt.Errorf("%s: %w", op, err)
		}
		if count > 0 {
			continue
		}

		if err := c.CreateRestaurant(ctx, &restaurants[i]); err != nil {
			return inserted, fmt.Errorf("%s: %w", op, err)
		}
		inserted++
	}

	return inserted, nil
}
