package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds returns all seeds for the storefront catalog
func Seeds(db *mongo.Database) []seed.Seed {
	return []seed.Seed{
		{
			ID:          "2026-08-20_storefront_menu_items",
			Description: "Seed a representative storefront menu",
			Run: func(ctx context.Context) error {
				return seedMenuItems(ctx, db)
			},
		},
	}
}

func seedMenuItems(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("menuItems")
	now := time.Now()

	items := []struct {
		name        string
		description string
		price       float64
		imageURL    string
		category    string
	}{
		{"Classic Cheeseburger", "Beef patty, cheddar, lettuce, tomato and house sauce", 9.90, "/images/classic-cheeseburger.jpg", "Burgers"},
		{"Margherita Pizza", "Tomato, mozzarella and fresh basil", 11.50, "/images/margherita.jpg", "Pizza"},
		{"Caesar Salad", "Romaine, parmesan, croutons and caesar dressing", 7.80, "/images/caesar-salad.jpg", "Salads"},
		{"Grilled Salmon", "Salmon fillet with lemon butter and seasonal greens", 15.40, "/images/grilled-salmon.jpg", "Seafood"},
		{"Chicken Tacos", "Three corn tortillas with grilled chicken and salsa", 8.90, "/images/chicken-tacos.jpg", "Mexican"},
		{"Chocolate Brownie", "Warm brownie with vanilla ice cream", 5.50, "/images/brownie.jpg", "Desserts"},
		{"Spaghetti Carbonara", "Guanciale, egg yolk and pecorino", 12.20, "/images/carbonara.jpg", "Pasta"},
		{"Smoked Ribs", "Half rack with barbecue glaze and coleslaw", 16.90, "/images/smoked-ribs.jpg", "BBQ"},
	}

	for _, it := range items {
		_, err := collection.UpdateOne(ctx,
			bson.M{"name": it.name},
			bson.M{"$setOnInsert": bson.M{
				"_id":         uuid.New(),
				"name":        it.name,
				"description": it.description,
				"price":       it.price,
				"imageUrl":    it.imageURL,
				"category":    it.category,
				"active":      true,
				"created_at":  now,
				"updated_at":  now,
			}},
			options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("seed menu item %q: %w", it.name, err)
		}
	}

	return nil
}

// SeedingFunc returns a function for running seeds during service startup
func SeedingFunc(appName string, dbFn func() *mongo.Database, logger apt.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger.Info("Applying storefront catalog seeds...")
		db := dbFn()
		tracker := seed.NewMongoTracker(db)
		seeds := Seeds(db)
		if err := seed.Apply(ctx, tracker, seeds, appName); err != nil {
			return fmt.Errorf("apply seeds: %w", err)
		}
		logger.Info("Storefront catalog seeds applied successfully")
		return nil
	}
}
