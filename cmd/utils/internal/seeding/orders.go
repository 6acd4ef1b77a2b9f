package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DemoMarker tags demo records so clear-demo can find them again.
const DemoMarker = "demo-seed"

// SeedOrders creates demo orders spread across the status progression so
// the live tracker has something to show. Orders reference real catalog
// items seeded by the storefront service.
func SeedOrders(ctx context.Context, db *mongo.Database) error {
	ordersCollection := db.Collection("orders")
	itemsCollection := db.Collection("menuItems")

	cursor, err := itemsCollection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return fmt.Errorf("cannot fetch menu items: %w", err)
	}
	var menuItems []struct {
		ID    uuid.UUID `bson:"_id"`
		Name  string    `bson:"name"`
		Price float64   `bson:"price"`
	}
	if err := cursor.All(ctx, &menuItems); err != nil {
		return fmt.Errorf("cannot decode menu items: %w", err)
	}
	cursor.Close(ctx)

	if len(menuItems) < 3 {
		return fmt.Errorf("need at least 3 menu items for demo data (found %d), run the storefront with seeding enabled first", len(menuItems))
	}

	now := time.Now()

	scenarios := []struct {
		customerName string
		status       string
		age          time.Duration
		itemIdx      []int
		quantities   []int
	}{
		{"Demo Customer One", "pending", 2 * time.Minute, []int{0, 1}, []int{1, 2}},
		{"Demo Customer Two", "preparing", 10 * time.Minute, []int{1, 2}, []int{2, 1}},
		{"Demo Customer Three", "ready", 25 * time.Minute, []int{0, 2}, []int{1, 1}},
		{"Demo Customer Four", "delivered", 90 * time.Minute, []int{2}, []int{3}},
	}

	for i, sc := range scenarios {
		orderID := uuid.New()
		createdAt := now.Add(-sc.age)

		var items []bson.M
		total := 0.0
		for j, idx := range sc.itemIdx {
			item := menuItems[idx]
			qty := sc.quantities[j]
			items = append(items, bson.M{
				"item_id":  item.ID,
				"name":     item.Name,
				"price":    item.Price,
				"quantity": qty,
			})
			total += item.Price * float64(qty)
		}

		doc := bson.M{
			"_id": orderID,
			"customerInfo": bson.M{
				"name":    sc.customerName,
				"email":   fmt.Sprintf("demo%d@storefront.local", i+1),
				"phone":   "555-0100",
				"address": "1 Demo Street",
			},
			"items":         items,
			"status":        sc.status,
			"total":         total,
			"paymentMethod": "cash",
			"createdAt":     createdAt,
			"updatedAt":     createdAt,
			"created_by":    DemoMarker,
		}

		_, err := ordersCollection.UpdateOne(ctx,
			bson.M{"customerInfo.name": sc.customerName, "created_by": DemoMarker},
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo order for %q: %w", sc.customerName, err)
		}
	}

	return nil
}
