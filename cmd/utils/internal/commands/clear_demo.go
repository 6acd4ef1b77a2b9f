package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/storefront/cmd/utils/internal/seeding"
	"go.mongodb.org/mongo-driver/bson"
)

// ClearDemo removes all demo orders from the storefront database
func ClearDemo(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Starting demo data cleanup...")

	client, db, err := connect(ctx, config)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx)

	logger.Info("Connected to MongoDB")

	ordersCollection := db.Collection("orders")
	result, err := ordersCollection.DeleteMany(ctx, bson.M{"created_by": seeding.DemoMarker})
	if err != nil {
		return fmt.Errorf("delete demo orders: %w", err)
	}
	logger.Info("Deleted demo orders", "count", result.DeletedCount)

	seedsCollection := db.Collection("_seeds")
	if _, err := seedsCollection.DeleteOne(ctx, bson.M{"_id": demoSeedID}); err != nil {
		return fmt.Errorf("delete seed marker: %w", err)
	}

	return nil
}
