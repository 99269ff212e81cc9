package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlanRepository handles database operations for one plan collection
// (workoutPlans or dietPlans).
type PlanRepository struct {
	kind       models.PlanKind
	collection *mongo.Collection
}

// NewPlanRepository creates a repository bound to the collection for kind.
func NewPlanRepository(db *mongo.Database, kind models.PlanKind) *PlanRepository {
	return &PlanRepository{
		kind:       kind,
		collection: db.Collection(kind.Collection()),
	}
}

// FetchAll returns every plan in the collection, most recent first.
func (r *PlanRepository) FetchAll(ctx context.Context) ([]models.Plan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("kind", r.kind).Error("Failed to fetch plans")
		return nil, fmt.Errorf("failed to fetch plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []models.Plan
	for cursor.Next(ctx) {
		var plan models.Plan
		if err := cursor.Decode(&plan); err != nil {
			logger.Log.WithError(err).Error("Failed to decode plan")
			return nil, fmt.Errorf("failed to decode plan: %w", err)
		}
		plans = append(plans, plan)
	}

	logger.Log.WithFields(map[string]interface{}{
		"kind":  r.kind,
		"count": len(plans),
	}).Info("Plans fetched successfully")
	return plans, nil
}

// Insert persists a plan whose id has already been assigned by the store.
func (r *PlanRepository) Insert(ctx context.Context, plan *models.Plan) error {
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		logger.Log.WithError(err).WithField("plan_id", plan.ID).Error("Failed to insert plan")
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	logger.Log.WithField("plan_id", plan.ID).Info("Plan created successfully")
	return nil
}

// Merge overwrites only the named fields on the matching record, leaving the
// rest untouched.
func (r *PlanRepository) Merge(ctx context.Context, id string, fields map[string]interface{}) error {
	update := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		update[k] = v
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logger.Log.WithError(err).WithField("plan_id", id).Error("Failed to update plan")
		return fmt.Errorf("failed to update plan: %w", err)
	}

	logger.Log.WithField("plan_id", id).Info("Plan updated successfully")
	return nil
}

// Remove deletes a plan by id. Deleting an absent id is not an error.
func (r *PlanRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		logger.Log.WithError(err).WithField("plan_id", id).Error("Failed to delete plan")
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	logger.Log.WithField("plan_id", id).Info("Plan deleted successfully")
	return nil
}
