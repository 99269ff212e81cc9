package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// favoriteDoc is the per-user favorites document. One document per user id,
// one id array per plan kind.
type favoriteDoc struct {
	UserID     string    `bson:"_id"`
	WorkoutIDs []string  `bson:"workout_ids"`
	DietIDs    []string  `bson:"diet_ids"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// FavoriteRepository handles database operations for per-user favorite sets.
type FavoriteRepository struct {
	collection *mongo.Collection
}

// NewFavoriteRepository creates a new instance of FavoriteRepository.
func NewFavoriteRepository(db *mongo.Database) *FavoriteRepository {
	return &FavoriteRepository{
		collection: db.Collection("favorites"),
	}
}

func fieldForKind(kind models.PlanKind) string {
	if kind == models.KindDiet {
		return "diet_ids"
	}
	return "workout_ids"
}

// Fetch returns the favorite plan ids of one user for one kind. A user with
// no favorites document yet gets an empty set, not an error.
func (r *FavoriteRepository) Fetch(ctx context.Context, userID string, kind models.PlanKind) ([]string, error) {
	var doc favoriteDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to fetch favorites")
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}

	if kind == models.KindDiet {
		return doc.DietIDs, nil
	}
	return doc.WorkoutIDs, nil
}

// Save replaces the favorite id array for one kind, preserving the other
// kind's array (merge semantics, upsert for first-time writers).
func (r *FavoriteRepository) Save(ctx context.Context, userID string, kind models.PlanKind, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	update := bson.M{"$set": bson.M{
		fieldForKind(kind): ids,
		"updated_at":       time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"user_id": userID,
			"kind":    kind,
		}).Error("Failed to save favorites")
		return fmt.Errorf("failed to save favorites: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID,
		"kind":    kind,
		"count":   len(ids),
	}).Info("Favorites saved successfully")
	return nil
}
