package repository

import (
	"context"
	"fmt"

	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/fitdeed/fitdeed-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CategoryRepository reads the category collections. Categories are
// read-mostly and never mutated by this service.
type CategoryRepository struct {
	db *mongo.Database
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// FetchAll returns all categories for the given plan kind.
func (r *CategoryRepository) FetchAll(ctx context.Context, kind models.PlanKind) ([]models.Category, error) {
	cursor, err := r.db.Collection(kind.CategoryCollection()).Find(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).WithField("kind", kind).Error("Failed to fetch categories")
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	for cursor.Next(ctx) {
		var category models.Category
		if err := cursor.Decode(&category); err != nil {
			return nil, fmt.Errorf("failed to decode category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, nil
}
