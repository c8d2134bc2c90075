package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/markdave123-py/Retriva/internal/core"
	"github.com/markdave123-py/Retriva/internal/models"
)

type CollectionService struct {
	db core.DbClient
}

func NewCollectionService(db core.DbClient) *CollectionService {
	return &CollectionService{db: db}
}

func (s *CollectionService) Create(ctx context.Context, userID, productID, name, description string) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Msg: "collection name is required"}
	}

	col := &models.Collection{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   productID,
		Name:        name,
		Description: description,
		Status:      models.StatusPending,
	}
	if err := s.db.CreateCollection(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

func (s *CollectionService) Get(ctx context.Context, id string) (*models.Collection, error) {
	return s.db.GetCollectionByID(ctx, id)
}

func (s *CollectionService) ListByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	return s.db.ListCollectionsByUser(ctx, userID)
}
