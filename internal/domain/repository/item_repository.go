package repository

import (
	"context"

	"renterra/internal/domain/entity"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	SoftDelete(ctx context.Context, id string) error
	ListByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Item, int64, error)
}
