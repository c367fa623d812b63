package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"renterra/internal/domain/entity"
	"renterra/internal/domain/repository"
	"renterra/pkg/errors"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.client.Collection("items").Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.Internal("Failed to create item", err)
	}

	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection("items").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.Internal("Failed to get item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}

	if item.DeletedAt != nil {
		return nil, errors.NotFound("Item", nil)
	}

	return &item, nil
}

func (r *firestoreItemRepository) Update(ctx context.Context, item *entity.Item) error {
	item.UpdatedAt = time.Now()

	_, err := r.client.Collection("items").Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.Internal("Failed to update item", err)
	}

	return nil
}

func (r *firestoreItemRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.client.Collection("items").Doc(id).Update(ctx, []firestore.Update{
		{Path: "deletedAt", Value: now},
		{Path: "status", Value: "unlisted"},
		{Path: "updatedAt", Value: now},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Item", err)
		}
		return errors.Internal("Failed to delete item", err)
	}

	return nil
}

func (r *firestoreItemRepository) ListByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.client.Collection("items").
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count items", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var items []*entity.Item

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate items", err)
		}

		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, 0, errors.Internal("Failed to parse item data", err)
		}
		if item.DeletedAt != nil {
			continue
		}
		items = append(items, &item)
	}

	return items, total, nil
}
