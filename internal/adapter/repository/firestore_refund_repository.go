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

type firestoreRefundRepository struct {
	client *firestore.Client
}

func NewFirestoreRefundRepository(client *firestore.Client) repository.RefundRepository {
	return &firestoreRefundRepository{
		client: client,
	}
}

func (r *firestoreRefundRepository) Create(ctx context.Context, refund *entity.Refund) error {
	if refund.ID == "" {
		refund.ID = uuid.New().String()
	}

	now := time.Now()
	refund.CreatedAt = now
	refund.UpdatedAt = now

	_, err := r.client.Collection("refunds").Doc(refund.ID).Set(ctx, refund)
	if err != nil {
		return errors.Internal("Failed to create refund", err)
	}

	return nil
}

func (r *firestoreRefundRepository) GetByID(ctx context.Context, id string) (*entity.Refund, error) {
	doc, err := r.client.Collection("refunds").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Refund", err)
		}
		return nil, errors.Internal("Failed to get refund", err)
	}

	var refund entity.Refund
	if err := doc.DataTo(&refund); err != nil {
		return nil, errors.Internal("Failed to parse refund data", err)
	}

	return &refund, nil
}

// Update refuses to touch a refund that already completed.
func (r *firestoreRefundRepository) Update(ctx context.Context, refund *entity.Refund) error {
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := r.client.Collection("refunds").Doc(refund.ID)
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Refund", err)
			}
			return errors.Internal("Failed to get refund", err)
		}

		var existing entity.Refund
		if err := doc.DataTo(&existing); err != nil {
			return errors.Internal("Failed to parse refund data", err)
		}

		if existing.Status == entity.RefundCompleted {
			return errors.Conflict("Refund is completed and immutable")
		}

		refund.UpdatedAt = time.Now()
		return tx.Set(docRef, refund)
	})
}

func (r *firestoreRefundRepository) ListByRentalID(ctx context.Context, rentalID string) ([]*entity.Refund, error) {
	query := r.client.Collection("refunds").
		Where("rentalId", "==", rentalID).
		OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	var refunds []*entity.Refund

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate refunds", err)
		}

		var refund entity.Refund
		if err := doc.DataTo(&refund); err != nil {
			return nil, errors.Internal("Failed to parse refund data", err)
		}
		refunds = append(refunds, &refund)
	}

	return refunds, nil
}
