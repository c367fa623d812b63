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

type firestoreDisputeRepository struct {
	client *firestore.Client
}

func NewFirestoreDisputeRepository(client *firestore.Client) repository.DisputeRepository {
	return &firestoreDisputeRepository{
		client: client,
	}
}

// CreateWithFreeze writes the dispute and the rental's freeze flag in one
// Firestore transaction. The dispute is never recorded without its freeze
// side effect when the rental sits in the payout hold.
func (r *firestoreDisputeRepository) CreateWithFreeze(ctx context.Context, dispute *entity.Dispute) (bool, error) {
	if dispute.ID == "" {
		dispute.ID = uuid.New().String()
	}

	now := time.Now()
	dispute.CreatedAt = now
	dispute.UpdatedAt = now

	frozen := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		frozen = false

		rentalRef := r.client.Collection("rentals").Doc(dispute.RentalID)
		rentalDoc, err := tx.Get(rentalRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Rental", err)
			}
			return errors.Internal("Failed to get rental", err)
		}

		var rental entity.Rental
		if err := rentalDoc.DataTo(&rental); err != nil {
			return errors.Internal("Failed to parse rental data", err)
		}

		disputeRef := r.client.Collection("disputes").Doc(dispute.ID)

		if rental.Status == entity.RentalCompletedPendingPayout && !rental.PayoutFrozen {
			rental.PayoutFrozen = true
			rental.UpdatedAt = now
			if err := tx.Set(rentalRef, &rental); err != nil {
				return err
			}
			frozen = true
		}

		return tx.Set(disputeRef, dispute)
	})
	if err != nil {
		return false, err
	}

	return frozen, nil
}

func (r *firestoreDisputeRepository) GetByID(ctx context.Context, id string) (*entity.Dispute, error) {
	doc, err := r.client.Collection("disputes").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Dispute", err)
		}
		return nil, errors.Internal("Failed to get dispute", err)
	}

	var dispute entity.Dispute
	if err := doc.DataTo(&dispute); err != nil {
		return nil, errors.Internal("Failed to parse dispute data", err)
	}

	return &dispute, nil
}

func (r *firestoreDisputeRepository) UpdateTx(ctx context.Context, id string, fn func(*entity.Dispute) error) (*entity.Dispute, error) {
	var updated entity.Dispute

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := r.client.Collection("disputes").Doc(id)
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Dispute", err)
			}
			return errors.Internal("Failed to get dispute", err)
		}

		var dispute entity.Dispute
		if err := doc.DataTo(&dispute); err != nil {
			return errors.Internal("Failed to parse dispute data", err)
		}

		if err := fn(&dispute); err != nil {
			return err
		}

		dispute.UpdatedAt = time.Now()
		updated = dispute
		return tx.Set(docRef, &dispute)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *firestoreDisputeRepository) ListByRentalID(ctx context.Context, rentalID string) ([]*entity.Dispute, error) {
	query := r.client.Collection("disputes").
		Where("rentalId", "==", rentalID).
		OrderBy("createdAt", firestore.Asc)

	return r.collect(ctx, query)
}

func (r *firestoreDisputeRepository) ListByUserID(ctx context.Context, userID string, disputeStatus entity.DisputeStatus, limit, offset int) ([]*entity.Dispute, int64, error) {
	// A user can appear on either side. Two queries, merged.
	var all []*entity.Dispute
	for _, field := range []string{"reporterId", "accusedId"} {
		query := r.client.Collection("disputes").Where(field, "==", userID)
		if disputeStatus != "" {
			query = query.Where("status", "==", string(disputeStatus))
		}
		query = query.OrderBy("createdAt", firestore.Desc)

		disputes, err := r.collect(ctx, query)
		if err != nil {
			return nil, 0, err
		}
		all = append(all, disputes...)
	}

	total := int64(len(all))

	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all, total, nil
}

func (r *firestoreDisputeRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Dispute, error) {
	iter := query.Documents(ctx)
	var disputes []*entity.Dispute

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate disputes", err)
		}

		var dispute entity.Dispute
		if err := doc.DataTo(&dispute); err != nil {
			return nil, errors.Internal("Failed to parse dispute data", err)
		}
		disputes = append(disputes, &dispute)
	}

	return disputes, nil
}
