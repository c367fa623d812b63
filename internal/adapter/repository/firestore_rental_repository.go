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

type firestoreRentalRepository struct {
	client *firestore.Client
}

func NewFirestoreRentalRepository(client *firestore.Client) repository.RentalRepository {
	return &firestoreRentalRepository{
		client: client,
	}
}

func (r *firestoreRentalRepository) Create(ctx context.Context, rental *entity.Rental) error {
	if rental.ID == "" {
		rental.ID = uuid.New().String()
	}

	now := time.Now()
	rental.CreatedAt = now
	rental.UpdatedAt = now

	_, err := r.client.Collection("rentals").Doc(rental.ID).Set(ctx, rental)
	if err != nil {
		return errors.Internal("Failed to create rental", err)
	}

	return nil
}

func (r *firestoreRentalRepository) GetByID(ctx context.Context, id string) (*entity.Rental, error) {
	doc, err := r.client.Collection("rentals").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Rental", err)
		}
		return nil, errors.Internal("Failed to get rental", err)
	}

	var rental entity.Rental
	if err := doc.DataTo(&rental); err != nil {
		return nil, errors.Internal("Failed to parse rental data", err)
	}

	return &rental, nil
}

// UpdateTx re-reads the document inside a Firestore transaction, lets fn
// verify and mutate it, and commits the write. Concurrent updates to the
// same document abort and retry, so two callers cannot both transition out
// of the same source state.
func (r *firestoreRentalRepository) UpdateTx(ctx context.Context, id string, fn func(*entity.Rental) error) (*entity.Rental, error) {
	var updated entity.Rental

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := r.client.Collection("rentals").Doc(id)
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Rental", err)
			}
			return errors.Internal("Failed to get rental", err)
		}

		var rental entity.Rental
		if err := doc.DataTo(&rental); err != nil {
			return errors.Internal("Failed to parse rental data", err)
		}

		if err := fn(&rental); err != nil {
			return err
		}

		rental.UpdatedAt = time.Now()
		updated = rental
		return tx.Set(docRef, &rental)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *firestoreRentalRepository) ListByUserID(ctx context.Context, userID, role string, rentalStatus entity.RentalStatus, limit, offset int) ([]*entity.Rental, int64, error) {
	var field string
	if role == "owner" {
		field = "ownerId"
	} else if role == "renter" {
		field = "renterId"
	} else {
		return nil, 0, errors.BadRequest("Invalid role", nil)
	}

	query := r.client.Collection("rentals").Where(field, "==", userID)
	if rentalStatus != "" {
		query = query.Where("status", "==", string(rentalStatus))
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count rentals", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var rentals []*entity.Rental

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate rentals", err)
		}

		var rental entity.Rental
		if err := doc.DataTo(&rental); err != nil {
			return nil, 0, errors.Internal("Failed to parse rental data", err)
		}
		rentals = append(rentals, &rental)
	}

	return rentals, total, nil
}

func (r *firestoreRentalRepository) ListPayoutCandidates(ctx context.Context, before time.Time, limit int) ([]*entity.Rental, error) {
	query := r.client.Collection("rentals").
		Where("status", "==", string(entity.RentalCompletedPendingPayout)).
		Where("payoutFrozen", "==", false).
		Where("payoutEligibleAt", "<=", before).
		OrderBy("payoutEligibleAt", firestore.Asc)

	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var rentals []*entity.Rental

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate payout candidates", err)
		}

		var rental entity.Rental
		if err := doc.DataTo(&rental); err != nil {
			return nil, errors.Internal("Failed to parse rental data", err)
		}
		rentals = append(rentals, &rental)
	}

	return rentals, nil
}

func (r *firestoreRentalRepository) CreateLog(ctx context.Context, log *entity.RentalLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.CreatedAt = time.Now()

	_, err := r.client.Collection("rental_logs").Doc(log.ID).Set(ctx, log)
	if err != nil {
		return errors.Internal("Failed to create rental log", err)
	}

	return nil
}

func (r *firestoreRentalRepository) ListLogsByRentalID(ctx context.Context, rentalID string) ([]*entity.RentalLog, error) {
	query := r.client.Collection("rental_logs").
		Where("rentalId", "==", rentalID).
		OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	var logs []*entity.RentalLog

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate rental logs", err)
		}

		var log entity.RentalLog
		if err := doc.DataTo(&log); err != nil {
			return nil, errors.Internal("Failed to parse rental log data", err)
		}
		logs = append(logs, &log)
	}

	return logs, nil
}
