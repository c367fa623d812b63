package usecase

import (
	"context"

	"renterra/internal/domain/entity"
	"renterra/internal/domain/repository"
	"renterra/pkg/errors"
	"renterra/pkg/utils"
)

type ItemUseCase struct {
	itemRepo repository.ItemRepository
}

func NewItemUseCase(itemRepo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{
		itemRepo: itemRepo,
	}
}

type CreateItemInput struct {
	Title          string
	Description    string
	Category       string
	DailyRate      float64
	Currency       string
	DepositAmount  float64
	InsuranceTiers []entity.InsuranceTier
	Photos         []entity.ItemPhoto
}

func (uc *ItemUseCase) Create(ctx context.Context, ownerID string, input CreateItemInput) (*entity.Item, error) {
	if input.DailyRate <= 0 {
		return nil, errors.BadRequest("Daily rate must be positive", nil)
	}

	item := &entity.Item{
		OwnerID:        ownerID,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		DailyRate:      input.DailyRate,
		Currency:       input.Currency,
		DepositAmount:  input.DepositAmount,
		InsuranceTiers: input.InsuranceTiers,
		Photos:         input.Photos,
		Status:         "active",
	}
	if item.Currency == "" {
		item.Currency = "USD"
	}

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *ItemUseCase) GetByID(ctx context.Context, itemID string) (*entity.Item, error) {
	return uc.itemRepo.GetByID(ctx, itemID)
}

type UpdateItemInput struct {
	Title         string
	Description   string
	DailyRate     float64
	DepositAmount float64
	Status        string
}

func (uc *ItemUseCase) Update(ctx context.Context, ownerID, itemID string, input UpdateItemInput) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, errors.Forbidden("Only the owner can update an item", nil)
	}

	if input.Title != "" {
		item.Title = input.Title
	}
	if input.Description != "" {
		item.Description = input.Description
	}
	if input.DailyRate > 0 {
		item.DailyRate = input.DailyRate
	}
	if input.DepositAmount >= 0 {
		item.DepositAmount = input.DepositAmount
	}
	if input.Status == "active" || input.Status == "unlisted" {
		item.Status = input.Status
	}

	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *ItemUseCase) Delete(ctx context.Context, ownerID, itemID string) error {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return errors.Forbidden("Only the owner can delete an item", nil)
	}
	return uc.itemRepo.SoftDelete(ctx, itemID)
}

func (uc *ItemUseCase) ListByOwner(ctx context.Context, ownerID string, page, limit int) ([]*entity.Item, int64, error) {
	pagination := utils.NewPaginationParams(page, limit)
	return uc.itemRepo.ListByOwnerID(ctx, ownerID, pagination.PageSize, pagination.Offset)
}
