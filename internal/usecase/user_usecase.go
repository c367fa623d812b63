package usecase

import (
	"context"
	"time"

	"renterra/internal/domain/entity"
	"renterra/internal/domain/repository"
	"renterra/internal/infrastructure/firebase"
	"renterra/pkg/errors"
)

type UserUseCase struct {
	userRepo   repository.UserRepository
	authClient *firebase.AuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, authClient *firebase.AuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

// EnsureProfile creates the user record on first authenticated call, pulling
// the email from the identity provider.
func (uc *UserUseCase) EnsureProfile(ctx context.Context, uid string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	email, err := uc.authClient.GetUserEmail(ctx, uid)
	if err != nil {
		email = ""
	}

	user = &entity.User{
		ID:        uid,
		Email:     email,
		Role:      "user",
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

type UpdateProfileInput struct {
	Username string
	FullName string
	Phone    string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterFCMToken stores the device token notifications get delivered to.
func (uc *UserUseCase) RegisterFCMToken(ctx context.Context, uid, token string) error {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	user.FCMToken = token
	return uc.userRepo.Update(ctx, user)
}
