package user

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"
)

type Service struct {
	repo      Repository
	validator *Validator
}

func NewService(repo Repository, validator *Validator) *Service {
	return &Service{repo: repo, validator: validator}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, notFound(id)
		}
		return User{}, err
	}
	return user, nil
}

// Create admits a new user. The email lookup runs before validation so a
// duplicate is reported even when other fields are invalid.
func (s *Service) Create(ctx context.Context, user User) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
		return User{}, alreadyExists()
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	if err := s.validator.Validate(user); err != nil {
		return User{}, err
	}

	user.ID = 0
	created, err := s.save(ctx, user)
	if err != nil {
		return User{}, err
	}

	zap.L().Debug("user created", zap.Int64("user_id", created.ID))
	return created, nil
}

// Update overwrites every non-id field of the stored user with the values in
// user and revalidates the result.
func (s *Service) Update(ctx context.Context, user User, id int64) (User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, invalidInput("User not found with id: %d", id)
		}
		return User{}, err
	}

	byEmail, err := s.repo.GetByEmail(ctx, user.Email)
	switch {
	case err == nil && byEmail.ID != existing.ID:
		return User{}, alreadyExists()
	case err != nil && !errors.Is(err, ErrNotFound):
		return User{}, err
	}

	existing.Email = user.Email
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.DateOfBirth = user.DateOfBirth
	existing.Address = user.Address
	existing.PhoneNumber = user.PhoneNumber

	if err := s.validator.Validate(existing); err != nil {
		return User{}, err
	}

	updated, err := s.save(ctx, existing)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, invalidInput("User not found with id: %d", id)
		}
		return User{}, err
	}

	zap.L().Debug("user updated", zap.Int64("user_id", updated.ID))
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(id)
		}
		return err
	}

	zap.L().Debug("user deleted", zap.Int64("user_id", id))
	return nil
}

// ListByDateOfBirthRange returns users born between start and end inclusive.
// An inverted range is not an error; it matches nobody.
func (s *Service) ListByDateOfBirthRange(ctx context.Context, start, end civil.Date) ([]User, error) {
	if !start.IsValid() || !end.IsValid() {
		return nil, invalidInput(msgInvalidDateForm)
	}
	return s.repo.ListByDateOfBirthBetween(ctx, start, end)
}

func (s *Service) save(ctx context.Context, user User) (User, error) {
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return User{}, alreadyExists()
		}
		if errors.Is(err, ErrNotFound) {
			return User{}, err
		}
		return User{}, fmt.Errorf("save user: %w", err)
	}
	return saved, nil
}
