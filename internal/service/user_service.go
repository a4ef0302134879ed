// Package service holds the business logic between the HTTP handlers and
// the stores.
package service

import (
	"context"
	"log/slog"
	"strings"

	"panoram/internal/cache"
	"panoram/internal/models"
	"panoram/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSearchLimit caps user search results.
const UserSearchLimit = 10

// UserService provides profile, search and friendship logic.
type UserService struct {
	userRepo repository.UserRepository
	rdb      *redis.Client
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, rdb *redis.Client) *UserService {
	return &UserService{userRepo: userRepo, rdb: rdb}
}

// Search finds users whose username contains q.
func (s *UserService) Search(ctx context.Context, q string) ([]models.UserSummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, q, UserSearchLimit)
}

// Profile returns the caller's record with friend details resolved.
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

// AddFriend links both users. The two writes are independent; if the
// second fails the first is undone unless it was already in place.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	if userID == friendID {
		return models.NewValidationError("You cannot add yourself as a friend")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return err
	}

	if err := s.userRepo.AddFriend(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.userRepo.AddFriend(ctx, friendID, userID); err != nil {
		if !user.HasFriend(friendID) {
			s.compensate(ctx, "add", userID, friendID, s.userRepo.RemoveFriend)
		}
		return err
	}

	s.invalidate(ctx, userID, friendID)
	return nil
}

// RemoveFriend unlinks both users. A friend account that no longer exists
// counts as already unlinked.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	if userID == friendID {
		return models.NewValidationError("You cannot remove yourself as a friend")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.userRepo.RemoveFriend(ctx, friendID, userID); err != nil && !models.IsCode(err, models.CodeNotFound) {
		if user.HasFriend(friendID) {
			s.compensate(ctx, "remove", userID, friendID, s.userRepo.AddFriend)
		}
		return err
	}

	s.invalidate(ctx, userID, friendID)
	return nil
}

func (s *UserService) compensate(ctx context.Context, op string, userID, friendID primitive.ObjectID, undo func(context.Context, primitive.ObjectID, primitive.ObjectID) error) {
	if err := undo(ctx, userID, friendID); err != nil {
		slog.ErrorContext(ctx, "friend relation left asymmetric",
			slog.String("op", op),
			slog.String("user_id", userID.Hex()),
			slog.String("friend_id", friendID.Hex()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *UserService) invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	for _, id := range ids {
		cache.InvalidateRecommendations(ctx, s.rdb, id.Hex())
	}
}
