package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"panoram/internal/middleware"
	"panoram/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password every generated user can log in with.
const DemoPassword = "password123"

// Options controls how much demo data is generated.
type Options struct {
	Users          int
	FriendsPerUser int
	RatingsPerUser int
	// Seed makes a run reproducible; zero picks a time-based seed.
	Seed int64
	// SkipBcrypt stores a cheap hash for fast local runs. Those users
	// cannot log in.
	SkipBcrypt bool
	DryRun     bool
}

// UserWriter is the subset of the user store the factory needs.
type UserWriter interface {
	Create(ctx context.Context, user *models.User) error
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
}

// InteractionWriter is the subset of the interaction store the factory needs.
type InteractionWriter interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, movieID int64, patch models.InteractionPatch) (bool, error)
}

// Report counts what a run wrote.
type Report struct {
	Users        int
	Friendships  int
	Interactions int
}

// Factory builds demo users and their activity.
type Factory struct {
	users        UserWriter
	interactions InteractionWriter
	opts         Options
	faker        *gofakeit.Faker
	passwordHash string
}

// NewFactory creates a Factory. The password hash is computed once per
// factory since every generated user shares it.
func NewFactory(users UserWriter, interactions InteractionWriter, opts Options) (*Factory, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	hash := "unhashed:" + DemoPassword
	if !opts.SkipBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash demo password: %w", err)
		}
		hash = string(b)
	}

	return &Factory{
		users:        users,
		interactions: interactions,
		opts:         opts,
		faker:        gofakeit.New(seed),
		passwordHash: hash,
	}, nil
}

// BuildUser returns an unsaved user with a random demographic profile.
// Overrides run last.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	name := strings.ToLower(f.faker.Username()) + fmt.Sprintf("%d", f.faker.Number(100, 999))
	birth := f.faker.DateRange(
		time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2008, 12, 31, 0, 0, 0, 0, time.UTC),
	).UTC()
	birth = time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)

	user := &models.User{
		Username:       name,
		Email:          name + "@" + strings.ToLower(f.faker.DomainName()),
		HashedPassword: f.passwordHash,
		Gender:         f.faker.RandomString([]string{models.GenderMale, models.GenderFemale, models.GenderOther}),
		Birthdate:      &birth,
		Friends:        []primitive.ObjectID{},
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if f.opts.DryRun {
		user.ID = primitive.NewObjectID()
		return user, nil
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Befriend links a and b on both sides.
func (f *Factory) Befriend(ctx context.Context, a, b *models.User) error {
	if a.ID == b.ID || a.HasFriend(b.ID) {
		return nil
	}
	if !f.opts.DryRun {
		if err := f.users.AddFriend(ctx, a.ID, b.ID); err != nil {
			return err
		}
		if err := f.users.AddFriend(ctx, b.ID, a.ID); err != nil {
			return err
		}
	}
	a.Friends = append(a.Friends, b.ID)
	b.Friends = append(b.Friends, a.ID)
	return nil
}

// Rate records a watched interaction with a random rating. High ratings
// are marked favorite.
func (f *Factory) Rate(ctx context.Context, user *models.User, movieID int64) (models.InteractionPatch, error) {
	rating := f.faker.Number(models.MinRating, models.MaxRating)
	watched := true
	favorite := rating >= 8
	patch := models.InteractionPatch{Rating: &rating, HasWatched: &watched, IsFavorite: &favorite}
	if f.opts.DryRun {
		return patch, nil
	}
	_, err := f.interactions.Upsert(ctx, user.ID, movieID, patch)
	return patch, err
}

// Populate creates users, links each to up to FriendsPerUser random peers
// and rates up to RatingsPerUser distinct movies from catalog per user.
func (f *Factory) Populate(ctx context.Context, catalog []models.Movie) (Report, error) {
	var report Report

	users := make([]*models.User, 0, f.opts.Users)
	for i := 0; i < f.opts.Users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return report, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, u)
		report.Users++
	}

	if len(users) > 1 {
		for _, u := range users {
			for _, idx := range f.pick(len(users), f.opts.FriendsPerUser) {
				peer := users[idx]
				if peer.ID == u.ID || u.HasFriend(peer.ID) {
					continue
				}
				if err := f.Befriend(ctx, u, peer); err != nil {
					return report, fmt.Errorf("befriend %s and %s: %w", u.Username, peer.Username, err)
				}
				report.Friendships++
			}
		}
	}

	for _, u := range users {
		for _, idx := range f.pick(len(catalog), f.opts.RatingsPerUser) {
			if _, err := f.Rate(ctx, u, catalog[idx].ID); err != nil {
				return report, fmt.Errorf("rate movie %d for %s: %w", catalog[idx].ID, u.Username, err)
			}
			report.Interactions++
		}
	}

	middleware.Logger.InfoContext(ctx, "Demo data generated",
		slog.Int("users", report.Users),
		slog.Int("friendships", report.Friendships),
		slog.Int("interactions", report.Interactions),
		slog.Bool("dry_run", f.opts.DryRun),
	)
	return report, nil
}

// pick returns up to k distinct indexes in [0, n).
func (f *Factory) pick(n, k int) []int {
	if k <= 0 || n <= 0 {
		return nil
	}
	perm := f.faker.Rand.Perm(n)
	if k < n {
		perm = perm[:k]
	}
	return perm
}
