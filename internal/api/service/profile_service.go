package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/SETHUKUMAR1709/job-application-tracker/internal/api/domain"
	"github.com/lib/pq"
)

// ProfileService reads and replaces a user's own profile fields. The only
// invariant is ownership: a profile is visible to and editable by exactly
// the user it belongs to.
type ProfileService struct {
	store  UserStore
	logger *slog.Logger
	now    func() time.Time
}

func NewProfileService(store UserStore, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the target user's profile. Unlike jobs, profile existence is
// not a secret between authenticated users, so a foreign target yields
// ErrForbidden rather than a collapsed not-found.
func (s *ProfileService) Get(ctx context.Context, requesterID, targetID string) (*domain.User, error) {
	if requesterID != targetID {
		return nil, domain.ErrForbidden
	}

	return s.store.GetUserByID(ctx, targetID)
}

// Update replaces every profile field with the supplied state and returns
// the stored result. These are replace semantics, not patch semantics:
// fields the caller leaves out are written as empty.
func (s *ProfileService) Update(ctx context.Context, requesterID, targetID string, profile domain.Profile) (*domain.User, error) {
	if requesterID != targetID {
		return nil, domain.ErrForbidden
	}

	user := &domain.User{
		UserID:      targetID,
		Bio:         profile.Bio,
		Skills:      pq.StringArray(profile.Skills),
		Experience:  pq.StringArray(profile.Experience),
		Education:   pq.StringArray(profile.Education),
		Birthday:    profile.Birthday,
		Hometown:    profile.Hometown,
		SocialLinks: profile.SocialLinks,
		UpdatedAt:   s.now().UTC(),
	}
	if user.Skills == nil {
		user.Skills = pq.StringArray{}
	}
	if user.Experience == nil {
		user.Experience = pq.StringArray{}
	}
	if user.Education == nil {
		user.Education = pq.StringArray{}
	}

	if err := s.store.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", slog.String("user_id", targetID))

	return s.store.GetUserByID(ctx, targetID)
}
