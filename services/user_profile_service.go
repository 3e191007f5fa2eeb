package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitalong_server/models"
)

// UserProfileService is the peripheral CRUD boundary for profile and
// project documents. The match core only depends on it to confirm that
// referenced actors still exist.
type UserProfileService struct {
	Profiles ProfileStore
	Log      *zap.Logger

	now func() time.Time
}

// NewUserProfileService wires the repository over its store.
func NewUserProfileService(profiles ProfileStore, log *zap.Logger) *UserProfileService {
	return &UserProfileService{Profiles: profiles, Log: log, now: time.Now}
}

// GetProfile returns the profile for actorID; ErrNotFound when absent.
func (s *UserProfileService) GetProfile(ctx context.Context, actorID string) (*models.Profile, error) {
	if actorID == "" {
		return nil, ErrInvalidArgument
	}
	profile, err := s.Profiles.GetProfile(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

// UpsertProfile creates or replaces the caller's own profile.
func (s *UserProfileService) UpsertProfile(ctx context.Context, session models.Session, profile models.Profile) (*models.Profile, error) {
	if profile.ActorID == "" {
		return nil, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return nil, ErrUnauthenticated
	}
	if profile.ActorID != session.ActorID {
		return nil, ErrForbidden
	}
	if profile.Role == "" {
		profile.Role = models.RoleContributor
	}

	now := models.FormatTimestamp(s.clock()())
	if profile.CreatedAt == "" {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	if err := s.Profiles.PutProfile(ctx, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteProfile removes the caller's own profile.
func (s *UserProfileService) DeleteProfile(ctx context.Context, session models.Session, actorID string) error {
	if actorID == "" {
		return ErrInvalidArgument
	}
	if session.ActorID == "" {
		return ErrUnauthenticated
	}
	if actorID != session.ActorID {
		return ErrForbidden
	}
	return s.Profiles.DeleteProfile(ctx, actorID)
}

// GetProject returns the project by id; ErrNotFound when absent.
func (s *UserProfileService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	if projectID == "" {
		return nil, ErrInvalidArgument
	}
	project, err := s.Profiles.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

// UpsertProject creates or replaces a project owned by the caller.
func (s *UserProfileService) UpsertProject(ctx context.Context, session models.Session, project models.Project) (*models.Project, error) {
	if project.ProjectID == "" || project.Name == "" {
		return nil, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return nil, ErrUnauthenticated
	}

	existing, err := s.Profiles.GetProject(ctx, project.ProjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.OwnerID != session.ActorID {
		return nil, ErrForbidden
	}

	project.OwnerID = session.ActorID
	if project.CreatedAt == "" {
		project.CreatedAt = models.FormatTimestamp(s.clock()())
	}

	if err := s.Profiles.PutProject(ctx, project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *UserProfileService) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}
