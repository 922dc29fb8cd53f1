package service

import (
	"context"
	"errors"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/model"
)

// DirectoryService defines alumni directory operations.
type DirectoryService interface {
	// SearchAlumni matches cached profiles by name, company, title or
	// location; an empty query returns the whole directory.
	SearchAlumni(ctx context.Context, query string) ([]model.User, error)
	// GetProfile loads one cached profile.
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	// Mentors returns cached profiles offering mentorship.
	Mentors(ctx context.Context) ([]model.User, error)
}

type DirectoryServiceImpl struct {
	users cache.UserCache
}

// NewDirectoryService constructs DirectoryService over the user cache.
func NewDirectoryService(users cache.UserCache) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{users: users}
}

func (s *DirectoryServiceImpl) SearchAlumni(ctx context.Context, query string) ([]model.User, error) {
	if query == "" {
		return s.users.GetAll(ctx)
	}
	return s.users.Search(ctx, query)
}

func (s *DirectoryServiceImpl) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, errors.New("empty user id")
	}
	return s.users.GetByID(ctx, userID)
}

func (s *DirectoryServiceImpl) Mentors(ctx context.Context) ([]model.User, error) {
	return s.users.Mentors(ctx)
}
