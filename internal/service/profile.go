package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
	"github.com/namatovu-christine/alumni-sync/internal/storage"
	syncer "github.com/namatovu-christine/alumni-sync/internal/sync"
)

// ProfileService defines own-profile operations.
type ProfileService interface {
	// Update stores the signed-in user's profile locally and pushes it to
	// the remote store. Only the owner can update their profile.
	Update(ctx context.Context, user model.User) (model.User, error)
	// UploadPhoto stores a profile photo in object storage and records its
	// URL on the profile.
	UploadPhoto(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
}

type ProfileServiceImpl struct {
	users   cache.UserCache
	src     remote.Source
	photos  storage.PhotoStore
	session Session
	syncer  SyncRequester
	now     func() time.Time
	log     *zap.Logger
}

// NewProfileService constructs ProfileService with required dependencies.
func NewProfileService(users cache.UserCache, src remote.Source, photos storage.PhotoStore,
	session Session, syncer SyncRequester, log *zap.Logger) *ProfileServiceImpl {
	return &ProfileServiceImpl{users: users, src: src, photos: photos,
		session: session, syncer: syncer, now: time.Now, log: log}
}

func (s *ProfileServiceImpl) Update(ctx context.Context, user model.User) (model.User, error) {
	uid, err := s.session.CurrentUserID()
	if err != nil {
		return model.User{}, err
	}
	if user.UserID == "" {
		user.UserID = uid
	}
	if user.UserID != uid {
		return model.User{}, errors.New("can only update own profile")
	}

	now := model.Millis(s.now())
	user.UpdatedAt = now
	user.SyncStatus = model.SyncPending

	if err := s.users.UpsertBatch(ctx, []model.User{user}); err != nil {
		return model.User{}, err
	}

	if err := pushDocument(ctx, s.src, remote.CollectionUsers, user.UserID, user); err != nil {
		s.log.Warn("profile push failed, left pending",
			zap.String("user_id", user.UserID), zap.Error(err))
		s.syncer.RequestForce(syncer.KeyUsers)
		return user, nil
	}

	if err := s.users.UpdateSyncStatus(ctx, user.UserID, model.SyncSynced, now); err != nil {
		return model.User{}, err
	}
	user.SyncStatus = model.SyncSynced
	user.LastSync = now
	return user, nil
}

func (s *ProfileServiceImpl) UploadPhoto(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	uid, err := s.session.CurrentUserID()
	if err != nil {
		return "", err
	}
	if size <= 0 {
		return "", errors.New("empty photo")
	}

	url, err := s.photos.Put(ctx, "profile_photos/"+uid, r, size, contentType)
	if err != nil {
		return "", err
	}

	profile, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}
	profile.ProfileImageURL = url
	if _, err := s.Update(ctx, *profile); err != nil {
		return "", err
	}
	return url, nil
}
