package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/model"
)

type fakeUserCache struct {
	cache.UserCache

	byID     map[string]*model.User
	upserted []model.User
	status   map[string]model.SyncStatus
	all      []model.User
	mentors  []model.User
	searched string
}

func (f *fakeUserCache) GetByID(_ context.Context, userID string) (*model.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, io.EOF
	}
	cp := *u
	return &cp, nil
}
func (f *fakeUserCache) GetAll(context.Context) ([]model.User, error) { return f.all, nil }
func (f *fakeUserCache) Search(_ context.Context, query string) ([]model.User, error) {
	f.searched = query
	return nil, nil
}
func (f *fakeUserCache) Mentors(context.Context) ([]model.User, error) { return f.mentors, nil }
func (f *fakeUserCache) UpsertBatch(_ context.Context, users []model.User) error {
	f.upserted = append(f.upserted, users...)
	return nil
}
func (f *fakeUserCache) UpdateSyncStatus(_ context.Context, userID string, status model.SyncStatus, _ int64) error {
	if f.status == nil {
		f.status = make(map[string]model.SyncStatus)
	}
	f.status[userID] = status
	return nil
}

type fakePhotoStore struct {
	key string
	url string
	err error
}

func (f *fakePhotoStore) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	f.key = key
	return f.url, f.err
}
func (f *fakePhotoStore) Delete(context.Context, string) error { return nil }

func newProfile(users *fakeUserCache, push *fakePusher, photos *fakePhotoStore, session Session) *ProfileServiceImpl {
	s := NewProfileService(users, push, photos, session, &fakeSyncer{}, zap.NewNop())
	s.now = func() time.Time { return time.UnixMilli(70_000) }
	return s
}

func TestUpdate_OwnProfileOnly(t *testing.T) {
	t.Parallel()
	s := newProfile(&fakeUserCache{}, &fakePusher{}, &fakePhotoStore{}, signedIn("u1"))

	if _, err := s.Update(context.Background(), model.User{UserID: "u2"}); err == nil {
		t.Fatalf("updating another profile must fail")
	}
}

func TestUpdate_OptimisticSuccess(t *testing.T) {
	t.Parallel()
	users := &fakeUserCache{}
	push := &fakePusher{}
	s := newProfile(users, push, &fakePhotoStore{}, signedIn("u1"))

	got, err := s.Update(context.Background(), model.User{FullName: "Grace Auma"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.UserID != "u1" || got.UpdatedAt != 70_000 {
		t.Fatalf("profile metadata wrong: %+v", got)
	}
	if got.SyncStatus != model.SyncSynced || users.status["u1"] != model.SyncSynced {
		t.Fatalf("confirmed profile must be marked synced")
	}
}

func TestUploadPhoto(t *testing.T) {
	t.Parallel()
	users := &fakeUserCache{byID: map[string]*model.User{
		"u1": {UserID: "u1", FullName: "Grace Auma"},
	}}
	photos := &fakePhotoStore{url: "https://cdn.example/u1.jpg"}
	s := newProfile(users, &fakePusher{}, photos, signedIn("u1"))

	url, err := s.UploadPhoto(context.Background(), strings.NewReader("img"), 3, "image/jpeg")
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if url != photos.url {
		t.Fatalf("want stored url, got %s", url)
	}
	if photos.key != "profile_photos/u1" {
		t.Fatalf("photo key %s", photos.key)
	}
	if len(users.upserted) != 1 || users.upserted[0].ProfileImageURL != photos.url {
		t.Fatalf("profile should record the photo url: %+v", users.upserted)
	}
}

func TestDirectory(t *testing.T) {
	t.Parallel()
	users := &fakeUserCache{
		all:     []model.User{{UserID: "u1"}, {UserID: "u2"}},
		mentors: []model.User{{UserID: "u2", IsMentor: true}},
	}
	d := NewDirectoryService(users)

	got, err := d.SearchAlumni(context.Background(), "")
	if err != nil || len(got) != 2 {
		t.Fatalf("empty query should list all: got=%v err=%v", got, err)
	}
	if _, err := d.SearchAlumni(context.Background(), "kampala"); err != nil || users.searched != "kampala" {
		t.Fatalf("query should hit Search, searched=%q err=%v", users.searched, err)
	}
	mentors, err := d.Mentors(context.Background())
	if err != nil || len(mentors) != 1 {
		t.Fatalf("Mentors: got=%v err=%v", mentors, err)
	}
	if _, err := d.GetProfile(context.Background(), ""); err == nil {
		t.Fatalf("want error on empty id")
	}
}
