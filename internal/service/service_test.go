package service

import (
	"context"
	"encoding/json"

	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

type fakeSession struct {
	uid string
	err error
}

func (f *fakeSession) CurrentUserID() (string, error) { return f.uid, f.err }

func signedIn(uid string) *fakeSession { return &fakeSession{uid: uid} }

func signedOut() *fakeSession { return &fakeSession{err: errs.ErrNoSession} }

type fakeSyncer struct{ forced []string }

func (f *fakeSyncer) RequestForce(dataType string) { f.forced = append(f.forced, dataType) }

type fakePusher struct {
	remote.Source

	putCollection string
	putID         string
	putFields     json.RawMessage
	putErr        error
}

func (f *fakePusher) PutDocument(_ context.Context, collection, id string, fields json.RawMessage) error {
	f.putCollection, f.putID, f.putFields = collection, id, fields
	return f.putErr
}
