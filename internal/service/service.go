// Package service contains the feature services backing the portal UI.
// Reads always come from the local cache; writes are optimistic, with the
// remote store confirmed in the background.
package service

import (
	"context"

	"github.com/namatovu-christine/alumni-sync/internal/convert"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
)

// Session exposes the signed-in user to the feature services.
type Session interface {
	CurrentUserID() (string, error)
}

// SyncRequester lets services ask for a sync pass after a failed remote
// write. The orchestrator satisfies it.
type SyncRequester interface {
	RequestForce(dataType string)
}

// pushDocument encodes v and writes it to the remote store.
func pushDocument(ctx context.Context, src remote.Source, collection, id string, v any) error {
	fields, err := convert.EncodeFields(v)
	if err != nil {
		return err
	}
	return src.PutDocument(ctx, collection, id, fields)
}
