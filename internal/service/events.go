package service

import (
	"context"
	"errors"
	"time"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/model"
)

// EventsService defines alumni event operations. Events are read-only on
// the device; organizers publish through the portal backend.
type EventsService interface {
	// List returns cached events, soonest first.
	List(ctx context.Context) ([]model.Event, error)
	// Upcoming returns events that have not started yet.
	Upcoming(ctx context.Context) ([]model.Event, error)
	// Search matches title, description and venue.
	Search(ctx context.Context, query string) ([]model.Event, error)
	// Get loads one cached event.
	Get(ctx context.Context, eventID string) (*model.Event, error)
}

type EventsServiceImpl struct {
	events cache.EventCache
	now    func() time.Time
}

// NewEventsService constructs EventsService over the event cache.
func NewEventsService(events cache.EventCache) *EventsServiceImpl {
	return &EventsServiceImpl{events: events, now: time.Now}
}

func (s *EventsServiceImpl) List(ctx context.Context) ([]model.Event, error) {
	return s.events.GetAll(ctx)
}

func (s *EventsServiceImpl) Upcoming(ctx context.Context) ([]model.Event, error) {
	return s.events.Upcoming(ctx, model.Millis(s.now()))
}

func (s *EventsServiceImpl) Search(ctx context.Context, query string) ([]model.Event, error) {
	if query == "" {
		return s.events.GetAll(ctx)
	}
	return s.events.Search(ctx, query)
}

func (s *EventsServiceImpl) Get(ctx context.Context, eventID string) (*model.Event, error) {
	if eventID == "" {
		return nil, errors.New("empty event id")
	}
	return s.events.GetByID(ctx, eventID)
}
