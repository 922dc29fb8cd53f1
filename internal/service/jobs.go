package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/namatovu-christine/alumni-sync/internal/cache"
	"github.com/namatovu-christine/alumni-sync/internal/model"
	"github.com/namatovu-christine/alumni-sync/internal/remote"
	syncer "github.com/namatovu-christine/alumni-sync/internal/sync"
)

// JobBoardService defines job board operations.
type JobBoardService interface {
	// List returns cached postings, newest first.
	List(ctx context.Context) ([]model.JobPosting, error)
	// FilterByType returns postings of one employment type.
	FilterByType(ctx context.Context, jobType string) ([]model.JobPosting, error)
	// Search matches position, company and description.
	Search(ctx context.Context, query string) ([]model.JobPosting, error)
	// PostJob stores a posting locally and pushes it to the remote store.
	// The posting stays pending when the push fails; a sync pass is
	// requested to reconcile it later.
	PostJob(ctx context.Context, job model.JobPosting) (model.JobPosting, error)
}

type JobBoardServiceImpl struct {
	jobs    cache.JobCache
	src     remote.Source
	session Session
	syncer  SyncRequester
	now     func() time.Time
	log     *zap.Logger
}

// NewJobBoardService constructs JobBoardService with required dependencies.
func NewJobBoardService(jobs cache.JobCache, src remote.Source, session Session,
	syncer SyncRequester, log *zap.Logger) *JobBoardServiceImpl {
	return &JobBoardServiceImpl{jobs: jobs, src: src, session: session,
		syncer: syncer, now: time.Now, log: log}
}

func (s *JobBoardServiceImpl) List(ctx context.Context) ([]model.JobPosting, error) {
	return s.jobs.GetAll(ctx)
}

func (s *JobBoardServiceImpl) FilterByType(ctx context.Context, jobType string) ([]model.JobPosting, error) {
	if jobType == "" {
		return nil, errors.New("empty job type")
	}
	return s.jobs.FilterByType(ctx, jobType)
}

func (s *JobBoardServiceImpl) Search(ctx context.Context, query string) ([]model.JobPosting, error) {
	if query == "" {
		return s.jobs.GetAll(ctx)
	}
	return s.jobs.Search(ctx, query)
}

func (s *JobBoardServiceImpl) PostJob(ctx context.Context, job model.JobPosting) (model.JobPosting, error) {
	if job.Position == "" || job.Company == "" {
		return model.JobPosting{}, errors.New("position and company are required")
	}
	uid, err := s.session.CurrentUserID()
	if err != nil {
		return model.JobPosting{}, err
	}

	now := model.Millis(s.now())
	if job.JobID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return model.JobPosting{}, err
		}
		job.JobID = id.String()
	}
	job.PostedByUserID = uid
	if job.PostedAt == 0 {
		job.PostedAt = now
	}
	if job.CreatedAt == 0 {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	job.IsActive = true
	job.SyncStatus = model.SyncPending

	if err := s.jobs.UpsertBatch(ctx, []model.JobPosting{job}); err != nil {
		return model.JobPosting{}, err
	}

	if err := pushDocument(ctx, s.src, remote.CollectionJobs, job.JobID, job); err != nil {
		s.log.Warn("job push failed, left pending",
			zap.String("job_id", job.JobID), zap.Error(err))
		s.syncer.RequestForce(syncer.KeyJobs)
		return job, nil
	}

	if err := s.jobs.UpdateSyncStatus(ctx, job.JobID, model.SyncSynced, now); err != nil {
		return model.JobPosting{}, err
	}
	job.SyncStatus = model.SyncSynced
	job.LastSync = now
	return job, nil
}
