package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/namatovu-christine/alumni-sync/internal/convert"
	"github.com/namatovu-christine/alumni-sync/internal/errs"
	"github.com/namatovu-christine/alumni-sync/internal/model"
)

// JobCache implements cache.JobCache using PostgreSQL.
type JobCache struct{ db *DB }

// NewJobCache constructs a job posting access object.
func NewJobCache(db *DB) *JobCache { return &JobCache{db: db} }

const jobColumns = `job_id, company, position, description, requirements, location,
job_type, experience_level, salary_range, application_deadline, application_url,
posted_by_user_id, posted_by_name, posted_at, is_active, tags, created_at,
updated_at, sync_status, last_sync`

func scanJob(s scanner) (model.JobPosting, error) {
	var j model.JobPosting
	var reqs, tags string
	err := s.Scan(
		&j.JobID, &j.Company, &j.Position, &j.Description, &reqs, &j.Location,
		&j.JobType, &j.ExperienceLevel, &j.SalaryRange, &j.ApplicationDeadline, &j.ApplicationURL,
		&j.PostedByUserID, &j.PostedByName, &j.PostedAt, &j.IsActive, &tags, &j.CreatedAt,
		&j.UpdatedAt, &j.SyncStatus, &j.LastSync,
	)
	if err != nil {
		return model.JobPosting{}, err
	}
	j.Requirements = convert.SplitList(reqs)
	j.Tags = convert.SplitList(tags)
	return j, nil
}

func collectJobs(rows pgx.Rows) ([]model.JobPosting, error) {
	defer rows.Close()
	var out []model.JobPosting
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetByID selects a posting by job id.
func (c *JobCache) GetByID(ctx context.Context, jobID string) (*model.JobPosting, error) {
	q := `SELECT ` + jobColumns + ` FROM job_postings WHERE job_id=$1`
	j, err := scanJob(c.db.Pool.QueryRow(ctx, q, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// GetAll returns postings ordered by posted time, newest first.
func (c *JobCache) GetAll(ctx context.Context) ([]model.JobPosting, error) {
	q := `SELECT ` + jobColumns + ` FROM job_postings ORDER BY posted_at DESC`
	rows, err := c.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

// Search matches position, company and description case-insensitively.
func (c *JobCache) Search(ctx context.Context, query string) ([]model.JobPosting, error) {
	q := `SELECT ` + jobColumns + ` FROM job_postings
WHERE position ILIKE '%'||$1||'%'
   OR company ILIKE '%'||$1||'%'
   OR description ILIKE '%'||$1||'%'
ORDER BY posted_at DESC`
	rows, err := c.db.Pool.Query(ctx, q, query)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

// FilterByType returns postings of one employment type, newest first.
func (c *JobCache) FilterByType(ctx context.Context, jobType string) ([]model.JobPosting, error) {
	q := `SELECT ` + jobColumns + ` FROM job_postings WHERE job_type=$1 ORDER BY posted_at DESC`
	rows, err := c.db.Pool.Query(ctx, q, jobType)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

// UpsertBatch inserts or fully replaces postings by id in one transaction.
func (c *JobCache) UpsertBatch(ctx context.Context, jobs []model.JobPosting) (err error) {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := c.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const q = `
INSERT INTO job_postings (` + jobColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
ON CONFLICT (job_id) DO UPDATE SET
  company=EXCLUDED.company, position=EXCLUDED.position,
  description=EXCLUDED.description, requirements=EXCLUDED.requirements,
  location=EXCLUDED.location, job_type=EXCLUDED.job_type,
  experience_level=EXCLUDED.experience_level, salary_range=EXCLUDED.salary_range,
  application_deadline=EXCLUDED.application_deadline,
  application_url=EXCLUDED.application_url,
  posted_by_user_id=EXCLUDED.posted_by_user_id, posted_by_name=EXCLUDED.posted_by_name,
  posted_at=EXCLUDED.posted_at, is_active=EXCLUDED.is_active, tags=EXCLUDED.tags,
  created_at=EXCLUDED.created_at, updated_at=EXCLUDED.updated_at,
  sync_status=EXCLUDED.sync_status, last_sync=EXCLUDED.last_sync`

	for i, j := range jobs {
		if j.JobID == "" {
			return fmt.Errorf("job[%d]: empty id", i)
		}
		_, err = tx.Exec(ctx, q,
			j.JobID, j.Company, j.Position, j.Description, convert.JoinList(j.Requirements),
			j.Location, j.JobType, j.ExperienceLevel, j.SalaryRange, j.ApplicationDeadline,
			j.ApplicationURL, j.PostedByUserID, j.PostedByName, j.PostedAt, j.IsActive,
			convert.JoinList(j.Tags), j.CreatedAt, j.UpdatedAt, j.SyncStatus, j.LastSync,
		)
		if err != nil {
			return fmt.Errorf("job[%d]: %w", i, err)
		}
	}
	return nil
}

// UpdateSyncStatus updates only the sync metadata of one row.
func (c *JobCache) UpdateSyncStatus(ctx context.Context, jobID string, status model.SyncStatus, at int64) error {
	const q = `UPDATE job_postings SET sync_status=$2, last_sync=$3 WHERE job_id=$1`
	_, err := c.db.Pool.Exec(ctx, q, jobID, status, at)
	return err
}

// DeleteByID removes one posting; absent id is a no-op.
func (c *JobCache) DeleteByID(ctx context.Context, jobID string) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM job_postings WHERE job_id=$1`, jobID)
	return err
}

// DeleteAll clears the table.
func (c *JobCache) DeleteAll(ctx context.Context) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM job_postings`)
	return err
}

// DeleteExpired prunes postings whose application deadline passed before now.
// Postings without a deadline (0) are kept.
func (c *JobCache) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	const q = `DELETE FROM job_postings WHERE application_deadline > 0 AND application_deadline < $1`
	tag, err := c.db.Pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
