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

// UserCache implements cache.UserCache using PostgreSQL.
type UserCache struct{ db *DB }

// NewUserCache constructs a user access object.
func NewUserCache(db *DB) *UserCache { return &UserCache{db: db} }

const userColumns = `user_id, email, full_name, profile_image_url, bio, graduation_year,
major, current_job_title, current_company, location, skills, linkedin_url,
github_url, website_url, is_mentor, mentor_expertise, is_online, last_seen,
privacy_profile_visibility, privacy_contact_visibility, created_at, updated_at,
sync_status, last_sync`

func scanUser(s scanner) (model.User, error) {
	var u model.User
	var skills string
	err := s.Scan(
		&u.UserID, &u.Email, &u.FullName, &u.ProfileImageURL, &u.Bio, &u.GraduationYear,
		&u.Major, &u.CurrentJobTitle, &u.CurrentCompany, &u.Location, &skills, &u.LinkedinURL,
		&u.GithubURL, &u.WebsiteURL, &u.IsMentor, &u.MentorExpertise, &u.IsOnline, &u.LastSeen,
		&u.ProfileVisibility, &u.ContactVisibility, &u.CreatedAt, &u.UpdatedAt,
		&u.SyncStatus, &u.LastSync,
	)
	if err != nil {
		return model.User{}, err
	}
	u.Skills = convert.SplitList(skills)
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID selects a profile by user id.
func (c *UserCache) GetByID(ctx context.Context, userID string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE user_id=$1`
	u, err := scanUser(c.db.Pool.QueryRow(ctx, q, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetAll returns all cached profiles ordered by full name.
func (c *UserCache) GetAll(ctx context.Context) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY full_name ASC`
	rows, err := c.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// Search matches name, company, job title and location case-insensitively.
func (c *UserCache) Search(ctx context.Context, query string) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users
WHERE full_name ILIKE '%'||$1||'%'
   OR current_company ILIKE '%'||$1||'%'
   OR current_job_title ILIKE '%'||$1||'%'
   OR location ILIKE '%'||$1||'%'
ORDER BY full_name ASC`
	rows, err := c.db.Pool.Query(ctx, q, query)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// Mentors returns profiles flagged as mentors.
func (c *UserCache) Mentors(ctx context.Context) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE is_mentor ORDER BY full_name ASC`
	rows, err := c.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// UpsertBatch inserts or fully replaces profiles by id in one transaction.
func (c *UserCache) UpsertBatch(ctx context.Context, users []model.User) (err error) {
	if len(users) == 0 {
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
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
ON CONFLICT (user_id) DO UPDATE SET
  email=EXCLUDED.email, full_name=EXCLUDED.full_name,
  profile_image_url=EXCLUDED.profile_image_url, bio=EXCLUDED.bio,
  graduation_year=EXCLUDED.graduation_year, major=EXCLUDED.major,
  current_job_title=EXCLUDED.current_job_title, current_company=EXCLUDED.current_company,
  location=EXCLUDED.location, skills=EXCLUDED.skills,
  linkedin_url=EXCLUDED.linkedin_url, github_url=EXCLUDED.github_url,
  website_url=EXCLUDED.website_url, is_mentor=EXCLUDED.is_mentor,
  mentor_expertise=EXCLUDED.mentor_expertise, is_online=EXCLUDED.is_online,
  last_seen=EXCLUDED.last_seen,
  privacy_profile_visibility=EXCLUDED.privacy_profile_visibility,
  privacy_contact_visibility=EXCLUDED.privacy_contact_visibility,
  created_at=EXCLUDED.created_at, updated_at=EXCLUDED.updated_at,
  sync_status=EXCLUDED.sync_status, last_sync=EXCLUDED.last_sync`

	for i, u := range users {
		if u.UserID == "" {
			return fmt.Errorf("user[%d]: empty id", i)
		}
		_, err = tx.Exec(ctx, q,
			u.UserID, u.Email, u.FullName, u.ProfileImageURL, u.Bio, u.GraduationYear,
			u.Major, u.CurrentJobTitle, u.CurrentCompany, u.Location, convert.JoinList(u.Skills),
			u.LinkedinURL, u.GithubURL, u.WebsiteURL, u.IsMentor, u.MentorExpertise,
			u.IsOnline, u.LastSeen, u.ProfileVisibility, u.ContactVisibility,
			u.CreatedAt, u.UpdatedAt, u.SyncStatus, u.LastSync,
		)
		if err != nil {
			return fmt.Errorf("user[%d]: %w", i, err)
		}
	}
	return nil
}

// UpdateSyncStatus updates only the sync metadata of one row.
func (c *UserCache) UpdateSyncStatus(ctx context.Context, userID string, status model.SyncStatus, at int64) error {
	const q = `UPDATE users SET sync_status=$2, last_sync=$3 WHERE user_id=$1`
	_, err := c.db.Pool.Exec(ctx, q, userID, status, at)
	return err
}

// DeleteByID removes one profile; absent id is a no-op.
func (c *UserCache) DeleteByID(ctx context.Context, userID string) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM users WHERE user_id=$1`, userID)
	return err
}

// DeleteAll clears the table.
func (c *UserCache) DeleteAll(ctx context.Context) error {
	_, err := c.db.Pool.Exec(ctx, `DELETE FROM users`)
	return err
}
