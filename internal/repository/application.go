package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const applicationColumns = `application_id, job_id, candidate_id, recruiter_id, status, cover_letter,
	resume, ai_match_score, notes, interviews, communications, timeline, created_at, updated_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(
		&a.ApplicationID, &a.JobID, &a.CandidateID, &a.RecruiterID, &a.Status, &a.CoverLetter,
		&a.Resume, &a.AIMatchScore, &a.Notes, &a.Interviews, &a.Communications, &a.Timeline,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *Repository) CreateApplication(ctx context.Context, a *model.Application) error {
	const q = `
INSERT INTO applications (application_id, job_id, candidate_id, recruiter_id, status, cover_letter,
	resume, ai_match_score, notes, interviews, communications, timeline, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	_, err := r.db.Exec(ctx, q,
		a.ApplicationID, a.JobID, a.CandidateID, a.RecruiterID, a.Status, a.CoverLetter,
		a.Resume, a.AIMatchScore, orEmpty(a.Notes), orEmpty(a.Interviews), orEmpty(a.Communications), a.Timeline,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case uniqueViolation:
			return apperr.Conflict("you have already applied for this job")
		case foreignKeyViolation:
			return apperr.NotFound("job")
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *Repository) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE application_id = $1`
	a, err := scanApplication(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err, "application", "scan application")
	}
	return a, nil
}

func (r *Repository) ApplicationExists(ctx context.Context, jobID, candidateID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND candidate_id = $2)`
	var ok bool
	if err := r.db.QueryRow(ctx, q, jobID, candidateID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check application exists: %w", err)
	}
	return ok, nil
}

func applicationWhere(f model.ApplicationFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.CandidateID != "" {
		w.add("candidate_id = ?", f.CandidateID)
	}
	if f.JobID != "" {
		w.add("job_id = ?", f.JobID)
	}
	if f.JobIDs != nil {
		w.add("job_id = ANY(?)", f.JobIDs)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	return w
}

func (r *Repository) ListApplications(ctx context.Context, f model.ApplicationFilter) ([]model.Application, int, error) {
	w := applicationWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM applications`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	col := "created_at"
	switch f.SortBy {
	case "updated_at", "status":
		col = f.SortBy
	}
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	limit, offset := pageArgs(f.Limit, f.Offset)
	args := append(w.args, limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM applications%s ORDER BY %s %s, application_id LIMIT $%d OFFSET $%d`,
		applicationColumns, w.String(), col, dir, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	out := []model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan application row: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return out, total, nil
}

func (r *Repository) CountApplicationsByStatus(ctx context.Context, f model.ApplicationFilter) (map[model.ApplicationStatus]int, error) {
	w := applicationWhere(f)
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(1) FROM applications`+w.String()+` GROUP BY status`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	defer rows.Close()

	out := make(map[model.ApplicationStatus]int)
	for rows.Next() {
		var (
			status model.ApplicationStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// appendReturning runs a single UPDATE that appends to jsonb logs and returns
// the new row.
func (r *Repository) appendReturning(ctx context.Context, op, set string, args ...any) (*model.Application, error) {
	q := `UPDATE applications SET ` + set + ` WHERE application_id = $1 RETURNING ` + applicationColumns
	a, err := scanApplication(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, notFound(err, "application", op)
	}
	return a, nil
}

func (r *Repository) SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus, entry model.TimelineEntry, note *model.Note) (*model.Application, error) {
	notes := []model.Note{}
	if note != nil {
		notes = append(notes, *note)
	}
	return r.appendReturning(ctx, "update application status",
		`status = $2, timeline = timeline || $3::jsonb, notes = notes || $4::jsonb, updated_at = $5`,
		id, status, []model.TimelineEntry{entry}, notes, entry.Timestamp)
}

func (r *Repository) AppendNote(ctx context.Context, id string, note model.Note) (*model.Application, error) {
	return r.appendReturning(ctx, "append note",
		`notes = notes || $2::jsonb, updated_at = $3`,
		id, []model.Note{note}, note.AddedAt)
}

func (r *Repository) AppendInterview(ctx context.Context, id string, iv model.Interview, entry model.TimelineEntry) (*model.Application, error) {
	return r.appendReturning(ctx, "append interview",
		`interviews = interviews || $2::jsonb, timeline = timeline || $3::jsonb, updated_at = $4`,
		id, []model.Interview{iv}, []model.TimelineEntry{entry}, entry.Timestamp)
}

func (r *Repository) AppendCommunication(ctx context.Context, id string, c model.Communication) (*model.Application, error) {
	return r.appendReturning(ctx, "append communication",
		`communications = communications || $2::jsonb, updated_at = $3`,
		id, []model.Communication{c}, c.SentAt)
}
