package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const jobColumns = `job_id, title, description, company, location, employment_type, experience_level,
	salary, skills, requirements, benefits, responsibilities, tags, posted_by, status,
	application_deadline, start_date, application_count, view_count, featured, created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.JobID, &j.Title, &j.Description, &j.Company, &j.Location, &j.EmploymentType, &j.ExperienceLevel,
		&j.Salary, &j.Skills, &j.Requirements, &j.Benefits, &j.Responsibilities, &j.Tags, &j.PostedBy, &j.Status,
		&j.ApplicationDeadline, &j.StartDate, &j.ApplicationCount, &j.ViewCount, &j.Featured, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *Repository) CreateJob(ctx context.Context, j *model.Job) error {
	const q = `
INSERT INTO jobs (job_id, title, description, company, location, employment_type, experience_level,
	salary, skills, requirements, benefits, responsibilities, tags, posted_by, status,
	application_deadline, start_date, featured, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
`
	_, err := r.db.Exec(ctx, q,
		j.JobID, j.Title, j.Description, j.Company, j.Location, j.EmploymentType, j.ExperienceLevel,
		j.Salary, j.Skills, nonNil(j.Requirements), nonNil(j.Benefits), nonNil(j.Responsibilities), nonNil(j.Tags),
		j.PostedBy, j.Status, j.ApplicationDeadline, j.StartDate, j.Featured, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return apperr.NotFound("user")
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *Repository) GetJob(ctx context.Context, id string) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`
	j, err := scanJob(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err, "job", "scan job")
	}
	return j, nil
}

// UpdateJob rewrites the editable columns. Counters are left to the increment
// statements.
func (r *Repository) UpdateJob(ctx context.Context, j *model.Job) error {
	const q = `
UPDATE jobs SET title = $2, description = $3, company = $4, location = $5, employment_type = $6,
	experience_level = $7, salary = $8, skills = $9, requirements = $10, benefits = $11,
	responsibilities = $12, tags = $13, status = $14, application_deadline = $15, start_date = $16,
	featured = $17, updated_at = $18
WHERE job_id = $1
`
	tag, err := r.db.Exec(ctx, q,
		j.JobID, j.Title, j.Description, j.Company, j.Location, j.EmploymentType,
		j.ExperienceLevel, j.Salary, j.Skills, nonNil(j.Requirements), nonNil(j.Benefits),
		nonNil(j.Responsibilities), nonNil(j.Tags), j.Status, j.ApplicationDeadline, j.StartDate,
		j.Featured, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("job")
	}
	return nil
}

func (r *Repository) SetJobStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error) {
	q := `UPDATE jobs SET status = $2, updated_at = now() WHERE job_id = $1 RETURNING ` + jobColumns
	j, err := scanJob(r.db.QueryRow(ctx, q, id, status))
	if err != nil {
		return nil, notFound(err, "job", "update job status")
	}
	return j, nil
}

func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE job_id = $1`, id)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return apperr.Conflict("job has applications, close it instead")
		}
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("job")
	}
	return nil
}

type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (w *whereBuilder) next() string {
	return fmt.Sprintf("$%d", len(w.args)+1)
}

func jobWhere(f model.JobFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.PostedBy != "" {
		w.add("posted_by = ?", f.PostedBy)
	}
	if f.Search != "" {
		// any term may match
		terms := strings.Fields(f.Search)
		w.add("search @@ to_tsquery('english', ?)", strings.Join(quoteTerms(terms), " | "))
	}
	if f.Location != "" {
		w.add("(location ->> 'city' ILIKE '%' || ? || '%' OR location ->> 'state' ILIKE '%' || ? || '%' OR location ->> 'country' ILIKE '%' || ? || '%' OR location ->> 'type' = ?)", f.Location)
	}
	if f.EmploymentType != "" {
		w.add("employment_type = ?", f.EmploymentType)
	}
	if f.ExperienceLevel != "" {
		w.add("experience_level = ?", f.ExperienceLevel)
	}
	if f.MinSalary != nil {
		w.add("(salary ->> 'min')::int >= ?", *f.MinSalary)
	}
	if f.MaxSalary != nil {
		w.add("(salary ->> 'max')::int <= ?", *f.MaxSalary)
	}
	if len(f.Skills) > 0 {
		w.add("EXISTS (SELECT 1 FROM jsonb_array_elements(skills) s WHERE s ->> 'name' = ANY(?))", f.Skills)
	}
	if f.Company != "" {
		w.add("company ->> 'name' ILIKE '%' || ? || '%'", f.Company)
	}
	return w
}

// quoteTerms turns free text into tsquery lexemes, dropping tsquery operators.
func quoteTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.Map(func(r rune) rune {
			switch r {
			case '&', '|', '!', '(', ')', ':', '*', '\'', '<', '>', '\\':
				return -1
			}
			return r
		}, t)
		if t != "" {
			out = append(out, "'"+t+"'")
		}
	}
	if len(out) == 0 {
		return []string{"''"}
	}
	return out
}

func jobOrder(f model.JobFilter) string {
	col := "created_at"
	switch f.SortBy {
	case model.JobSortSalary:
		col = "(salary ->> 'min')::int"
	case model.JobSortViewCount:
		col = "view_count"
	case model.JobSortApplicationCount:
		col = "application_count"
	}
	if f.Ascending {
		return col + " ASC NULLS FIRST"
	}
	return col + " DESC NULLS LAST"
}

func (r *Repository) ListJobs(ctx context.Context, f model.JobFilter) ([]model.Job, int, error) {
	w := jobWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM jobs`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	limit, offset := pageArgs(f.Limit, f.Offset)
	q := `SELECT ` + jobColumns + ` FROM jobs` + w.String() +
		` ORDER BY ` + jobOrder(f) + `, job_id LIMIT ` + w.next()
	args := append(w.args, limit)
	q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
	args = append(args, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	out := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job row: %w", err)
		}
		out = append(out, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return out, total, nil
}

func (r *Repository) ListJobIDsByPoster(ctx context.Context, posterID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT job_id FROM jobs WHERE posted_by = $1 ORDER BY job_id`, posterID)
	if err != nil {
		return nil, fmt.Errorf("query job ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect job ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) suggest(ctx context.Context, expr, q string, limit int) ([]model.Suggestion, error) {
	sql := fmt.Sprintf(`
SELECT v, COUNT(1) AS n FROM (SELECT %s AS v FROM jobs WHERE status = 'active') t
WHERE v <> '' AND v ILIKE '%%' || $1 || '%%'
GROUP BY v ORDER BY n DESC, v ASC LIMIT $2`, expr)
	rows, err := r.db.Query(ctx, sql, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	out := []model.Suggestion{}
	for rows.Next() {
		var s model.Suggestion
		if err := rows.Scan(&s.Value, &s.Count); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) JobSuggestions(ctx context.Context, q string, limit int) (model.JobSuggestions, error) {
	var (
		out model.JobSuggestions
		err error
	)
	if out.Titles, err = r.suggest(ctx, "title", q, limit); err != nil {
		return out, err
	}
	if out.Companies, err = r.suggest(ctx, "company ->> 'name'", q, limit); err != nil {
		return out, err
	}
	if out.Skills, err = r.suggest(ctx, "jsonb_array_elements(skills) ->> 'name'", q, limit); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Repository) IncrementViewCount(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, `UPDATE jobs SET view_count = view_count + 1 WHERE job_id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

func (r *Repository) IncrementApplicationCount(ctx context.Context, id string, delta int) error {
	const q = `UPDATE jobs SET application_count = GREATEST(application_count + $2, 0) WHERE job_id = $1`
	tag, err := r.db.Exec(ctx, q, id, delta)
	if err != nil {
		return fmt.Errorf("increment application count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("job")
	}
	return nil
}
