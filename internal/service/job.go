package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const (
	minSuggestionQuery = 2
	suggestionLimit    = 5
)

type JobService struct {
	jobs JobStore
	apps ApplicationStore
	log  *zap.Logger
	now  Clock
}

func NewJobService(jobs JobStore, apps ApplicationStore, log *zap.Logger) *JobService {
	return &JobService{jobs: jobs, apps: apps, log: log, now: systemClock}
}

type JobPage struct {
	Items []model.Job
	Total int
	Page  int
	Limit int
}

func validateJob(j *model.Job) error {
	switch {
	case strings.TrimSpace(j.Title) == "":
		return apperr.Validation("title is required")
	case utf8.RuneCountInString(j.Title) > 100:
		return apperr.Validation("title must be at most 100 characters")
	case strings.TrimSpace(j.Description) == "":
		return apperr.Validation("description is required")
	case utf8.RuneCountInString(j.Description) > 5000:
		return apperr.Validation("description must be at most 5000 characters")
	case strings.TrimSpace(j.Company.Name) == "":
		return apperr.Validation("company name is required")
	case !j.Status.Valid():
		return apperr.Validationf("invalid job status %q", j.Status)
	case !model.ValidEmploymentType(j.EmploymentType):
		return apperr.Validationf("invalid employment type %q", j.EmploymentType)
	case !model.ValidExperienceLevel(j.ExperienceLevel):
		return apperr.Validationf("invalid experience level %q", j.ExperienceLevel)
	case !model.ValidLocationType(j.Location.Type):
		return apperr.Validationf("invalid location type %q", j.Location.Type)
	case !model.ValidSalaryPeriod(j.Salary.Period):
		return apperr.Validationf("invalid salary period %q", j.Salary.Period)
	}
	if j.Salary.Min != nil && j.Salary.Max != nil && *j.Salary.Min > *j.Salary.Max {
		return apperr.Validation("salary min must not exceed max")
	}
	return nil
}

func canEditJob(actor Actor, j *model.Job) bool {
	return actor.IsAdmin() || j.PostedBy == actor.ID
}

func (s *JobService) Create(ctx context.Context, actor Actor, in model.JobInput) (*model.Job, error) {
	if actor.Type != model.UserTypeRecruiter && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only recruiters can post jobs")
	}
	now := s.now()
	j := &model.Job{JobID: uuid.NewString(), PostedBy: actor.ID, CreatedAt: now, UpdatedAt: now}
	in.Apply(j)
	j.ApplyDefaults()
	if err := validateJob(j); err != nil {
		return nil, err
	}
	if err := s.jobs.CreateJob(ctx, j); err != nil {
		return nil, errors.Wrap(err, "create job")
	}
	return j, nil
}

// Get returns a posting, counts the view and reports whether a candidate
// caller has applied. actor may be nil for anonymous callers.
func (s *JobService) Get(ctx context.Context, actor *Actor, id string) (*model.JobDetail, error) {
	j, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get job")
	}
	if err := s.jobs.IncrementViewCount(ctx, id); err != nil {
		s.log.Warn("increment view count", zap.String("job_id", id), zap.Error(err))
	} else {
		j.ViewCount++
	}

	detail := &model.JobDetail{Job: j}
	if actor != nil && actor.Type == model.UserTypeCandidate {
		detail.HasApplied, err = s.apps.ApplicationExists(ctx, id, actor.ID)
		if err != nil {
			return nil, errors.Wrap(err, "check application")
		}
	}
	return detail, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// List searches active postings. Every listed job gets a view.
func (s *JobService) List(ctx context.Context, q model.ListJobsQuery) (*JobPage, error) {
	sort := model.JobSort(q.SortBy)
	if sort == "" {
		sort = model.JobSortCreatedAt
	}
	if !sort.Valid() {
		return nil, apperr.Validationf("invalid sort field %q", q.SortBy)
	}
	page, limit, offset := pkg.Paginate(q.Page, q.Limit, pkg.DefaultPageSize)
	f := model.JobFilter{
		Status:          model.JobStatusActive,
		Search:          strings.TrimSpace(q.Search),
		Location:        strings.TrimSpace(q.Location),
		EmploymentType:  q.EmploymentType,
		ExperienceLevel: q.ExperienceLevel,
		MinSalary:       q.MinSalary,
		MaxSalary:       q.MaxSalary,
		Skills:          splitList(q.Skills),
		Company:         strings.TrimSpace(q.Company),
		SortBy:          sort,
		Ascending:       q.SortOrder == "asc",
		Limit:           limit,
		Offset:          offset,
	}
	items, total, err := s.jobs.ListJobs(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list jobs")
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].JobID
	}
	if err := s.jobs.IncrementViewCount(ctx, ids...); err != nil {
		s.log.Warn("increment listed view counts", zap.Int("jobs", len(ids)), zap.Error(err))
	}
	return &JobPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *JobService) MyJobs(ctx context.Context, actor Actor, q model.MyJobsQuery) (*JobPage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validationf("invalid job status %q", q.Status)
	}
	page, limit, offset := pkg.Paginate(q.Page, q.Limit, pkg.DefaultPageSize)
	items, total, err := s.jobs.ListJobs(ctx, model.JobFilter{
		PostedBy: actor.ID,
		Status:   q.Status,
		SortBy:   model.JobSortCreatedAt,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list my jobs")
	}
	return &JobPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *JobService) loadEditable(ctx context.Context, actor Actor, id string) (*model.Job, error) {
	j, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get job")
	}
	if !canEditJob(actor, j) {
		return nil, apperr.Forbidden("not authorized to modify this job")
	}
	return j, nil
}

// Update applies the set fields of in. Ownership and counters cannot be changed.
func (s *JobService) Update(ctx context.Context, actor Actor, id string, in model.JobInput) (*model.Job, error) {
	j, err := s.loadEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.Apply(j)
	j.ApplyDefaults()
	if err := validateJob(j); err != nil {
		return nil, err
	}
	j.UpdatedAt = s.now()
	if err := s.jobs.UpdateJob(ctx, j); err != nil {
		return nil, errors.Wrap(err, "update job")
	}
	return j, nil
}

func (s *JobService) SetStatus(ctx context.Context, actor Actor, id string, status model.JobStatus) (*model.Job, error) {
	if !status.Valid() {
		return nil, apperr.Validationf("invalid job status %q", status)
	}
	if _, err := s.loadEditable(ctx, actor, id); err != nil {
		return nil, err
	}
	j, err := s.jobs.SetJobStatus(ctx, id, status)
	if err != nil {
		return nil, errors.Wrap(err, "set job status")
	}
	return j, nil
}

// Delete removes a posting nobody has applied to.
func (s *JobService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.loadEditable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return errors.Wrap(err, "delete job")
	}
	return nil
}

func (s *JobService) Suggestions(ctx context.Context, q string) (model.JobSuggestions, error) {
	empty := model.JobSuggestions{Titles: []model.Suggestion{}, Companies: []model.Suggestion{}, Skills: []model.Suggestion{}}
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSuggestionQuery {
		return empty, nil
	}
	out, err := s.jobs.JobSuggestions(ctx, q, suggestionLimit)
	if err != nil {
		return empty, errors.Wrap(err, "job suggestions")
	}
	return out, nil
}
