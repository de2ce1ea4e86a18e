package service

import (
	"context"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const (
	maxCoverLetterLength   = 2000
	defaultInterviewLength = 60
)

// ApplicationService owns the application lifecycle: submission, the status
// machine with its audit timeline, notes, interviews and communications.
//
// Concurrent status updates on one application are last-write-wins.
type ApplicationService struct {
	apps ApplicationStore
	jobs JobStore
	log  *zap.Logger
	now  Clock
}

func NewApplicationService(apps ApplicationStore, jobs JobStore, log *zap.Logger) *ApplicationService {
	return &ApplicationService{apps: apps, jobs: jobs, log: log, now: systemClock}
}

// Submit files a pending application for an active job.
func (s *ApplicationService) Submit(ctx context.Context, actor Actor, req model.SubmitApplicationReq) (*model.Application, error) {
	if actor.Type != model.UserTypeCandidate {
		return nil, apperr.Forbidden("only candidates can apply for jobs")
	}
	if utf8.RuneCountInString(req.CoverLetter) > maxCoverLetterLength {
		return nil, apperr.Validationf("cover letter must be at most %d characters", maxCoverLetterLength)
	}

	job, err := s.jobs.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, errors.Wrap(err, "get job")
	}
	if job.Status != model.JobStatusActive {
		return nil, apperr.InvalidState("job is not accepting applications")
	}
	exists, err := s.apps.ApplicationExists(ctx, job.JobID, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check existing application")
	}
	if exists {
		return nil, apperr.Conflict("you have already applied for this job")
	}

	now := s.now()
	app := &model.Application{
		ApplicationID:  uuid.NewString(),
		JobID:          job.JobID,
		CandidateID:    actor.ID,
		RecruiterID:    job.PostedBy,
		Status:         model.StatusPending,
		CoverLetter:    req.CoverLetter,
		Resume:         req.Resume,
		Notes:          []model.Note{},
		Interviews:     []model.Interview{},
		Communications: []model.Communication{},
		Timeline:       model.NewTimeline(model.SubmittedEntry(actor.ID, now)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.apps.CreateApplication(ctx, app); err != nil {
		return nil, errors.Wrap(err, "create application")
	}
	s.adjustApplicationCount(ctx, job.JobID, 1)
	return app, nil
}

// adjustApplicationCount keeps the job counter eventually consistent; a failed
// increment is logged rather than failing the already persisted mutation.
func (s *ApplicationService) adjustApplicationCount(ctx context.Context, jobID string, delta int) {
	if err := s.jobs.IncrementApplicationCount(ctx, jobID, delta); err != nil {
		s.log.Warn("adjust application count", zap.String("job_id", jobID), zap.Int("delta", delta), zap.Error(err))
	}
}

func (s *ApplicationService) load(ctx context.Context, id string) (*model.Application, error) {
	app, err := s.apps.GetApplication(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get application")
	}
	return app, nil
}

// canManage reports whether actor may drive the status machine: the job poster
// captured at submit time, or an admin.
func canManage(actor Actor, app *model.Application) bool {
	return actor.IsAdmin() || actor.ID == app.RecruiterID
}

func isParty(actor Actor, app *model.Application) bool {
	return canManage(actor, app) || actor.ID == app.CandidateID
}

// nextEntry clamps e so that it sorts after the current tail of app's timeline.
func nextEntry(app *model.Application, e model.TimelineEntry) model.TimelineEntry {
	last, _ := app.Timeline.Append(e).Last()
	return last
}

// UpdateStatus moves an application to any known status. Transitions are not
// restricted to a table.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor Actor, id string, req model.UpdateStatusReq) (*model.Application, error) {
	if !req.Status.Valid() {
		return nil, apperr.Validationf("invalid status %q", req.Status)
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, app) {
		return nil, apperr.Forbidden("not authorized to update this application")
	}

	entry := nextEntry(app, model.StatusChangedEntry(req.Status, actor.ID, req.Notes, s.now()))
	var note *model.Note
	if req.Notes != "" {
		note = &model.Note{AddedBy: actor.ID, Content: req.Notes, AddedAt: entry.Timestamp}
	}
	updated, err := s.apps.SetApplicationStatus(ctx, id, req.Status, entry, note)
	if err != nil {
		return nil, errors.Wrap(err, "set application status")
	}

	prev := app.Status
	switch {
	case prev != model.StatusWithdrawn && req.Status == model.StatusWithdrawn:
		s.adjustApplicationCount(ctx, app.JobID, -1)
	case prev == model.StatusWithdrawn && req.Status != model.StatusWithdrawn:
		s.adjustApplicationCount(ctx, app.JobID, 1)
	}
	return updated, nil
}

// Withdraw lets the candidate cancel an application that is not yet decided.
func (s *ApplicationService) Withdraw(ctx context.Context, actor Actor, id string) (*model.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != app.CandidateID {
		return nil, apperr.Forbidden("only the candidate can withdraw this application")
	}
	if app.Status.Terminal() {
		return nil, apperr.InvalidState("application can no longer be withdrawn")
	}
	entry := nextEntry(app, model.WithdrawnEntry(actor.ID, s.now()))
	updated, err := s.apps.SetApplicationStatus(ctx, id, model.StatusWithdrawn, entry, nil)
	if err != nil {
		return nil, errors.Wrap(err, "withdraw application")
	}
	s.adjustApplicationCount(ctx, app.JobID, -1)
	return viewFor(actor, updated), nil
}

func (s *ApplicationService) AddNote(ctx context.Context, actor Actor, id string, req model.AddNoteReq) (*model.Application, error) {
	if req.Content == "" {
		return nil, apperr.Validation("note content is required")
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParty(actor, app) {
		return nil, apperr.Forbidden("not authorized to add notes")
	}
	note := model.Note{AddedBy: actor.ID, Content: req.Content, IsPrivate: req.IsPrivate, AddedAt: s.now()}
	updated, err := s.apps.AppendNote(ctx, id, note)
	if err != nil {
		return nil, errors.Wrap(err, "append note")
	}
	return viewFor(actor, updated), nil
}

func (s *ApplicationService) ScheduleInterview(ctx context.Context, actor Actor, id string, req model.ScheduleInterviewReq) (*model.Application, error) {
	if !req.Type.Valid() {
		return nil, apperr.Validationf("invalid interview type %q", req.Type)
	}
	if req.ScheduledAt.IsZero() {
		return nil, apperr.Validation("scheduled_at is required")
	}
	if req.Duration < 0 {
		return nil, apperr.Validation("duration must be positive")
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, app) {
		return nil, apperr.Forbidden("not authorized to schedule interviews")
	}

	duration := req.Duration
	if duration == 0 {
		duration = defaultInterviewLength
	}
	iv := model.Interview{
		ScheduledBy: actor.ID,
		ScheduledAt: req.ScheduledAt,
		Duration:    duration,
		Type:        req.Type,
		Location:    req.Location,
		MeetingLink: req.MeetingLink,
		Status:      model.InterviewScheduled,
	}
	entry := nextEntry(app, model.InterviewScheduledEntry(actor.ID, req.ScheduledAt, s.now()))
	updated, err := s.apps.AppendInterview(ctx, id, iv, entry)
	if err != nil {
		return nil, errors.Wrap(err, "append interview")
	}
	return updated, nil
}

func (s *ApplicationService) AddCommunication(ctx context.Context, actor Actor, id string, req model.AddCommunicationReq) (*model.Application, error) {
	if !req.Type.Valid() {
		return nil, apperr.Validationf("invalid communication type %q", req.Type)
	}
	if req.Content == "" {
		return nil, apperr.Validation("communication content is required")
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParty(actor, app) {
		return nil, apperr.Forbidden("not authorized to add communications")
	}
	c := model.Communication{Type: req.Type, Content: req.Content, SentBy: actor.ID, SentAt: s.now()}
	updated, err := s.apps.AppendCommunication(ctx, id, c)
	if err != nil {
		return nil, errors.Wrap(err, "append communication")
	}
	return viewFor(actor, updated), nil
}

// Get returns one application as seen by actor.
func (s *ApplicationService) Get(ctx context.Context, actor Actor, id string) (*model.Application, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParty(actor, app) {
		return nil, apperr.Forbidden("not authorized to view this application")
	}
	return viewFor(actor, app), nil
}

// viewFor hides other authors' private notes from the candidate.
func viewFor(actor Actor, app *model.Application) *model.Application {
	if actor.ID != app.CandidateID || canManage(actor, app) {
		return app
	}
	notes := make([]model.Note, 0, len(app.Notes))
	for _, n := range app.Notes {
		if n.IsPrivate && n.AddedBy != actor.ID {
			continue
		}
		notes = append(notes, n)
	}
	out := *app
	out.Notes = notes
	return &out
}

func applicationFilter(q model.ListApplicationsQuery) (model.ApplicationFilter, int, int, error) {
	if q.Status != "" && !q.Status.Valid() {
		return model.ApplicationFilter{}, 0, 0, apperr.Validationf("invalid status %q", q.Status)
	}
	page, limit, offset := pkg.Paginate(q.Page, q.Limit, pkg.DefaultPageSize)
	return model.ApplicationFilter{
		Status:    q.Status,
		SortBy:    q.SortBy,
		Ascending: q.SortOrder == "asc",
		Limit:     limit,
		Offset:    offset,
	}, page, limit, nil
}

// ApplicationPage is one page of a listing.
type ApplicationPage struct {
	Items []model.Application
	Total int
	Page  int
	Limit int
}

func (s *ApplicationService) ListForCandidate(ctx context.Context, actor Actor, q model.ListApplicationsQuery) (*ApplicationPage, error) {
	f, page, limit, err := applicationFilter(q)
	if err != nil {
		return nil, err
	}
	f.CandidateID = actor.ID
	items, total, err := s.apps.ListApplications(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list candidate applications")
	}
	for i := range items {
		items[i] = *viewFor(actor, &items[i])
	}
	return &ApplicationPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ApplicationService) ListForJob(ctx context.Context, actor Actor, jobID string, q model.ListApplicationsQuery) (*ApplicationPage, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, errors.Wrap(err, "get job")
	}
	if !actor.IsAdmin() && job.PostedBy != actor.ID {
		return nil, apperr.Forbidden("not authorized to view applications for this job")
	}
	f, page, limit, err := applicationFilter(q)
	if err != nil {
		return nil, err
	}
	f.JobID = jobID
	items, total, err := s.apps.ListApplications(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list job applications")
	}
	return &ApplicationPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// DashboardStats aggregates application counts for the caller. Admins get
// zero-valued stats.
func (s *ApplicationService) DashboardStats(ctx context.Context, actor Actor) (*model.DashboardStats, error) {
	var f model.ApplicationFilter
	stats := &model.DashboardStats{}
	switch actor.Type {
	case model.UserTypeCandidate:
		f.CandidateID = actor.ID
	case model.UserTypeRecruiter:
		ids, err := s.jobs.ListJobIDsByPoster(ctx, actor.ID)
		if err != nil {
			return nil, errors.Wrap(err, "list recruiter jobs")
		}
		total := len(ids)
		stats.TotalJobs = &total
		f.JobIDs = append([]string{}, ids...)
	default:
		return stats, nil
	}

	counts, err := s.apps.CountApplicationsByStatus(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "count applications")
	}
	stats.ByStatus = counts
	for _, n := range counts {
		stats.TotalApplications += n
	}
	stats.PendingApplications = counts[model.StatusPending]
	stats.ShortlistedApplications = counts[model.StatusShortlisted]
	stats.InterviewedApplications = counts[model.StatusInterviewed]
	return stats, nil
}
