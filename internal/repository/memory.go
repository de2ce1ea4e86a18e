package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

// MemoryStore keeps every record in process memory. It backs STORE_DRIVER=memory
// and the service tests, and mirrors the Postgres semantics: unique keys,
// atomic counters, idempotent read markers.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*model.User
	emails   map[string]string
	jobs     map[string]*model.Job
	apps     map[string]*model.Application
	appKeys  map[string]string
	messages map[string]*model.ChatMessage
	seq      map[string]int
	nextSeq  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*model.User),
		emails:   make(map[string]string),
		jobs:     make(map[string]*model.Job),
		apps:     make(map[string]*model.Application),
		appKeys:  make(map[string]string),
		messages: make(map[string]*model.ChatMessage),
		seq:      make(map[string]int),
	}
}

func appKey(jobID, candidateID string) string { return jobID + "|" + candidateID }

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// --- users ---

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Profile.Skills = append([]string(nil), u.Profile.Skills...)
	c.Profile.Experience = append([]model.Experience(nil), u.Profile.Experience...)
	c.Profile.Education = append([]model.Education(nil), u.Profile.Education...)
	c.Preferences.JobAlerts.Keywords = append([]string(nil), u.Preferences.JobAlerts.Keywords...)
	return &c
}

func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := s.emails[email]; ok {
		return apperr.Conflict("email already registered")
	}
	s.users[u.UserID] = cloneUser(u)
	s.emails[email] = u.UserID
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return cloneUser(s.users[id]), nil
}

func (s *MemoryStore) GetUsersByIDs(_ context.Context, ids []string) (map[string]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateUserProfile(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.UserID]
	if !ok {
		return apperr.NotFound("user")
	}
	next := cloneUser(cur)
	next.FirstName = u.FirstName
	next.LastName = u.LastName
	next.Profile = u.Profile
	next.Company = u.Company
	next.Preferences = u.Preferences
	next.UpdatedAt = u.UpdatedAt
	s.users[u.UserID] = cloneUser(next)
	return nil
}

func (s *MemoryStore) SetUserActive(_ context.Context, id string, active bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	u.IsActive = active
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (s *MemoryStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.LastLogin = &at
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context, f model.UserFilter) ([]model.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	var out []model.User
	for _, u := range s.users {
		if f.UserType != "" && u.UserType != f.UserType {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.FirstName), search) &&
			!strings.Contains(strings.ToLower(u.LastName), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Offset, f.Limit), len(out), nil
}

// --- jobs ---

func cloneJob(j *model.Job) *model.Job {
	c := *j
	c.Skills = append([]model.Skill(nil), j.Skills...)
	c.Requirements = append([]string(nil), j.Requirements...)
	c.Benefits = append([]string(nil), j.Benefits...)
	c.Responsibilities = append([]string(nil), j.Responsibilities...)
	c.Tags = append([]string(nil), j.Tags...)
	return &c
}

func (s *MemoryStore) CreateJob(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.JobID] = cloneJob(j)
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, apperr.NotFound("job")
	}
	return cloneJob(j), nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[j.JobID]
	if !ok {
		return apperr.NotFound("job")
	}
	next := cloneJob(j)
	// counters are owned by the increment path
	next.ViewCount = cur.ViewCount
	next.ApplicationCount = cur.ApplicationCount
	s.jobs[j.JobID] = next
	return nil
}

func (s *MemoryStore) SetJobStatus(_ context.Context, id string, status model.JobStatus) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, apperr.NotFound("job")
	}
	j.Status = status
	j.UpdatedAt = time.Now().UTC()
	return cloneJob(j), nil
}

func (s *MemoryStore) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return apperr.NotFound("job")
	}
	for _, a := range s.apps {
		if a.JobID == id {
			return apperr.Conflict("job has applications, close it instead")
		}
	}
	delete(s.jobs, id)
	return nil
}

func jobMatches(j *model.Job, f model.JobFilter) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.PostedBy != "" && j.PostedBy != f.PostedBy {
		return false
	}
	if f.Search != "" {
		hay := strings.ToLower(strings.Join([]string{j.Title, j.Description, j.Company.Name}, " "))
		for _, sk := range j.Skills {
			hay += " " + strings.ToLower(sk.Name)
		}
		hay += " " + strings.ToLower(strings.Join(j.Tags, " "))
		hit := false
		for _, term := range strings.Fields(strings.ToLower(f.Search)) {
			if strings.Contains(hay, term) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Location != "" {
		loc := strings.ToLower(f.Location)
		if !strings.Contains(strings.ToLower(j.Location.City), loc) &&
			!strings.Contains(strings.ToLower(j.Location.State), loc) &&
			!strings.Contains(strings.ToLower(j.Location.Country), loc) &&
			j.Location.Type != f.Location {
			return false
		}
	}
	if f.EmploymentType != "" && j.EmploymentType != f.EmploymentType {
		return false
	}
	if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.MinSalary != nil && (j.Salary.Min == nil || *j.Salary.Min < *f.MinSalary) {
		return false
	}
	if f.MaxSalary != nil && (j.Salary.Max == nil || *j.Salary.Max > *f.MaxSalary) {
		return false
	}
	if len(f.Skills) > 0 {
		hit := false
		for _, want := range f.Skills {
			for _, sk := range j.Skills {
				if sk.Name == want {
					hit = true
				}
			}
		}
		if !hit {
			return false
		}
	}
	if f.Company != "" && !strings.Contains(strings.ToLower(j.Company.Name), strings.ToLower(f.Company)) {
		return false
	}
	return true
}

func salaryMin(j model.Job) int {
	if j.Salary.Min == nil {
		return 0
	}
	return *j.Salary.Min
}

func (s *MemoryStore) ListJobs(_ context.Context, f model.JobFilter) ([]model.Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Job
	for _, j := range s.jobs {
		if jobMatches(j, f) {
			out = append(out, *cloneJob(j))
		}
	}
	less := func(a, b model.Job) bool {
		switch f.SortBy {
		case model.JobSortSalary:
			return salaryMin(a) < salaryMin(b)
		case model.JobSortViewCount:
			return a.ViewCount < b.ViewCount
		case model.JobSortApplicationCount:
			return a.ApplicationCount < b.ApplicationCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return page(out, f.Offset, f.Limit), len(out), nil
}

func (s *MemoryStore) ListJobIDsByPoster(_ context.Context, posterID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, j := range s.jobs {
		if j.PostedBy == posterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func topSuggestions(counts map[string]int, q string, limit int) []model.Suggestion {
	q = strings.ToLower(q)
	out := []model.Suggestion{}
	for v, n := range counts {
		if v != "" && strings.Contains(strings.ToLower(v), q) {
			out = append(out, model.Suggestion{Value: v, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryStore) JobSuggestions(_ context.Context, q string, limit int) (model.JobSuggestions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles, companies, skills := map[string]int{}, map[string]int{}, map[string]int{}
	for _, j := range s.jobs {
		if j.Status != model.JobStatusActive {
			continue
		}
		titles[j.Title]++
		companies[j.Company.Name]++
		for _, sk := range j.Skills {
			skills[sk.Name]++
		}
	}
	return model.JobSuggestions{
		Titles:    topSuggestions(titles, q, limit),
		Companies: topSuggestions(companies, q, limit),
		Skills:    topSuggestions(skills, q, limit),
	}, nil
}

func (s *MemoryStore) IncrementViewCount(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if j, ok := s.jobs[id]; ok {
			j.ViewCount++
		}
	}
	return nil
}

func (s *MemoryStore) IncrementApplicationCount(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return apperr.NotFound("job")
	}
	j.ApplicationCount += delta
	if j.ApplicationCount < 0 {
		j.ApplicationCount = 0
	}
	return nil
}

// --- applications ---

func cloneApp(a *model.Application) *model.Application {
	c := *a
	c.Notes = append([]model.Note(nil), a.Notes...)
	c.Interviews = append([]model.Interview(nil), a.Interviews...)
	c.Communications = append([]model.Communication(nil), a.Communications...)
	return &c
}

func (s *MemoryStore) CreateApplication(_ context.Context, a *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := appKey(a.JobID, a.CandidateID)
	if _, ok := s.appKeys[key]; ok {
		return apperr.Conflict("you have already applied for this job")
	}
	s.apps[a.ApplicationID] = cloneApp(a)
	s.appKeys[key] = a.ApplicationID
	return nil
}

func (s *MemoryStore) GetApplication(_ context.Context, id string) (*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, apperr.NotFound("application")
	}
	return cloneApp(a), nil
}

func (s *MemoryStore) ApplicationExists(_ context.Context, jobID, candidateID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.appKeys[appKey(jobID, candidateID)]
	return ok, nil
}

func appMatches(a *model.Application, f model.ApplicationFilter) bool {
	if f.CandidateID != "" && a.CandidateID != f.CandidateID {
		return false
	}
	if f.JobID != "" && a.JobID != f.JobID {
		return false
	}
	if f.JobIDs != nil {
		hit := false
		for _, id := range f.JobIDs {
			if id == a.JobID {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

func (s *MemoryStore) ListApplications(_ context.Context, f model.ApplicationFilter) ([]model.Application, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Application
	for _, a := range s.apps {
		if appMatches(a, f) {
			out = append(out, *cloneApp(a))
		}
	}
	less := func(a, b model.Application) bool {
		switch f.SortBy {
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "status":
			return a.Status < b.Status
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return page(out, f.Offset, f.Limit), len(out), nil
}

func (s *MemoryStore) CountApplicationsByStatus(_ context.Context, f model.ApplicationFilter) (map[model.ApplicationStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.ApplicationStatus]int)
	for _, a := range s.apps {
		if appMatches(a, f) {
			out[a.Status]++
		}
	}
	return out, nil
}

func (s *MemoryStore) mutateApp(id string, fn func(a *model.Application)) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.apps[id]
	if !ok {
		return nil, apperr.NotFound("application")
	}
	next := cloneApp(cur)
	fn(next)
	s.apps[id] = next
	return cloneApp(next), nil
}

func (s *MemoryStore) SetApplicationStatus(_ context.Context, id string, status model.ApplicationStatus, entry model.TimelineEntry, note *model.Note) (*model.Application, error) {
	return s.mutateApp(id, func(a *model.Application) {
		a.Status = status
		a.Timeline = a.Timeline.Append(entry)
		if note != nil {
			a.Notes = append(a.Notes, *note)
		}
		a.UpdatedAt = entry.Timestamp
	})
}

func (s *MemoryStore) AppendNote(_ context.Context, id string, note model.Note) (*model.Application, error) {
	return s.mutateApp(id, func(a *model.Application) {
		a.Notes = append(a.Notes, note)
		a.UpdatedAt = note.AddedAt
	})
}

func (s *MemoryStore) AppendInterview(_ context.Context, id string, iv model.Interview, entry model.TimelineEntry) (*model.Application, error) {
	return s.mutateApp(id, func(a *model.Application) {
		a.Interviews = append(a.Interviews, iv)
		a.Timeline = a.Timeline.Append(entry)
		a.UpdatedAt = entry.Timestamp
	})
}

func (s *MemoryStore) AppendCommunication(_ context.Context, id string, c model.Communication) (*model.Application, error) {
	return s.mutateApp(id, func(a *model.Application) {
		a.Communications = append(a.Communications, c)
		a.UpdatedAt = c.SentAt
	})
}

// --- chat ---

func cloneMessage(m *model.ChatMessage) *model.ChatMessage {
	c := *m
	c.Participants = append([]string(nil), m.Participants...)
	c.Attachments = append([]model.Attachment(nil), m.Attachments...)
	c.ReadBy = append([]model.ReadMarker(nil), m.ReadBy...)
	return &c
}

func (s *MemoryStore) InsertMessage(_ context.Context, m *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !m.IsReadBy(m.SenderID) {
		m.ReadBy = append(m.ReadBy, model.ReadMarker{UserID: m.SenderID, ReadAt: m.CreatedAt})
	}
	s.messages[m.MessageID] = cloneMessage(m)
	s.nextSeq++
	s.seq[m.MessageID] = s.nextSeq
	return nil
}

func (s *MemoryStore) GetMessage(_ context.Context, id string) (*model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, apperr.NotFound("message")
	}
	return cloneMessage(m), nil
}

// newestFirst orders by creation time, then insertion order, descending.
func (s *MemoryStore) newestFirst(out []model.ChatMessage) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].MessageID] > s.seq[out[j].MessageID]
	})
}

func (s *MemoryStore) ListRoomMessages(_ context.Context, roomID string, offset, limit int) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ChatMessage
	for _, m := range s.messages {
		if m.RoomID == roomID && !m.IsDeleted {
			out = append(out, *cloneMessage(m))
		}
	}
	s.newestFirst(out)
	return page(out, offset, limit), nil
}

func (s *MemoryStore) AddReadMarker(_ context.Context, messageID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok {
		return apperr.NotFound("message")
	}
	if m.IsReadBy(userID) {
		return nil
	}
	m.ReadBy = append(m.ReadBy, model.ReadMarker{UserID: userID, ReadAt: at})
	return nil
}

func (s *MemoryStore) EditMessage(_ context.Context, id, body string, at time.Time) (*model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, apperr.NotFound("message")
	}
	m.Message = body
	m.IsEdited = true
	m.EditedAt = &at
	m.UpdatedAt = at
	return cloneMessage(m), nil
}

func (s *MemoryStore) SoftDeleteMessage(_ context.Context, id, placeholder string, at time.Time) (*model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, apperr.NotFound("message")
	}
	if !m.IsDeleted {
		m.IsDeleted = true
		m.DeletedAt = &at
	}
	m.Message = placeholder
	m.UpdatedAt = at
	return cloneMessage(m), nil
}

func (s *MemoryStore) CountUnread(_ context.Context, userID, roomID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.IsDeleted || !m.HasParticipant(userID) || m.IsReadBy(userID) {
			continue
		}
		if roomID != "" && m.RoomID != roomID {
			continue
		}
		n++
	}
	return n, nil
}

func (s *MemoryStore) ListRooms(_ context.Context, userID string) ([]model.RoomSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var mine []model.ChatMessage
	for _, m := range s.messages {
		if !m.IsDeleted && m.HasParticipant(userID) {
			mine = append(mine, *m)
		}
	}
	s.newestFirst(mine)
	index := map[string]int{}
	rooms := []model.RoomSummary{}
	for _, m := range mine {
		i, ok := index[m.RoomID]
		if !ok {
			// newest message of the room comes first
			index[m.RoomID] = len(rooms)
			rooms = append(rooms, model.RoomSummary{
				RoomID:          m.RoomID,
				Participants:    append([]string(nil), m.Participants...),
				LastMessage:     m.Message,
				LastMessageTime: m.CreatedAt,
			})
			i = len(rooms) - 1
		}
		if !m.IsReadBy(userID) {
			rooms[i].UnreadCount++
		}
	}
	return rooms, nil
}
