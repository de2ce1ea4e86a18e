package service

import (
	"context"
	"time"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

// Store lookups return an apperr NotFound error when the record is absent and
// an apperr Conflict error when a unique key is violated.

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	UpdateUserProfile(ctx context.Context, u *model.User) error
	SetUserActive(ctx context.Context, id string, active bool) (*model.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	ListUsers(ctx context.Context, f model.UserFilter) ([]model.User, int, error)
}

type JobStore interface {
	CreateJob(ctx context.Context, j *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	UpdateJob(ctx context.Context, j *model.Job) error
	SetJobStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, f model.JobFilter) ([]model.Job, int, error)
	ListJobIDsByPoster(ctx context.Context, posterID string) ([]string, error)
	JobSuggestions(ctx context.Context, q string, limit int) (model.JobSuggestions, error)

	// Counter updates are single atomic increments in the store.
	IncrementViewCount(ctx context.Context, ids ...string) error
	IncrementApplicationCount(ctx context.Context, id string, delta int) error
}

type ApplicationStore interface {
	CreateApplication(ctx context.Context, a *model.Application) error
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	ApplicationExists(ctx context.Context, jobID, candidateID string) (bool, error)
	ListApplications(ctx context.Context, f model.ApplicationFilter) ([]model.Application, int, error)
	CountApplicationsByStatus(ctx context.Context, f model.ApplicationFilter) (map[model.ApplicationStatus]int, error)

	// Each mutation below is one write that appends to the record's logs.
	SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus, entry model.TimelineEntry, note *model.Note) (*model.Application, error)
	AppendNote(ctx context.Context, id string, note model.Note) (*model.Application, error)
	AppendInterview(ctx context.Context, id string, iv model.Interview, entry model.TimelineEntry) (*model.Application, error)
	AppendCommunication(ctx context.Context, id string, c model.Communication) (*model.Application, error)
}

type ChatStore interface {
	// InsertMessage persists m and records the sender's read marker.
	InsertMessage(ctx context.Context, m *model.ChatMessage) error
	GetMessage(ctx context.Context, id string) (*model.ChatMessage, error)
	ListRoomMessages(ctx context.Context, roomID string, offset, limit int) ([]model.ChatMessage, error)
	// AddReadMarker is a no-op when the marker already exists.
	AddReadMarker(ctx context.Context, messageID, userID string, at time.Time) error
	EditMessage(ctx context.Context, id, body string, at time.Time) (*model.ChatMessage, error)
	SoftDeleteMessage(ctx context.Context, id, placeholder string, at time.Time) (*model.ChatMessage, error)
	CountUnread(ctx context.Context, userID, roomID string) (int, error)
	ListRooms(ctx context.Context, userID string) ([]model.RoomSummary, error)
}

// Store bundles every persistence capability the services consume.
type Store interface {
	UserStore
	JobStore
	ApplicationStore
	ChatStore
}

// Broadcaster relays a persisted chat message to the subscribers of its room.
// Delivery is best effort.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *model.ChatMessage) error
}

// Clock is swapped in tests.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
