package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawangupta079/skill-hire/internal/repository"
	"github.com/pawangupta079/skill-hire/pkg"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

type fixture struct {
	store *repository.MemoryStore
	apps  *ApplicationService
	jobs  *JobService
	chat  *ChatService
	users *UserService
	bc    *recordingBroadcaster
	clock *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []*model.ChatMessage
	err  error
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, m *model.ChatMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, m)
	return b.err
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	bc := &recordingBroadcaster{}
	log := zap.NewNop()

	f := &fixture{
		store: store,
		apps:  NewApplicationService(store, store, log),
		jobs:  NewJobService(store, store, log),
		chat:  NewChatService(store, bc, log),
		users: NewUserService(store, pkg.PasswordHasher{Cost: bcrypt.MinCost}, log),
		bc:    bc,
		clock: clock,
	}
	f.apps.now = clock.Now
	f.jobs.now = clock.Now
	f.chat.now = clock.Now
	f.users.now = clock.Now
	return f
}

func (f *fixture) user(t *testing.T, id string, typ model.UserType) Actor {
	t.Helper()
	u := &model.User{
		UserID:    id,
		FirstName: "User",
		LastName:  id,
		Email:     id + "@example.com",
		UserType:  typ,
		IsActive:  true,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return ActorFromUser(u)
}

func (f *fixture) job(t *testing.T, poster Actor, status model.JobStatus) *model.Job {
	t.Helper()
	title, desc := "Backend Engineer", "Build services"
	in := model.JobInput{
		Title:       &title,
		Description: &desc,
		Company:     &model.Company{Name: "Acme"},
		Status:      &status,
	}
	j, err := f.jobs.Create(context.Background(), poster, in)
	require.NoError(t, err)
	return j
}

func (f *fixture) applicationCount(t *testing.T, jobID string) int {
	t.Helper()
	j, err := f.store.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	return j.ApplicationCount
}
