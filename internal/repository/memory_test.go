package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

func TestMemoryApplicationUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := &model.Application{ApplicationID: "a1", JobID: "j1", CandidateID: "c1"}
	require.NoError(t, s.CreateApplication(ctx, a))

	dup := &model.Application{ApplicationID: "a2", JobID: "j1", CandidateID: "c1"}
	assert.ErrorIs(t, s.CreateApplication(ctx, dup), apperr.ErrConflict)

	ok, err := s.ApplicationExists(ctx, "j1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateApplication(ctx, &model.Application{ApplicationID: "a1", JobID: "j1", CandidateID: "c1"}))

	got, err := s.GetApplication(ctx, "a1")
	require.NoError(t, err)
	got.Notes = append(got.Notes, model.Note{Content: "local"})

	again, err := s.GetApplication(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, again.Notes)
}

func TestMemoryConcurrentApplicationCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateJob(ctx, &model.Job{JobID: "j1"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.IncrementApplicationCount(ctx, "j1", 1)
		}()
	}
	wg.Wait()

	j, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, 50, j.ApplicationCount)
}

func TestMemoryDeleteReferencedJob(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateJob(ctx, &model.Job{JobID: "j1"}))
	require.NoError(t, s.CreateApplication(ctx, &model.Application{ApplicationID: "a1", JobID: "j1", CandidateID: "c1"}))

	assert.ErrorIs(t, s.DeleteJob(ctx, "j1"), apperr.ErrConflict)
	assert.ErrorIs(t, s.DeleteJob(ctx, "nope"), apperr.ErrNotFound)
}

func TestMemoryRoomsAndUnread(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	insert := func(id, room, sender string, at time.Time, parts ...string) {
		require.NoError(t, s.InsertMessage(ctx, &model.ChatMessage{
			MessageID: id, RoomID: room, SenderID: sender, Participants: parts,
			Message: "msg " + id, CreatedAt: at,
		}))
	}
	insert("m1", "u1_u2", "u1", base, "u1", "u2")
	insert("m2", "u1_u2", "u2", base.Add(time.Minute), "u1", "u2")
	insert("m3", "u1_u3", "u3", base.Add(2*time.Minute), "u1", "u3")
	insert("m4", "u2_u3", "u2", base.Add(3*time.Minute), "u2", "u3")

	n, err := s.CountUnread(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rooms, err := s.ListRooms(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "u1_u3", rooms[0].RoomID)
	assert.Equal(t, "msg m2", rooms[1].LastMessage)
	assert.Equal(t, 1, rooms[1].UnreadCount)

	require.NoError(t, s.AddReadMarker(ctx, "m2", "u1", base))
	require.NoError(t, s.AddReadMarker(ctx, "m2", "u1", base))
	m, err := s.GetMessage(ctx, "m2")
	require.NoError(t, err)
	assert.Len(t, m.ReadBy, 2)

	n, err = s.CountUnread(ctx, "u1", "u1_u2")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryListRoomMessagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.InsertMessage(ctx, &model.ChatMessage{
			MessageID: id, RoomID: "r", SenderID: "u1", Participants: []string{"u1", "u2"}, CreatedAt: at,
		}))
	}
	_, err := s.SoftDeleteMessage(ctx, "b", model.DeletedMessageBody, at)
	require.NoError(t, err)

	msgs, err := s.ListRoomMessages(ctx, "r", 0, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "c", msgs[0].MessageID)
	assert.Equal(t, "a", msgs[1].MessageID)

	msgs, err = s.ListRoomMessages(ctx, "r", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMemoryListJobsFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	low, high := 40000, 120000
	require.NoError(t, s.CreateJob(ctx, &model.Job{
		JobID: "j1", Title: "Go Engineer", Status: model.JobStatusActive,
		Salary: model.Salary{Min: &high}, Skills: []model.Skill{{Name: "go"}},
		CreatedAt: time.Unix(1, 0),
	}))
	require.NoError(t, s.CreateJob(ctx, &model.Job{
		JobID: "j2", Title: "Designer", Status: model.JobStatusActive,
		Salary: model.Salary{Min: &low}, CreatedAt: time.Unix(2, 0),
	}))
	require.NoError(t, s.CreateJob(ctx, &model.Job{JobID: "j3", Title: "Go Intern", Status: model.JobStatusDraft}))

	jobs, total, err := s.ListJobs(ctx, model.JobFilter{Status: model.JobStatusActive, Search: "engineer"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "j1", jobs[0].JobID)

	floor := 50000
	jobs, _, err = s.ListJobs(ctx, model.JobFilter{Status: model.JobStatusActive, MinSalary: &floor})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "j1", jobs[0].JobID)

	jobs, _, err = s.ListJobs(ctx, model.JobFilter{Status: model.JobStatusActive})
	require.NoError(t, err)
	assert.Equal(t, "j2", jobs[0].JobID)

	sugg, err := s.JobSuggestions(ctx, "go", 5)
	require.NoError(t, err)
	assert.Equal(t, []model.Suggestion{{Value: "Go Engineer", Count: 1}}, sugg.Titles)
	assert.Equal(t, []model.Suggestion{{Value: "go", Count: 1}}, sugg.Skills)
}
