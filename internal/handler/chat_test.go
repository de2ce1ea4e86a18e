package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

func TestChatOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "u1", model.UserTypeCandidate)
	s.user(t, "u2", model.UserTypeRecruiter)
	s.user(t, "u3", model.UserTypeCandidate)

	code, env := s.do(t, http.MethodPost, "/api/chat/room", "u2", map[string]any{"participant_id": "u1"})
	require.Equal(t, http.StatusOK, code)
	room := decode[model.Room](t, env.Data)
	assert.Equal(t, "u1_u2", room.RoomID)

	code, env = s.do(t, http.MethodPost, "/api/chat/room/u1_u2/messages", "u1", map[string]any{"message": "hello"})
	require.Equal(t, http.StatusCreated, code)
	msg := decode[model.ChatMessage](t, env.Data)
	assert.True(t, msg.IsReadBy("u1"))

	code, _ = s.do(t, http.MethodGet, "/api/chat/room/u1_u2/messages", "u3", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/chat/unread-count", "u2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decode[map[string]int](t, env.Data)["unread_count"])

	path := "/api/chat/room/u1_u2/messages/" + msg.MessageID + "/read"
	for range 2 {
		code, _ = s.do(t, http.MethodPost, path, "u2", nil)
		require.Equal(t, http.StatusOK, code)
	}
	code, env = s.do(t, http.MethodGet, "/api/chat/unread-count?roomId=u1_u2", "u2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, decode[map[string]int](t, env.Data)["unread_count"])

	code, env = s.do(t, http.MethodGet, "/api/chat/rooms", "u1", nil)
	require.Equal(t, http.StatusOK, code)
	rooms := decode[[]model.RoomSummary](t, env.Data)
	require.Len(t, rooms, 1)
	assert.Equal(t, "hello", rooms[0].LastMessage)

	code, _ = s.do(t, http.MethodPut, "/api/chat/messages/"+msg.MessageID, "u2", map[string]any{"message": "hijack"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodDelete, "/api/chat/messages/"+msg.MessageID, "u1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.DeletedMessageBody, decode[model.ChatMessage](t, env.Data).Message)

	code, env = s.do(t, http.MethodGet, "/api/chat/room/u1_u2/messages", "u2", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]model.ChatMessage](t, env.Data))
}

func TestSendRejectsOversizedMessage(t *testing.T) {
	s := newTestServer(t)
	s.user(t, "u1", model.UserTypeCandidate)

	long := make([]rune, model.MaxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	code, env := s.do(t, http.MethodPost, "/api/chat/room/u1_u2/messages", "u1", map[string]any{"message": string(long)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
