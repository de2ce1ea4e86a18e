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

// ChatService stores room messages and hands every persisted message to the
// Broadcaster.
type ChatService struct {
	chat  ChatStore
	apps  ApplicationStore
	jobs  JobStore
	users UserStore
	bc    Broadcaster
	log   *zap.Logger
	now   Clock
}

func NewChatService(store Store, bc Broadcaster, log *zap.Logger) *ChatService {
	return &ChatService{
		chat:  store,
		apps:  store,
		jobs:  store,
		users: store,
		bc:    bc,
		log:   log,
		now:   systemClock,
	}
}

// room is a resolved room: its members and, for application rooms, the application.
type room struct {
	id           string
	participants []string
	app          *model.Application
}

func (s *ChatService) resolve(ctx context.Context, roomID string) (*room, error) {
	ref, err := ParseRoom(roomID)
	if err != nil {
		return nil, err
	}
	if ref.ApplicationID == "" {
		users, err := s.users.GetUsersByIDs(ctx, ref.Participants)
		if err != nil {
			return nil, errors.Wrap(err, "get room users")
		}
		for _, id := range ref.Participants {
			if users[id] == nil {
				return nil, apperr.NotFound("user")
			}
		}
		return &room{id: roomID, participants: ref.Participants}, nil
	}
	app, err := s.apps.GetApplication(ctx, ref.ApplicationID)
	if err != nil {
		return nil, errors.Wrap(err, "get room application")
	}
	return &room{id: roomID, participants: []string{app.CandidateID, app.RecruiterID}, app: app}, nil
}

// authorize resolves roomID and requires actor to be one of its participants.
func (s *ChatService) authorize(ctx context.Context, actor Actor, roomID string) (*room, error) {
	r, err := s.resolve(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !contains(r.participants, actor.ID) {
		return nil, apperr.Forbidden("not a participant of this room")
	}
	return r, nil
}

// CanJoin reports, as an error, whether actor may subscribe to roomID.
func (s *ChatService) CanJoin(ctx context.Context, actor Actor, roomID string) error {
	_, err := s.authorize(ctx, actor, roomID)
	return err
}

func participant(u *model.User, id string) model.RoomParticipant {
	if u == nil {
		return model.RoomParticipant{ID: id}
	}
	return model.RoomParticipant{ID: id, Name: u.FullName()}
}

// OpenRoom describes the room for a direct pair or for an application.
func (s *ChatService) OpenRoom(ctx context.Context, actor Actor, req model.OpenRoomReq) (*model.Room, error) {
	switch {
	case req.ApplicationID != "":
		app, err := s.apps.GetApplication(ctx, req.ApplicationID)
		if err != nil {
			return nil, errors.Wrap(err, "get application")
		}
		if actor.ID != app.CandidateID && actor.ID != app.RecruiterID {
			return nil, apperr.Forbidden("not authorized to access this chat")
		}
		users, err := s.users.GetUsersByIDs(ctx, []string{app.CandidateID, app.RecruiterID})
		if err != nil {
			return nil, errors.Wrap(err, "get room users")
		}
		out := &model.Room{
			RoomID: ApplicationRoomID(app.ApplicationID),
			Participants: map[string]model.RoomParticipant{
				"candidate": participant(users[app.CandidateID], app.CandidateID),
				"recruiter": participant(users[app.RecruiterID], app.RecruiterID),
			},
			Application: &model.RoomApplication{ID: app.ApplicationID, Status: app.Status},
		}
		if job, err := s.jobs.GetJob(ctx, app.JobID); err == nil {
			out.Application.JobTitle = job.Title
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, errors.Wrap(err, "get application job")
		}
		return out, nil

	case req.ParticipantID != "":
		other, err := s.users.GetUserByID(ctx, req.ParticipantID)
		if err != nil {
			return nil, errors.Wrap(err, "get participant")
		}
		roomID, err := DeriveDirectRoomID(actor.ID, other.UserID)
		if err != nil {
			return nil, err
		}
		return &model.Room{
			RoomID: roomID,
			Participants: map[string]model.RoomParticipant{
				"current": {ID: actor.ID, Name: actor.Name},
				"other":   participant(other, other.UserID),
			},
		}, nil
	}
	return nil, apperr.Validation("either participant_id or application_id is required")
}

func (s *ChatService) ListRooms(ctx context.Context, actor Actor) ([]model.RoomSummary, error) {
	rooms, err := s.chat.ListRooms(ctx, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list rooms")
	}
	return rooms, nil
}

func validateBody(body string, typ model.MessageType, attachments int) error {
	if utf8.RuneCountInString(body) > model.MaxMessageLength {
		return apperr.Validationf("message must be at most %d characters", model.MaxMessageLength)
	}
	if strings.TrimSpace(body) == "" && (typ == model.MessageText || attachments == 0) {
		return apperr.Validation("message cannot be empty")
	}
	return nil
}

// Send persists a message from actor into roomID, marks it read by the sender
// and broadcasts it. A failed broadcast does not fail the send.
func (s *ChatService) Send(ctx context.Context, actor Actor, roomID string, req model.SendMessageReq) (*model.ChatMessage, error) {
	typ := req.MessageType
	if typ == "" {
		typ = model.MessageText
	}
	if !typ.Valid() {
		return nil, apperr.Validationf("invalid message type %q", typ)
	}
	if err := validateBody(req.Message, typ, len(req.Attachments)); err != nil {
		return nil, err
	}
	r, err := s.authorize(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if req.ReplyTo != nil {
		parent, err := s.chat.GetMessage(ctx, *req.ReplyTo)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, errors.Wrap(err, "get reply target")
		}
		if parent == nil || parent.RoomID != roomID {
			return nil, apperr.Validation("reply target is not in this room")
		}
	}

	now := s.now()
	msg := &model.ChatMessage{
		MessageID:    uuid.NewString(),
		RoomID:       roomID,
		Participants: r.participants,
		SenderID:     actor.ID,
		SenderName:   actor.Name,
		Message:      req.Message,
		MessageType:  typ,
		Attachments:  req.Attachments,
		ReadBy:       []model.ReadMarker{{UserID: actor.ID, ReadAt: now}},
		ReplyTo:      req.ReplyTo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if r.app != nil {
		appID, jobID := r.app.ApplicationID, r.app.JobID
		msg.Metadata = model.MessageContext{ApplicationID: &appID, JobID: &jobID}
	}
	if err := s.chat.InsertMessage(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "insert message")
	}

	if s.bc != nil {
		if err := s.bc.Broadcast(ctx, msg); err != nil {
			s.log.Warn("broadcast message", zap.String("room_id", roomID), zap.String("message_id", msg.MessageID), zap.Error(err))
		}
	}
	return msg, nil
}

type MessagePage struct {
	Items []model.ChatMessage
	Page  int
	Limit int
}

// ListMessages returns non-deleted messages newest first.
func (s *ChatService) ListMessages(ctx context.Context, actor Actor, roomID string, q model.ListMessagesQuery) (*MessagePage, error) {
	if _, err := s.authorize(ctx, actor, roomID); err != nil {
		return nil, err
	}
	page, limit, offset := pkg.Paginate(q.Page, q.Limit, model.DefaultMessagePageLen)
	items, err := s.chat.ListRoomMessages(ctx, roomID, offset, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list room messages")
	}
	s.attachSenders(ctx, items)
	return &MessagePage{Items: items, Page: page, Limit: limit}, nil
}

func (s *ChatService) attachSenders(ctx context.Context, items []model.ChatMessage) {
	seen := map[string]bool{}
	var ids []string
	for _, m := range items {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			ids = append(ids, m.SenderID)
		}
	}
	if len(ids) == 0 {
		return
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		s.log.Warn("load message senders", zap.Error(err))
		return
	}
	for i := range items {
		if u, ok := users[items[i].SenderID]; ok {
			pub := u.Public()
			items[i].Sender = &pub
		}
	}
}

// MarkRead adds actor's read marker to a message of roomID. Repeating it is a no-op.
func (s *ChatService) MarkRead(ctx context.Context, actor Actor, roomID, messageID string) error {
	if _, err := s.authorize(ctx, actor, roomID); err != nil {
		return err
	}
	msg, err := s.chat.GetMessage(ctx, messageID)
	if err != nil {
		return errors.Wrap(err, "get message")
	}
	if msg.RoomID != roomID {
		return apperr.NotFound("message")
	}
	if err := s.chat.AddReadMarker(ctx, messageID, actor.ID, s.now()); err != nil {
		return errors.Wrap(err, "add read marker")
	}
	return nil
}

func (s *ChatService) ownMessage(ctx context.Context, actor Actor, messageID string) (*model.ChatMessage, error) {
	msg, err := s.chat.GetMessage(ctx, messageID)
	if err != nil {
		return nil, errors.Wrap(err, "get message")
	}
	if msg.SenderID != actor.ID {
		return nil, apperr.Forbidden("only the sender can change this message")
	}
	return msg, nil
}

// Edit replaces the body of actor's own message. Editing a deleted message is
// allowed; it stays deleted and hidden from listings.
func (s *ChatService) Edit(ctx context.Context, actor Actor, messageID string, req model.EditMessageReq) (*model.ChatMessage, error) {
	if err := validateBody(req.Message, model.MessageText, 0); err != nil {
		return nil, err
	}
	if _, err := s.ownMessage(ctx, actor, messageID); err != nil {
		return nil, err
	}
	msg, err := s.chat.EditMessage(ctx, messageID, req.Message, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "edit message")
	}
	return msg, nil
}

// Delete soft-deletes actor's own message. The body is replaced for good.
func (s *ChatService) Delete(ctx context.Context, actor Actor, messageID string) (*model.ChatMessage, error) {
	if _, err := s.ownMessage(ctx, actor, messageID); err != nil {
		return nil, err
	}
	msg, err := s.chat.SoftDeleteMessage(ctx, messageID, model.DeletedMessageBody, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "delete message")
	}
	return msg, nil
}

// UnreadCount counts messages in actor's rooms, or in roomID when set, that
// actor has not read.
func (s *ChatService) UnreadCount(ctx context.Context, actor Actor, roomID string) (int, error) {
	if roomID != "" {
		if _, err := ParseRoom(roomID); err != nil {
			return 0, err
		}
	}
	n, err := s.chat.CountUnread(ctx, actor.ID, roomID)
	if err != nil {
		return 0, errors.Wrap(err, "count unread")
	}
	return n, nil
}
