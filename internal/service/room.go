package service

import (
	"sort"
	"strings"

	"github.com/pawangupta079/skill-hire/internal/apperr"
)

const (
	applicationRoomPrefix = "app_"
	roomSeparator         = "_"
)

// DeriveDirectRoomID returns the room shared by exactly two distinct users.
// The result does not depend on argument order.
func DeriveDirectRoomID(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", apperr.Validation("both participant ids are required")
	}
	if a == b {
		return "", apperr.Validation("a direct room needs two distinct participants")
	}
	if strings.Contains(a, roomSeparator) || strings.Contains(b, roomSeparator) {
		return "", apperr.Validation("participant ids must not contain '_'")
	}
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, roomSeparator), nil
}

func ApplicationRoomID(applicationID string) string {
	return applicationRoomPrefix + applicationID
}

// RoomRef is a parsed room id. Exactly one of ApplicationID or Participants is set.
type RoomRef struct {
	ID            string
	ApplicationID string
	Participants  []string
}

func ParseRoom(roomID string) (RoomRef, error) {
	if id, ok := strings.CutPrefix(roomID, applicationRoomPrefix); ok {
		if id == "" {
			return RoomRef{}, apperr.Validationf("invalid room id %q", roomID)
		}
		return RoomRef{ID: roomID, ApplicationID: id}, nil
	}
	parts := strings.Split(roomID, roomSeparator)
	if len(parts) != 2 {
		return RoomRef{}, apperr.Validationf("invalid room id %q", roomID)
	}
	canonical, err := DeriveDirectRoomID(parts[0], parts[1])
	if err != nil || canonical != roomID {
		return RoomRef{}, apperr.Validationf("invalid room id %q", roomID)
	}
	return RoomRef{ID: roomID, Participants: parts}, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
