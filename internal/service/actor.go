package service

import "github.com/pawangupta079/skill-hire/pkg/model"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Name string
	Type model.UserType
}

func ActorFromUser(u *model.User) Actor {
	return Actor{ID: u.UserID, Name: u.FullName(), Type: u.UserType}
}

func (a Actor) IsAdmin() bool { return a.Type == model.UserTypeAdmin }
