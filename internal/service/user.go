package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

type UserService struct {
	users  UserStore
	hasher pkg.PasswordHasher
	log    *zap.Logger
	now    Clock
}

func NewUserService(users UserStore, hasher pkg.PasswordHasher, log *zap.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, log: log, now: systemClock}
}

func (s *UserService) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	userType := req.UserType
	if userType == "" {
		userType = model.UserTypeCandidate
	}
	if userType != model.UserTypeCandidate && userType != model.UserTypeRecruiter {
		return nil, apperr.Validation("user type must be candidate or recruiter")
	}
	if len(req.Password) < pkg.MinPasswordLength {
		return nil, apperr.Validationf("password must be at least %d characters", pkg.MinPasswordLength)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.FirstName) == "" {
		return nil, apperr.Validation("first name and email are required")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	now := s.now()
	u := &model.User{
		UserID:       uuid.NewString(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		UserType:     userType,
		Preferences:  model.DefaultPreferences(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Authenticate checks credentials and records the login time.
func (s *UserService) Authenticate(ctx context.Context, req model.LoginReq) (*model.User, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user by email")
	}
	if !s.hasher.Matches(u.PasswordHash, req.Password) {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.Unauthenticated("account is deactivated")
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, u.UserID, now); err != nil {
		s.log.Warn("record last login", zap.String("user_id", u.UserID), zap.Error(err))
	} else {
		u.LastLogin = &now
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return u, nil
}

// PublicProfile returns the fields of an active user visible to anyone.
func (s *UserService) PublicProfile(ctx context.Context, id string) (*model.PublicUser, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.NotFound("user")
	}
	pub := u.Public()
	return &pub, nil
}

type fieldSetter func(u *model.User, raw json.RawMessage) error

func set[T any](field func(u *model.User) *T) fieldSetter {
	return func(u *model.User, raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*field(u) = v
		return nil
	}
}

// profileFields is the complete set of paths a user may change on their own
// account. Anything else in an update is ignored.
var profileFields = map[string]fieldSetter{
	"first_name":          set(func(u *model.User) *string { return &u.FirstName }),
	"last_name":           set(func(u *model.User) *string { return &u.LastName }),
	"profile.bio":         set(func(u *model.User) *string { return &u.Profile.Bio }),
	"profile.skills":      set(func(u *model.User) *[]string { return &u.Profile.Skills }),
	"profile.experience":  set(func(u *model.User) *[]model.Experience { return &u.Profile.Experience }),
	"profile.education":   set(func(u *model.User) *[]model.Education { return &u.Profile.Education }),
	"profile.location":    set(func(u *model.User) *string { return &u.Profile.Location }),
	"profile.phone":       set(func(u *model.User) *string { return &u.Profile.Phone }),
	"profile.website":     set(func(u *model.User) *string { return &u.Profile.Website }),
	"profile.linkedin":    set(func(u *model.User) *string { return &u.Profile.LinkedIn }),
	"profile.github":      set(func(u *model.User) *string { return &u.Profile.GitHub }),
	"company.name":        set(func(u *model.User) *string { return &u.Company.Name }),
	"company.logo":        set(func(u *model.User) *string { return &u.Company.Logo }),
	"company.website":     set(func(u *model.User) *string { return &u.Company.Website }),
	"company.description": set(func(u *model.User) *string { return &u.Company.Description }),
	"company.industry":    set(func(u *model.User) *string { return &u.Company.Industry }),
	"company.size":        set(func(u *model.User) *string { return &u.Company.Size }),
	"company.location":    set(func(u *model.User) *string { return &u.Company.Location }),
	"preferences":         set(func(u *model.User) *model.Preferences { return &u.Preferences }),
}

var nestedGroups = map[string]bool{"profile": true, "company": true}

// flattenPatch accepts both dotted keys ("profile.bio") and one level of
// nesting ({"profile": {"bio": ...}}).
func flattenPatch(patch map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(patch))
	for k, v := range patch {
		if nestedGroups[k] {
			var sub map[string]json.RawMessage
			if err := json.Unmarshal(v, &sub); err == nil {
				for sk, sv := range sub {
					out[k+"."+sk] = sv
				}
				continue
			}
		}
		out[k] = v
	}
	return out
}

// UpdateProfile applies the permitted fields of patch to actor's account.
func (s *UserService) UpdateProfile(ctx context.Context, actor Actor, patch map[string]json.RawMessage) (*model.User, error) {
	u, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for path, raw := range flattenPatch(patch) {
		setter, ok := profileFields[path]
		if !ok {
			continue
		}
		if err := setter(u, raw); err != nil {
			return nil, apperr.Validationf("invalid value for %s", path)
		}
	}
	if strings.TrimSpace(u.FirstName) == "" {
		return nil, apperr.Validation("first name cannot be empty")
	}
	u.UpdatedAt = s.now()
	if err := s.users.UpdateUserProfile(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return u, nil
}

type UserPage struct {
	Items []model.User
	Total int
	Page  int
	Limit int
}

func (s *UserService) List(ctx context.Context, q model.ListUsersQuery) (*UserPage, error) {
	if q.UserType != "" && !q.UserType.Valid() {
		return nil, apperr.Validationf("invalid user type %q", q.UserType)
	}
	page, limit, offset := pkg.Paginate(q.Page, q.Limit, pkg.DefaultPageSize)
	items, total, err := s.users.ListUsers(ctx, model.UserFilter{
		UserType: q.UserType,
		Search:   strings.TrimSpace(q.Search),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return &UserPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *UserService) SetActive(ctx context.Context, actor Actor, id string, active bool) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	if id == actor.ID && !active {
		return nil, apperr.Validation("admins cannot deactivate themselves")
	}
	u, err := s.users.SetUserActive(ctx, id, active)
	if err != nil {
		return nil, errors.Wrap(err, "set user status")
	}
	return u, nil
}
