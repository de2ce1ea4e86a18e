package model

import "time"

type UserType string

const (
	UserTypeCandidate UserType = "candidate"
	UserTypeRecruiter UserType = "recruiter"
	UserTypeAdmin     UserType = "admin"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeCandidate, UserTypeRecruiter, UserTypeAdmin:
		return true
	}
	return false
}

type User struct {
	UserID       string      `json:"user_id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	UserType     UserType    `json:"user_type"`
	Profile      Profile     `json:"profile"`
	Company      Company     `json:"company"`
	Preferences  Preferences `json:"preferences"`
	IsActive     bool        `json:"is_active"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool { return u.UserType == UserTypeAdmin }

type Profile struct {
	Bio            string       `json:"bio,omitempty"`
	Skills         []string     `json:"skills,omitempty"`
	Experience     []Experience `json:"experience,omitempty"`
	Education      []Education  `json:"education,omitempty"`
	Resume         *FileRef     `json:"resume,omitempty"`
	ProfilePicture string       `json:"profile_picture,omitempty"`
	Location       string       `json:"location,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Website        string       `json:"website,omitempty"`
	LinkedIn       string       `json:"linkedin,omitempty"`
	GitHub         string       `json:"github,omitempty"`
}

type Experience struct {
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `json:"current"`
}

// FileRef points at an uploaded document. Upload handling lives outside this service.
type FileRef struct {
	Filename     string     `json:"filename"`
	OriginalName string     `json:"original_name,omitempty"`
	Path         string     `json:"path"`
	UploadedAt   *time.Time `json:"uploaded_at,omitempty"`
}

type Preferences struct {
	JobAlerts     JobAlerts     `json:"job_alerts"`
	Notifications Notifications `json:"notifications"`
}

type JobAlerts struct {
	Enabled   bool     `json:"enabled"`
	Frequency string   `json:"frequency"`
	Keywords  []string `json:"keywords,omitempty"`
	Location  string   `json:"location,omitempty"`
}

type Notifications struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		JobAlerts:     JobAlerts{Enabled: true, Frequency: "weekly"},
		Notifications: Notifications{Email: true, Push: true},
	}
}

type RegisterReq struct {
	FirstName string   `json:"first_name" binding:"required"`
	LastName  string   `json:"last_name" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=6"`
	UserType  UserType `json:"user_type"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRes struct {
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
	User                 *User     `json:"user"`
}

// PublicUser is the profile shown to other users.
type PublicUser struct {
	UserID    string   `json:"user_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	UserType  UserType `json:"user_type"`
	Profile   Profile  `json:"profile"`
	Company   Company  `json:"company"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  u.UserType,
		Profile:   u.Profile,
		Company:   u.Company,
	}
}

type UserFilter struct {
	UserType UserType
	Search   string
	Limit    int
	Offset   int
}

type ListUsersQuery struct {
	Page     int      `form:"page,default=1"`
	Limit    int      `form:"limit,default=10"`
	UserType UserType `form:"user_type"`
	Search   string   `form:"search"`
}

type UpdateUserStatusReq struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
