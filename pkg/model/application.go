package model

import "time"

type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusReviewed    ApplicationStatus = "reviewed"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusRejected    ApplicationStatus = "rejected"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusPending, StatusReviewed, StatusShortlisted, StatusInterviewed,
	StatusRejected, StatusAccepted, StatusWithdrawn,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further candidate action.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusAccepted || s == StatusWithdrawn
}

type Application struct {
	ApplicationID  string            `json:"application_id"`
	JobID          string            `json:"job_id"`
	CandidateID    string            `json:"candidate_id"`
	RecruiterID    string            `json:"recruiter_id"`
	Status         ApplicationStatus `json:"status"`
	CoverLetter    string            `json:"cover_letter,omitempty"`
	Resume         *FileRef          `json:"resume,omitempty"`
	AIMatchScore   int               `json:"ai_match_score"`
	Notes          []Note            `json:"notes"`
	Interviews     []Interview       `json:"interviews"`
	Communications []Communication   `json:"communications"`
	Timeline       Timeline          `json:"timeline"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type Note struct {
	AddedBy   string    `json:"added_by"`
	Content   string    `json:"content"`
	IsPrivate bool      `json:"is_private"`
	AddedAt   time.Time `json:"added_at"`
}

type InterviewType string

const (
	InterviewPhone     InterviewType = "phone"
	InterviewVideo     InterviewType = "video"
	InterviewInPerson  InterviewType = "in-person"
	InterviewTechnical InterviewType = "technical"
	InterviewHR        InterviewType = "hr"
)

func (t InterviewType) Valid() bool {
	switch t {
	case InterviewPhone, InterviewVideo, InterviewInPerson, InterviewTechnical, InterviewHR:
		return true
	}
	return false
}

type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
)

type Interview struct {
	ScheduledBy string          `json:"scheduled_by"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	Duration    int             `json:"duration"`
	Type        InterviewType   `json:"type"`
	Location    string          `json:"location,omitempty"`
	MeetingLink string          `json:"meeting_link,omitempty"`
	Status      InterviewStatus `json:"status"`
	Feedback    string          `json:"feedback,omitempty"`
	Rating      *int            `json:"rating,omitempty"`
}

type CommunicationType string

const (
	CommunicationEmail   CommunicationType = "email"
	CommunicationMessage CommunicationType = "message"
	CommunicationCall    CommunicationType = "call"
	CommunicationMeeting CommunicationType = "meeting"
)

func (t CommunicationType) Valid() bool {
	switch t {
	case CommunicationEmail, CommunicationMessage, CommunicationCall, CommunicationMeeting:
		return true
	}
	return false
}

type Communication struct {
	Type    CommunicationType `json:"type"`
	Content string            `json:"content"`
	SentBy  string            `json:"sent_by"`
	SentAt  time.Time         `json:"sent_at"`
	IsRead  bool              `json:"is_read"`
}

type SubmitApplicationReq struct {
	JobID       string   `json:"job_id" binding:"required"`
	CoverLetter string   `json:"cover_letter" binding:"max=2000"`
	Resume      *FileRef `json:"resume"`
}

type UpdateStatusReq struct {
	Status ApplicationStatus `json:"status" binding:"required"`
	Notes  string            `json:"notes"`
}

type AddNoteReq struct {
	Content   string `json:"content" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

type ScheduleInterviewReq struct {
	ScheduledAt time.Time     `json:"scheduled_at" binding:"required"`
	Duration    int           `json:"duration" binding:"omitempty,min=1,max=1440"`
	Type        InterviewType `json:"type" binding:"required"`
	Location    string        `json:"location"`
	MeetingLink string        `json:"meeting_link"`
}

type AddCommunicationReq struct {
	Type    CommunicationType `json:"type" binding:"required"`
	Content string            `json:"content" binding:"required"`
}

type ApplicationFilter struct {
	CandidateID string
	JobID       string
	JobIDs      []string
	Status      ApplicationStatus
	SortBy      string
	Ascending   bool
	Limit       int
	Offset      int
}

type ListApplicationsQuery struct {
	Page      int               `form:"page,default=1"`
	Limit     int               `form:"limit,default=10"`
	Status    ApplicationStatus `form:"status"`
	SortBy    string            `form:"sort_by,default=created_at"`
	SortOrder string            `form:"sort_order,default=desc"`
}

type DashboardStats struct {
	TotalApplications       int                       `json:"total_applications"`
	PendingApplications     int                       `json:"pending_applications"`
	ShortlistedApplications int                       `json:"shortlisted_applications"`
	InterviewedApplications int                       `json:"interviewed_applications"`
	ByStatus                map[ApplicationStatus]int `json:"by_status,omitempty"`
	TotalJobs               *int                      `json:"total_jobs,omitempty"`
}
