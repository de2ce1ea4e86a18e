package model

import "time"

type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusPaused JobStatus = "paused"
	JobStatusClosed JobStatus = "closed"
	JobStatusFilled JobStatus = "filled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusDraft, JobStatusActive, JobStatusPaused, JobStatusClosed, JobStatusFilled:
		return true
	}
	return false
}

type Job struct {
	JobID               string      `json:"job_id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	Company             Company     `json:"company"`
	Location            JobLocation `json:"location"`
	EmploymentType      string      `json:"employment_type"`
	ExperienceLevel     string      `json:"experience_level"`
	Salary              Salary      `json:"salary"`
	Skills              []Skill     `json:"skills"`
	Requirements        []string    `json:"requirements"`
	Benefits            []string    `json:"benefits"`
	Responsibilities    []string    `json:"responsibilities"`
	Tags                []string    `json:"tags"`
	PostedBy            string      `json:"posted_by"`
	Status              JobStatus   `json:"status"`
	ApplicationDeadline *time.Time  `json:"application_deadline,omitempty"`
	StartDate           *time.Time  `json:"start_date,omitempty"`
	ApplicationCount    int         `json:"application_count"`
	ViewCount           int         `json:"view_count"`
	Featured            bool        `json:"featured"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

type JobLocation struct {
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type Salary struct {
	Min        *int   `json:"min,omitempty"`
	Max        *int   `json:"max,omitempty"`
	Currency   string `json:"currency"`
	Period     string `json:"period"`
	Negotiable bool   `json:"negotiable"`
}

type Skill struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Level    string `json:"level,omitempty"`
}

var (
	employmentTypes  = map[string]bool{"full-time": true, "part-time": true, "contract": true, "internship": true, "freelance": true}
	experienceLevels = map[string]bool{"entry": true, "mid": true, "senior": true, "executive": true}
	locationTypes    = map[string]bool{"remote": true, "on-site": true, "hybrid": true}
	salaryPeriods    = map[string]bool{"hourly": true, "monthly": true, "yearly": true}
)

func ValidEmploymentType(s string) bool  { return employmentTypes[s] }
func ValidExperienceLevel(s string) bool { return experienceLevels[s] }
func ValidLocationType(s string) bool    { return locationTypes[s] }
func ValidSalaryPeriod(s string) bool    { return salaryPeriods[s] }

// ApplyDefaults fills the enum defaults a new posting starts with.
func (j *Job) ApplyDefaults() {
	if j.Status == "" {
		j.Status = JobStatusActive
	}
	if j.EmploymentType == "" {
		j.EmploymentType = "full-time"
	}
	if j.ExperienceLevel == "" {
		j.ExperienceLevel = "mid"
	}
	if j.Location.Type == "" {
		j.Location.Type = "on-site"
	}
	if j.Salary.Currency == "" {
		j.Salary.Currency = "USD"
	}
	if j.Salary.Period == "" {
		j.Salary.Period = "yearly"
	}
	for i := range j.Skills {
		if j.Skills[i].Level == "" {
			j.Skills[i].Level = "intermediate"
		}
	}
}

// JobInput is the writable part of a posting, shared by create and update.
type JobInput struct {
	Title               *string      `json:"title"`
	Description         *string      `json:"description"`
	Company             *Company     `json:"company"`
	Location            *JobLocation `json:"location"`
	EmploymentType      *string      `json:"employment_type"`
	ExperienceLevel     *string      `json:"experience_level"`
	Salary              *Salary      `json:"salary"`
	Skills              *[]Skill     `json:"skills"`
	Requirements        *[]string    `json:"requirements"`
	Benefits            *[]string    `json:"benefits"`
	Responsibilities    *[]string    `json:"responsibilities"`
	Tags                *[]string    `json:"tags"`
	Status              *JobStatus   `json:"status"`
	ApplicationDeadline *time.Time   `json:"application_deadline"`
	StartDate           *time.Time   `json:"start_date"`
	Featured            *bool        `json:"featured"`
}

// Apply copies every set field of in onto j.
func (in JobInput) Apply(j *Job) {
	if in.Title != nil {
		j.Title = *in.Title
	}
	if in.Description != nil {
		j.Description = *in.Description
	}
	if in.Company != nil {
		j.Company = *in.Company
	}
	if in.Location != nil {
		j.Location = *in.Location
	}
	if in.EmploymentType != nil {
		j.EmploymentType = *in.EmploymentType
	}
	if in.ExperienceLevel != nil {
		j.ExperienceLevel = *in.ExperienceLevel
	}
	if in.Salary != nil {
		j.Salary = *in.Salary
	}
	if in.Skills != nil {
		j.Skills = *in.Skills
	}
	if in.Requirements != nil {
		j.Requirements = *in.Requirements
	}
	if in.Benefits != nil {
		j.Benefits = *in.Benefits
	}
	if in.Responsibilities != nil {
		j.Responsibilities = *in.Responsibilities
	}
	if in.Tags != nil {
		j.Tags = *in.Tags
	}
	if in.Status != nil {
		j.Status = *in.Status
	}
	if in.ApplicationDeadline != nil {
		j.ApplicationDeadline = in.ApplicationDeadline
	}
	if in.StartDate != nil {
		j.StartDate = in.StartDate
	}
	if in.Featured != nil {
		j.Featured = *in.Featured
	}
}

type JobSort string

const (
	JobSortCreatedAt        JobSort = "created_at"
	JobSortSalary           JobSort = "salary"
	JobSortViewCount        JobSort = "view_count"
	JobSortApplicationCount JobSort = "application_count"
)

func (s JobSort) Valid() bool {
	switch s {
	case JobSortCreatedAt, JobSortSalary, JobSortViewCount, JobSortApplicationCount:
		return true
	}
	return false
}

type JobFilter struct {
	Status          JobStatus
	PostedBy        string
	Search          string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	MinSalary       *int
	MaxSalary       *int
	Skills          []string
	Company         string
	SortBy          JobSort
	Ascending       bool
	Limit           int
	Offset          int
}

type ListJobsQuery struct {
	Page            int    `form:"page,default=1"`
	Limit           int    `form:"limit,default=10"`
	Search          string `form:"search"`
	Location        string `form:"location"`
	EmploymentType  string `form:"employment_type"`
	ExperienceLevel string `form:"experience_level"`
	MinSalary       *int   `form:"min_salary"`
	MaxSalary       *int   `form:"max_salary"`
	Skills          string `form:"skills"`
	Company         string `form:"company"`
	SortBy          string `form:"sort_by,default=created_at"`
	SortOrder       string `form:"sort_order,default=desc"`
}

type MyJobsQuery struct {
	Page   int       `form:"page,default=1"`
	Limit  int       `form:"limit,default=10"`
	Status JobStatus `form:"status"`
}

type UpdateJobStatusReq struct {
	Status JobStatus `json:"status" binding:"required"`
}

type JobDetail struct {
	Job        *Job `json:"job"`
	HasApplied bool `json:"has_applied"`
}

type Suggestion struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type JobSuggestions struct {
	Titles    []Suggestion `json:"titles"`
	Companies []Suggestion `json:"companies"`
	Skills    []Suggestion `json:"skills"`
}
