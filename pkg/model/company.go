package model

// Company describes an employer. It is embedded in recruiter profiles and
// copied onto every posting so listings never need a join.
type Company struct {
	Name        string `json:"name"`
	Logo        string `json:"logo,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
	Location    string `json:"location,omitempty"`
}
