package resume

import (
	"encoding/json"
	"time"
)

// Resume is a stored resume row. Structured sections (skills,
// experience, ...) are kept as raw JSON: the backend stores and serves
// them verbatim, only the editor frontend interprets their shape.
type Resume struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	City           string          `json:"city,omitempty"`
	State          string          `json:"state,omitempty"`
	Country        string          `json:"country,omitempty"`
	PostalCode     string          `json:"postal_code,omitempty"`
	JobTitle       string          `json:"job_title,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Skills         json.RawMessage `json:"skills,omitempty"`
	Experience     json.RawMessage `json:"experience,omitempty"`
	Education      json.RawMessage `json:"education,omitempty"`
	Certifications json.RawMessage `json:"certifications,omitempty"`
	Projects       json.RawMessage `json:"projects,omitempty"`
	Languages      json.RawMessage `json:"languages,omitempty"`
	LinkedinURL    string          `json:"linkedin_url,omitempty"`
	GithubURL      string          `json:"github_url,omitempty"`
	PortfolioURL   string          `json:"portfolio_url,omitempty"`
	TemplateID     int             `json:"template_id"`
	ThemeColor     string          `json:"theme_color"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Input carries the writable fields for create and update. Nil pointers
// in an update mean "leave unchanged".
type Input struct {
	Name           *string         `json:"name"`
	Phone          *string         `json:"phone"`
	City           *string         `json:"city"`
	State          *string         `json:"state"`
	Country        *string         `json:"country"`
	PostalCode     *string         `json:"postal_code"`
	JobTitle       *string         `json:"job_title"`
	Summary        *string         `json:"summary"`
	Skills         json.RawMessage `json:"skills"`
	Experience     json.RawMessage `json:"experience"`
	Education      json.RawMessage `json:"education"`
	Certifications json.RawMessage `json:"certifications"`
	Projects       json.RawMessage `json:"projects"`
	Languages      json.RawMessage `json:"languages"`
	LinkedinURL    *string         `json:"linkedin_url"`
	GithubURL      *string         `json:"github_url"`
	PortfolioURL   *string         `json:"portfolio_url"`
	TemplateID     *int            `json:"template_id"`
	ThemeColor     *string         `json:"theme_color"`
}

// apply copies the set fields of the input onto the resume.
func (in Input) apply(r *Resume) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&r.Name, in.Name)
	setString(&r.Phone, in.Phone)
	setString(&r.City, in.City)
	setString(&r.State, in.State)
	setString(&r.Country, in.Country)
	setString(&r.PostalCode, in.PostalCode)
	setString(&r.JobTitle, in.JobTitle)
	setString(&r.Summary, in.Summary)
	setString(&r.LinkedinURL, in.LinkedinURL)
	setString(&r.GithubURL, in.GithubURL)
	setString(&r.PortfolioURL, in.PortfolioURL)
	setString(&r.ThemeColor, in.ThemeColor)
	if in.Skills != nil {
		r.Skills = in.Skills
	}
	if in.Experience != nil {
		r.Experience = in.Experience
	}
	if in.Education != nil {
		r.Education = in.Education
	}
	if in.Certifications != nil {
		r.Certifications = in.Certifications
	}
	if in.Projects != nil {
		r.Projects = in.Projects
	}
	if in.Languages != nil {
		r.Languages = in.Languages
	}
	if in.TemplateID != nil {
		r.TemplateID = *in.TemplateID
	}
}

// newResume builds a fresh resume from a create input.
func newResume(userID int64, in Input) Resume {
	r := Resume{UserID: userID, ThemeColor: "blue"}
	in.apply(&r)
	return r
}
