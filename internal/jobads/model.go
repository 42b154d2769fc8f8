package jobads

import "time"

// JobAd is a structured job posting saved to a user's collection.
type JobAd struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	JobTitle     string    `json:"jobTitle"`
	CompanyName  string    `json:"companyName"`
	PostedAt     string    `json:"postedAt"`
	Location     string    `json:"location,omitempty"`
	Summary      string    `json:"summary"`
	Requirements []string  `json:"requirements"`
	VerbatimText string    `json:"verbatimText"`
	CreatedAt    time.Time `json:"createdAt"`
}
