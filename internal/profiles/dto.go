package profiles

import "time"

// ProfileSummary is the list representation of a profile.
type ProfileSummary struct {
	ProfileID string    `json:"profileId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileResponse is the full outward-facing representation of the
// active profile, including editing state.
type ProfileResponse struct {
	ProfileID         string           `json:"profileId"`
	Name              string           `json:"name"`
	Data              ProfileData      `json:"data"`
	Dirty             map[Section]bool `json:"dirty"`
	HasUnsavedChanges bool             `json:"hasUnsavedChanges"`
}

func toSummary(doc ProfileDoc) ProfileSummary {
	return ProfileSummary{
		ProfileID: doc.ID,
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func toProfileResponse(engine *Engine) ProfileResponse {
	return ProfileResponse{
		ProfileID:         engine.ProfileID(),
		Name:              engine.Name(),
		Data:              engine.Snapshot(),
		Dirty:             engine.Dirty(),
		HasUnsavedChanges: engine.HasUnsavedChanges(),
	}
}

type createProfileRequest struct {
	Name string `json:"name"`
}

type renameProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

type jobEntryRequest struct {
	Company         string   `json:"company"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate"`
	Accomplishments []string `json:"accomplishments"`
}

func (r jobEntryRequest) toEntry() JobEntry {
	return JobEntry{
		Company:         r.Company,
		Title:           r.Title,
		Description:     r.Description,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Accomplishments: r.Accomplishments,
	}
}

type educationEntryRequest struct {
	School     string `json:"school"`
	Degree     string `json:"degree"`
	Dates      string `json:"dates"`
	GPA        string `json:"gpa"`
	InProgress bool   `json:"inProgress"`
}

func (r educationEntryRequest) toEntry() EducationEntry {
	return EducationEntry{
		School:     r.School,
		Degree:     r.Degree,
		Dates:      r.Dates,
		GPA:        r.GPA,
		InProgress: r.InProgress,
	}
}
