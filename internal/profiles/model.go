package profiles

import "time"

// Section names a profile section. The set is closed; dirty flags and
// section-level writes are keyed by it.
type Section string

const (
	SectionContactInfo     Section = "contactInfo"
	SectionCareerObjective Section = "careerObjective"
	SectionSkills          Section = "skills"
	SectionJobHistory      Section = "jobHistory"
	SectionEducation       Section = "education"
)

// Sections returns all sections in a stable order.
func Sections() []Section {
	return []Section{
		SectionContactInfo,
		SectionCareerObjective,
		SectionSkills,
		SectionJobHistory,
		SectionEducation,
	}
}

// ValidSection reports whether s belongs to the closed section set.
func ValidSection(s Section) bool {
	switch s {
	case SectionContactInfo, SectionCareerObjective, SectionSkills, SectionJobHistory, SectionEducation:
		return true
	}
	return false
}

// ContactInfo holds the primary and additional contact channels.
// Email and phone are required at form-submit time, not at storage time.
type ContactInfo struct {
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	AdditionalEmails []string `json:"additionalEmails,omitempty"`
	AdditionalPhones []string `json:"additionalPhones,omitempty"`
}

// JobEntry is one position in the job history. The ID is assigned at
// creation time and stable thereafter.
type JobEntry struct {
	ID              string   `json:"id"`
	Company         string   `json:"company"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate"` // empty = current position
	Accomplishments []string `json:"accomplishments,omitempty"`
}

// EducationEntry is one entry in the education history.
type EducationEntry struct {
	ID         string `json:"id"`
	School     string `json:"school"`
	Degree     string `json:"degree"`
	Dates      string `json:"dates"`
	GPA        string `json:"gpa,omitempty"`
	InProgress bool   `json:"inProgress,omitempty"`
}

// ProfileData is the canonical per-profile record.
type ProfileData struct {
	ContactInfo     ContactInfo      `json:"contactInfo"`
	CareerObjective string           `json:"careerObjective"`
	Skills          []string         `json:"skills"`
	JobHistory      []JobEntry       `json:"jobHistory"`
	Education       []EducationEntry `json:"education"`
}

// EmptyProfileData returns a zero profile with non-nil lists.
func EmptyProfileData() ProfileData {
	return ProfileData{
		Skills:     []string{},
		JobHistory: []JobEntry{},
		Education:  []EducationEntry{},
	}
}

// ProfileDoc wraps one ProfileData with its owner, identifier, and display name.
type ProfileDoc struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Name      string      `json:"name"`
	Data      ProfileData `json:"data"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Fragment is a partially populated ProfileData produced by the parse
// pipeline. Absent fields are left untouched by a merge.
type Fragment struct {
	ContactInfo     *ContactInfo     `json:"contactInfo,omitempty"`
	CareerObjective string           `json:"careerObjective,omitempty"`
	Skills          []string         `json:"skills,omitempty"`
	JobHistory      []JobEntry       `json:"jobHistory,omitempty"`
	Education       []EducationEntry `json:"education,omitempty"`
}

// Touched returns the sections the fragment would modify when merged.
func (f Fragment) Touched() []Section {
	var out []Section
	if f.ContactInfo != nil {
		out = append(out, SectionContactInfo)
	}
	if f.CareerObjective != "" {
		out = append(out, SectionCareerObjective)
	}
	if len(f.Skills) > 0 {
		out = append(out, SectionSkills)
	}
	if len(f.JobHistory) > 0 {
		out = append(out, SectionJobHistory)
	}
	if len(f.Education) > 0 {
		out = append(out, SectionEducation)
	}
	return out
}
