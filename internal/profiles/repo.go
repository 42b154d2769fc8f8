package profiles

import "context"

// ProfilesRepo defines persistence operations for profile documents.
// Section writes are shallow-field-replace at the store; list sections
// replace wholesale, so callers pre-merge lists before writing.
type ProfilesRepo interface {
	Create(ctx context.Context, doc ProfileDoc) error
	GetByID(ctx context.Context, userID, profileID string) (ProfileDoc, error)
	ListByUser(ctx context.Context, userID string) ([]ProfileDoc, error)
	Rename(ctx context.Context, userID, profileID, name string) error
	ReplaceData(ctx context.Context, userID, profileID string, data ProfileData) error
	ReplaceSection(ctx context.Context, userID, profileID string, section Section, data ProfileData) error
	Delete(ctx context.Context, userID, profileID string) error
}

// sectionValue extracts the named section from data.
func sectionValue(data ProfileData, section Section) any {
	switch section {
	case SectionContactInfo:
		return data.ContactInfo
	case SectionCareerObjective:
		return data.CareerObjective
	case SectionSkills:
		return data.Skills
	case SectionJobHistory:
		return data.JobHistory
	case SectionEducation:
		return data.Education
	}
	return nil
}
