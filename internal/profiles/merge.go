package profiles

// Merge rules shared by fragment folding and section write-throughs.
//
// List sections (jobHistory, education) reconcile by entry ID: the two
// inputs are concatenated, entries sharing an ID collapse to the LAST
// occurrence, and the surviving order follows the first occurrence
// position in the concatenation. There is no field-level merge of two
// conflicting entries; the later one wins entirely.

// MergeJobEntries reconciles two job lists, second list winning on ID conflict.
func MergeJobEntries(existing, incoming []JobEntry) []JobEntry {
	all := make([]JobEntry, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)

	latest := make(map[string]JobEntry, len(all))
	order := make([]string, 0, len(all))
	for _, entry := range all {
		if _, seen := latest[entry.ID]; !seen {
			order = append(order, entry.ID)
		}
		latest[entry.ID] = entry
	}

	out := make([]JobEntry, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out
}

// MergeEducationEntries reconciles two education lists, second list winning on ID conflict.
func MergeEducationEntries(existing, incoming []EducationEntry) []EducationEntry {
	all := make([]EducationEntry, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)

	latest := make(map[string]EducationEntry, len(all))
	order := make([]string, 0, len(all))
	for _, entry := range all {
		if _, seen := latest[entry.ID]; !seen {
			order = append(order, entry.ID)
		}
		latest[entry.ID] = entry
	}

	out := make([]EducationEntry, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out
}

// UnionSkills unions two skill lists with case-sensitive equality,
// keeping first-seen order.
func UnionSkills(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, skill := range list {
			if _, ok := seen[skill]; ok {
				continue
			}
			seen[skill] = struct{}{}
			out = append(out, skill)
		}
	}
	return out
}

// MergeContactInfo overlays incoming fields onto existing; incoming
// fields overwrite only when present.
func MergeContactInfo(existing, incoming ContactInfo) ContactInfo {
	merged := existing
	if incoming.Email != "" {
		merged.Email = incoming.Email
	}
	if incoming.Phone != "" {
		merged.Phone = incoming.Phone
	}
	if incoming.AdditionalEmails != nil {
		merged.AdditionalEmails = incoming.AdditionalEmails
	}
	if incoming.AdditionalPhones != nil {
		merged.AdditionalPhones = incoming.AdditionalPhones
	}
	return merged
}

// MergeFragment folds a parsed fragment into base and returns the result.
// Absent fragment fields leave the base untouched; careerObjective only
// replaces when the incoming value is non-empty.
func MergeFragment(base ProfileData, frag Fragment) ProfileData {
	merged := base
	if frag.ContactInfo != nil {
		merged.ContactInfo = MergeContactInfo(base.ContactInfo, *frag.ContactInfo)
	}
	if frag.CareerObjective != "" {
		merged.CareerObjective = frag.CareerObjective
	}
	if len(frag.Skills) > 0 {
		merged.Skills = UnionSkills(base.Skills, frag.Skills)
	}
	if len(frag.JobHistory) > 0 {
		merged.JobHistory = MergeJobEntries(base.JobHistory, frag.JobHistory)
	}
	if len(frag.Education) > 0 {
		merged.Education = MergeEducationEntries(base.Education, frag.Education)
	}
	return merged
}
