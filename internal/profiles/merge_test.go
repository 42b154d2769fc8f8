package profiles

import (
	"reflect"
	"testing"
)

func TestMergeJobEntriesLastOccurrenceWins(t *testing.T) {
	existing := []JobEntry{
		{ID: "a", Company: "Acme", Title: "Engineer"},
		{ID: "b", Company: "Globex", Title: "Analyst"},
	}
	incoming := []JobEntry{
		{ID: "a", Company: "Acme", Title: "Senior Engineer"},
		{ID: "c", Company: "Initech", Title: "Manager"},
	}

	got := MergeJobEntries(existing, incoming)

	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].ID != "a" || got[0].Title != "Senior Engineer" {
		t.Fatalf("expected id a updated in place, got %+v", got[0])
	}
	if got[1].ID != "b" {
		t.Fatalf("expected id b second, got %+v", got[1])
	}
	if got[2].ID != "c" {
		t.Fatalf("expected id c appended, got %+v", got[2])
	}
}

func TestMergeJobEntriesNoFieldLevelMerge(t *testing.T) {
	existing := []JobEntry{{ID: "a", Company: "Acme", Description: "kept?"}}
	incoming := []JobEntry{{ID: "a", Company: "Acme Corp"}}

	got := MergeJobEntries(existing, incoming)
	if got[0].Description != "" {
		t.Fatalf("expected the later entry to win entirely, got %+v", got[0])
	}
}

func TestMergeEducationEntriesDedupeByID(t *testing.T) {
	existing := []EducationEntry{{ID: "e1", School: "State U", Degree: "BS"}}
	incoming := []EducationEntry{
		{ID: "e1", School: "State University", Degree: "BS"},
		{ID: "e2", School: "Tech", Degree: "MS"},
	}

	got := MergeEducationEntries(existing, incoming)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].School != "State University" {
		t.Fatalf("expected incoming to win, got %+v", got[0])
	}
}

func TestUnionSkillsCaseSensitive(t *testing.T) {
	got := UnionSkills([]string{"Go", "SQL"}, []string{"go", "SQL", "Docker"})
	want := []string{"Go", "SQL", "go", "Docker"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMergeContactInfoOverwritesPresentFieldsOnly(t *testing.T) {
	existing := ContactInfo{
		Email:            "old@example.com",
		Phone:            "555-0100",
		AdditionalEmails: []string{"alt@example.com"},
	}
	incoming := ContactInfo{Email: "new@example.com"}

	got := MergeContactInfo(existing, incoming)
	if got.Email != "new@example.com" {
		t.Fatalf("expected email overwritten, got %q", got.Email)
	}
	if got.Phone != "555-0100" {
		t.Fatalf("expected phone preserved, got %q", got.Phone)
	}
	if len(got.AdditionalEmails) != 1 {
		t.Fatalf("expected additional emails preserved, got %v", got.AdditionalEmails)
	}
}

func TestMergeFragmentEmptyObjectiveDoesNotReplace(t *testing.T) {
	base := ProfileData{CareerObjective: "Build reliable systems"}
	merged := MergeFragment(base, Fragment{CareerObjective: ""})
	if merged.CareerObjective != "Build reliable systems" {
		t.Fatalf("expected objective preserved, got %q", merged.CareerObjective)
	}

	merged = MergeFragment(base, Fragment{CareerObjective: "Lead a platform team"})
	if merged.CareerObjective != "Lead a platform team" {
		t.Fatalf("expected objective replaced, got %q", merged.CareerObjective)
	}
}

func TestMergeFragmentAbsentFieldsLeaveBaseUntouched(t *testing.T) {
	base := ProfileData{
		ContactInfo:     ContactInfo{Email: "me@example.com", Phone: "555-0100"},
		CareerObjective: "stay",
		Skills:          []string{"Go"},
		JobHistory:      []JobEntry{{ID: "j1", Company: "Acme"}},
		Education:       []EducationEntry{{ID: "e1", School: "State U"}},
	}

	merged := MergeFragment(base, Fragment{Skills: []string{"Go", "SQL"}})

	if !reflect.DeepEqual(merged.Skills, []string{"Go", "SQL"}) {
		t.Fatalf("expected skills union, got %v", merged.Skills)
	}
	if !reflect.DeepEqual(merged.ContactInfo, base.ContactInfo) {
		t.Fatalf("expected contact info untouched")
	}
	if merged.CareerObjective != "stay" {
		t.Fatalf("expected objective untouched")
	}
	if !reflect.DeepEqual(merged.JobHistory, base.JobHistory) {
		t.Fatalf("expected job history untouched")
	}
	if !reflect.DeepEqual(merged.Education, base.Education) {
		t.Fatalf("expected education untouched")
	}
}

func TestFragmentTouchedSections(t *testing.T) {
	frag := Fragment{
		ContactInfo: &ContactInfo{Email: "a@b.c"},
		Skills:      []string{"Go"},
	}
	got := frag.Touched()
	want := []Section{SectionContactInfo, SectionSkills}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if touched := (Fragment{}).Touched(); len(touched) != 0 {
		t.Fatalf("expected no touched sections, got %v", touched)
	}
}
