package profiles

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Engine holds the authoritative in-memory ProfileData for one active
// profile, plus per-section dirty flags. One engine exists per
// (user, profile) editing session; every mutation happens under the
// engine lock so a value and its dirty flag always change together.
//
// Two write strategies are offered: WriteSectionThrough performs a
// remote read-merge-write for a single section and so cannot clobber
// concurrent changes to other sections; SaveAll writes the whole
// document last-writer-wins.
type Engine struct {
	mu        sync.Mutex
	repo      ProfilesRepo
	userID    string
	profileID string
	name      string
	data      ProfileData
	dirty     map[Section]bool
	unsaved   bool
	inFlight  map[Section]bool

	// editGen counts local edits per section. A write-through records the
	// generation it snapshotted; if an edit lands while the write is in
	// flight the generation moves and the write-back must not install its
	// stale snapshot or clear the flag that edit set.
	editGen map[Section]uint64

	// IDs removed locally since the last successful sync; a write-through
	// drops them after reconciling with the remote list.
	removedJobs map[string]struct{}
	removedEdu  map[string]struct{}
}

// NewEngine constructs an engine bound to one profile. Call Load before use.
func NewEngine(repo ProfilesRepo, userID, profileID string) *Engine {
	return &Engine{
		repo:        repo,
		userID:      userID,
		profileID:   profileID,
		data:        EmptyProfileData(),
		dirty:       make(map[Section]bool),
		inFlight:    make(map[Section]bool),
		editGen:     make(map[Section]uint64),
		removedJobs: make(map[string]struct{}),
		removedEdu:  make(map[string]struct{}),
	}
}

// Load replaces the in-memory state wholesale from the store and clears
// all dirty flags.
func (e *Engine) Load(ctx context.Context) error {
	doc, err := e.repo.GetByID(ctx, e.userID, e.profileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = doc.Name
	e.data = doc.Data
	e.resetFlags()
	return nil
}

// ProfileID returns the bound profile identifier.
func (e *Engine) ProfileID() string { return e.profileID }

// Name returns the profile display name as of the last load.
func (e *Engine) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

// Snapshot returns a copy of the in-memory profile data.
func (e *Engine) Snapshot() ProfileData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyData(e.data)
}

// Dirty reports the per-section dirty flags.
func (e *Engine) Dirty() map[Section]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[Section]bool, len(Sections()))
	for _, s := range Sections() {
		out[s] = e.dirty[s]
	}
	return out
}

// HasUnsavedChanges reports whether any local edit has not reached the store.
func (e *Engine) HasUnsavedChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unsaved
}

// ContactInfoPatch is a shallow patch of the contact section.
type ContactInfoPatch struct {
	Email            *string  `json:"email,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
	AdditionalEmails []string `json:"additionalEmails,omitempty"`
	AdditionalPhones []string `json:"additionalPhones,omitempty"`
}

// SectionPatch carries a shallow patch for exactly one section.
type SectionPatch struct {
	ContactInfo     *ContactInfoPatch `json:"contactInfo,omitempty"`
	CareerObjective *string           `json:"careerObjective,omitempty"`
	Skills          []string          `json:"skills,omitempty"`
	JobHistory      []JobEntry        `json:"jobHistory,omitempty"`
	Education       []EducationEntry  `json:"education,omitempty"`
}

// UpdateSection applies a shallow patch to the named section in memory
// and sets that section's dirty flag. It never triggers a remote write.
func (e *Engine) UpdateSection(section Section, patch SectionPatch) error {
	if !ValidSection(section) {
		return ErrInvalidSection
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch section {
	case SectionContactInfo:
		if patch.ContactInfo == nil {
			return fmt.Errorf("%w: contactInfo patch required", ErrInvalidInput)
		}
		ci := &e.data.ContactInfo
		if patch.ContactInfo.Email != nil {
			ci.Email = *patch.ContactInfo.Email
		}
		if patch.ContactInfo.Phone != nil {
			ci.Phone = *patch.ContactInfo.Phone
		}
		if patch.ContactInfo.AdditionalEmails != nil {
			ci.AdditionalEmails = patch.ContactInfo.AdditionalEmails
		}
		if patch.ContactInfo.AdditionalPhones != nil {
			ci.AdditionalPhones = patch.ContactInfo.AdditionalPhones
		}
	case SectionCareerObjective:
		if patch.CareerObjective == nil {
			return fmt.Errorf("%w: careerObjective value required", ErrInvalidInput)
		}
		e.data.CareerObjective = *patch.CareerObjective
	case SectionSkills:
		e.data.Skills = dedupeSkills(patch.Skills)
	case SectionJobHistory:
		if err := requireUniqueJobIDs(patch.JobHistory); err != nil {
			return err
		}
		e.data.JobHistory = patch.JobHistory
	case SectionEducation:
		if err := requireUniqueEduIDs(patch.Education); err != nil {
			return err
		}
		e.data.Education = patch.Education
	}

	e.markDirty(section)
	return nil
}

// AddJobEntry appends a job entry with a freshly assigned ID and returns it.
func (e *Engine) AddJobEntry(entry JobEntry) JobEntry {
	entry.ID = uuid.NewString()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.JobHistory = append(e.data.JobHistory, entry)
	e.markDirty(SectionJobHistory)
	return entry
}

// UpdateJobEntry replaces fields of an existing job entry.
func (e *Engine) UpdateJobEntry(id string, entry JobEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.data.JobHistory {
		if e.data.JobHistory[i].ID == id {
			entry.ID = id
			e.data.JobHistory[i] = entry
			e.markDirty(SectionJobHistory)
			return nil
		}
	}
	return fmt.Errorf("%w: job entry %s", ErrNotFound, id)
}

// DeleteJobEntry removes a job entry and remembers the ID so the next
// write-through does not resurrect it from the remote list.
func (e *Engine) DeleteJobEntry(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.data.JobHistory {
		if e.data.JobHistory[i].ID == id {
			e.data.JobHistory = append(e.data.JobHistory[:i], e.data.JobHistory[i+1:]...)
			e.removedJobs[id] = struct{}{}
			e.markDirty(SectionJobHistory)
			return nil
		}
	}
	return fmt.Errorf("%w: job entry %s", ErrNotFound, id)
}

// AddEducationEntry appends an education entry with a fresh ID.
func (e *Engine) AddEducationEntry(entry EducationEntry) EducationEntry {
	entry.ID = uuid.NewString()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.Education = append(e.data.Education, entry)
	e.markDirty(SectionEducation)
	return entry
}

// UpdateEducationEntry replaces fields of an existing education entry.
func (e *Engine) UpdateEducationEntry(id string, entry EducationEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.data.Education {
		if e.data.Education[i].ID == id {
			entry.ID = id
			e.data.Education[i] = entry
			e.markDirty(SectionEducation)
			return nil
		}
	}
	return fmt.Errorf("%w: education entry %s", ErrNotFound, id)
}

// DeleteEducationEntry removes an education entry.
func (e *Engine) DeleteEducationEntry(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.data.Education {
		if e.data.Education[i].ID == id {
			e.data.Education = append(e.data.Education[:i], e.data.Education[i+1:]...)
			e.removedEdu[id] = struct{}{}
			e.markDirty(SectionEducation)
			return nil
		}
	}
	return fmt.Errorf("%w: education entry %s", ErrNotFound, id)
}

// MergeParsedFragment folds a parsed fragment into the in-memory state
// and marks every touched section dirty.
func (e *Engine) MergeParsedFragment(frag Fragment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = MergeFragment(e.data, frag)
	for _, section := range frag.Touched() {
		e.markDirty(section)
	}
	e.unsaved = true
}

// WriteSectionThrough performs a remote read-modify-write for exactly
// one section: fetch the remote document, reconcile the section value
// (remote first, local second, local winning by ID for list sections),
// and write the merged section back. On success the section's dirty
// flag clears, and the unsaved flag clears once no section remains
// dirty. On failure the in-memory state is left unchanged.
func (e *Engine) WriteSectionThrough(ctx context.Context, section Section) error {
	if !ValidSection(section) {
		return ErrInvalidSection
	}

	e.mu.Lock()
	if e.inFlight[section] {
		e.mu.Unlock()
		return ErrWriteInFlight
	}
	e.inFlight[section] = true
	gen := e.editGen[section]
	local := copyData(e.data)
	removedJobs := copyIDSet(e.removedJobs)
	removedEdu := copyIDSet(e.removedEdu)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.inFlight, section)
		e.mu.Unlock()
	}()

	remote, err := e.repo.GetByID(ctx, e.userID, e.profileID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}

	merged := local
	switch section {
	case SectionContactInfo:
		merged.ContactInfo = MergeContactInfo(remote.Data.ContactInfo, local.ContactInfo)
	case SectionCareerObjective:
		if local.CareerObjective == "" {
			merged.CareerObjective = remote.Data.CareerObjective
		}
	case SectionSkills:
		merged.Skills = UnionSkills(remote.Data.Skills, local.Skills)
	case SectionJobHistory:
		merged.JobHistory = dropJobIDs(MergeJobEntries(remote.Data.JobHistory, local.JobHistory), removedJobs)
	case SectionEducation:
		merged.Education = dropEduIDs(MergeEducationEntries(remote.Data.Education, local.Education), removedEdu)
	}

	if err := e.repo.ReplaceSection(ctx, e.userID, e.profileID, section, merged); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editGen[section] != gen {
		// An edit landed while the write was in flight. The store now
		// holds the pre-edit merge; keep the newer in-memory value and
		// leave the section dirty so the edit reaches the store on the
		// next write.
		return nil
	}
	switch section {
	case SectionContactInfo:
		e.data.ContactInfo = merged.ContactInfo
	case SectionCareerObjective:
		e.data.CareerObjective = merged.CareerObjective
	case SectionSkills:
		e.data.Skills = merged.Skills
	case SectionJobHistory:
		e.data.JobHistory = merged.JobHistory
		e.removedJobs = make(map[string]struct{})
	case SectionEducation:
		e.data.Education = merged.Education
		e.removedEdu = make(map[string]struct{})
	}
	delete(e.dirty, section)
	e.unsaved = e.anyDirtyLocked()
	return nil
}

// SaveAll writes the entire in-memory profile as one remote update,
// last-writer-wins at whole-document granularity. All dirty flags clear
// on success only.
func (e *Engine) SaveAll(ctx context.Context) error {
	e.mu.Lock()
	snapshot := copyData(e.data)
	e.mu.Unlock()

	if err := e.repo.ReplaceData(ctx, e.userID, e.profileID, snapshot); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetFlags()
	return nil
}

// markDirty must be called with the lock held.
func (e *Engine) markDirty(section Section) {
	e.dirty[section] = true
	e.editGen[section]++
	e.unsaved = true
}

func (e *Engine) anyDirtyLocked() bool {
	for _, set := range e.dirty {
		if set {
			return true
		}
	}
	return false
}

func (e *Engine) resetFlags() {
	e.dirty = make(map[Section]bool)
	e.unsaved = false
	e.removedJobs = make(map[string]struct{})
	e.removedEdu = make(map[string]struct{})
	// The state just changed wholesale; invalidate in-flight snapshots.
	for _, section := range Sections() {
		e.editGen[section]++
	}
}

func copyData(data ProfileData) ProfileData {
	out := data
	out.Skills = append([]string(nil), data.Skills...)
	out.JobHistory = append([]JobEntry(nil), data.JobHistory...)
	out.Education = append([]EducationEntry(nil), data.Education...)
	out.ContactInfo.AdditionalEmails = append([]string(nil), data.ContactInfo.AdditionalEmails...)
	out.ContactInfo.AdditionalPhones = append([]string(nil), data.ContactInfo.AdditionalPhones...)
	return out
}

func copyIDSet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for id := range in {
		out[id] = struct{}{}
	}
	return out
}

func dropJobIDs(entries []JobEntry, removed map[string]struct{}) []JobEntry {
	if len(removed) == 0 {
		return entries
	}
	out := entries[:0]
	for _, entry := range entries {
		if _, gone := removed[entry.ID]; !gone {
			out = append(out, entry)
		}
	}
	return out
}

func dropEduIDs(entries []EducationEntry, removed map[string]struct{}) []EducationEntry {
	if len(removed) == 0 {
		return entries
	}
	out := entries[:0]
	for _, entry := range entries {
		if _, gone := removed[entry.ID]; !gone {
			out = append(out, entry)
		}
	}
	return out
}

func dedupeSkills(skills []string) []string {
	return UnionSkills(nil, skills)
}

func requireUniqueJobIDs(entries []JobEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("%w: duplicate job entry id %s", ErrInvalidInput, entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

func requireUniqueEduIDs(entries []EducationEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry.ID]; dup {
			return fmt.Errorf("%w: duplicate education entry id %s", ErrInvalidInput, entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}
