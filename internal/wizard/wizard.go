package wizard

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"campaign_builder/internal/calc"
	"campaign_builder/internal/domain"
	"campaign_builder/internal/media"
)

const (
	DefaultDelayMin = 60
	DefaultDelayMax = 180
)

var (
	ErrAtFirstStep       = errors.New("already at the first step")
	ErrAtLastStep        = errors.New("already at the last step")
	ErrUnknownStep       = errors.New("unknown step")
	ErrInvalidDelayRange = errors.New("delay minimum must be below the maximum")
	ErrNegativeMaxLeads  = errors.New("max leads must not be negative")
	ErrScheduleIndex     = errors.New("schedule index out of range")
	ErrLastSchedule      = errors.New("at least one schedule must remain")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrNotAtReview       = errors.New("campaigns can only be submitted from the review step")
)

// Wizard owns one campaign draft and the step the user is on. Derived values
// are computed from the draft and the catalogs on every read. A Wizard is not
// safe for concurrent use.
type Wizard struct {
	deps   Deps
	logger *slog.Logger
	step   Step
	draft  domain.CampaignDraft
	media  *media.Model
}

func New(deps Deps) (*Wizard, error) {
	if err := deps.setDefaults(); err != nil {
		return nil, err
	}

	return &Wizard{
		deps:   deps,
		logger: deps.Logger.With("component", "wizard"),
		step:   StepBasics,
		draft: domain.CampaignDraft{
			Schedules:          []domain.Schedule{{}},
			SelectedLeadTags:   []string{},
			SelectedAccountIDs: []int64{},
			ExcludedContacts:   []string{},
			DelayMin:           DefaultDelayMin,
			DelayMax:           DefaultDelayMax,
			DelayAverage:       calc.FromMinMax(DefaultDelayMin, DefaultDelayMax),
		},
		media: media.New(deps.NewID),
	}, nil
}

func (w *Wizard) Step() Step {
	return w.step
}

// Draft returns a copy of the draft including the current sequences.
func (w *Wizard) Draft() domain.CampaignDraft {
	d := w.draft
	d.Schedules = slices.Clone(w.draft.Schedules)
	d.SelectedLeadTags = slices.Clone(w.draft.SelectedLeadTags)
	d.SelectedAccountIDs = slices.Clone(w.draft.SelectedAccountIDs)
	d.ExcludedContacts = slices.Clone(w.draft.ExcludedContacts)
	d.Sequences = w.media.Sequences()
	return d
}

// Media gives access to the draft's sequences.
func (w *Wizard) Media() *media.Model {
	return w.media
}

// Advance moves to the next step if the current one validates.
func (w *Wizard) Advance() error {
	if w.step == StepReview {
		return ErrAtLastStep
	}
	if err := w.Validate(w.step); err != nil {
		w.logger.Debug("advance blocked", "step", w.step, "error", err)
		return err
	}
	w.step++
	return nil
}

func (w *Wizard) Back() error {
	if w.step == StepBasics {
		return ErrAtFirstStep
	}
	w.step--
	return nil
}

// GoTo jumps to target. Earlier steps are always reachable; a later step
// only when every step before it validates.
func (w *Wizard) GoTo(target Step) error {
	if !target.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStep, int(target))
	}
	if target > w.step {
		for s := StepBasics; s < target; s++ {
			if err := w.Validate(s); err != nil {
				return err
			}
		}
	}
	w.step = target
	return nil
}

func (w *Wizard) SetName(name string) {
	w.draft.Name = name
}

func (w *Wizard) Schedules() []domain.Schedule {
	return slices.Clone(w.draft.Schedules)
}

// AddSchedule appends s and returns its index.
func (w *Wizard) AddSchedule(s domain.Schedule) int {
	w.draft.Schedules = append(w.draft.Schedules, s)
	return len(w.draft.Schedules) - 1
}

func (w *Wizard) UpdateSchedule(i int, s domain.Schedule) error {
	if i < 0 || i >= len(w.draft.Schedules) {
		return fmt.Errorf("%w: %d", ErrScheduleIndex, i)
	}
	w.draft.Schedules[i] = s
	return nil
}

func (w *Wizard) RemoveSchedule(i int) error {
	if i < 0 || i >= len(w.draft.Schedules) {
		return fmt.Errorf("%w: %d", ErrScheduleIndex, i)
	}
	if len(w.draft.Schedules) == 1 {
		return ErrLastSchedule
	}
	w.draft.Schedules = slices.Delete(w.draft.Schedules, i, i+1)
	return nil
}

// SetExcludedContacts replaces the exclusion list. Blank and repeated
// entries are dropped.
func (w *Wizard) SetExcludedContacts(contacts []string) {
	out := make([]string, 0, len(contacts))
	for _, c := range contacts {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	w.draft.ExcludedContacts = out
}

func (w *Wizard) SelectLeadTags(names []string) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	w.draft.SelectedLeadTags = out
}

// ToggleLeadTag flips the selection of name and reports whether it is now
// selected.
func (w *Wizard) ToggleLeadTag(name string) bool {
	if i := slices.Index(w.draft.SelectedLeadTags, name); i >= 0 {
		w.draft.SelectedLeadTags = slices.Delete(w.draft.SelectedLeadTags, i, i+1)
		return false
	}
	w.draft.SelectedLeadTags = append(w.draft.SelectedLeadTags, name)
	return true
}

func (w *Wizard) SelectAccounts(ids []int64) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	w.draft.SelectedAccountIDs = out
}

func (w *Wizard) ToggleAccount(id int64) bool {
	if i := slices.Index(w.draft.SelectedAccountIDs, id); i >= 0 {
		w.draft.SelectedAccountIDs = slices.Delete(w.draft.SelectedAccountIDs, i, i+1)
		return false
	}
	w.draft.SelectedAccountIDs = append(w.draft.SelectedAccountIDs, id)
	return true
}

// SetMaxLeads caps the number of leads contacted. Zero means no cap.
func (w *Wizard) SetMaxLeads(n int) error {
	if n < 0 {
		return ErrNegativeMaxLeads
	}
	w.draft.MaxLeads = n
	return nil
}

// SetDelay sets the delay range and recomputes the average. A range with
// min >= max is rejected and the draft is left unchanged.
func (w *Wizard) SetDelay(minSec, maxSec int) error {
	r := calc.DelayRange{Min: minSec, Max: maxSec}
	if !r.Valid() {
		return fmt.Errorf("%w: %d >= %d", ErrInvalidDelayRange, minSec, maxSec)
	}
	w.setDelay(r)
	return nil
}

func (w *Wizard) ApplyDelayPreset(preset int) error {
	r := calc.FromPreset(preset)
	if !r.Valid() {
		return fmt.Errorf("%w: preset %d", ErrInvalidDelayRange, preset)
	}
	w.setDelay(r)
	return nil
}

func (w *Wizard) setDelay(r calc.DelayRange) {
	w.draft.DelayMin = r.Min
	w.draft.DelayMax = r.Max
	w.draft.DelayAverage = r.Average()
}

// SetSaveAsTemplate marks the submission to also be kept as a template.
func (w *Wizard) SetSaveAsTemplate(save bool, name string) {
	w.draft.SaveAsTemplate = save
	w.draft.TemplateName = strings.TrimSpace(name)
}

// LeadPool counts the leads matched by the selected tags.
func (w *Wizard) LeadPool() int {
	return w.deps.Leads.CountByTags(w.draft.SelectedLeadTags)
}

// TargetCount is the lead pool capped by MaxLeads.
func (w *Wizard) TargetCount() int {
	pool := w.LeadPool()
	if w.draft.MaxLeads > 0 {
		return min(pool, w.draft.MaxLeads)
	}
	return pool
}

// SelectedAccounts resolves the selection against the account catalog in
// selection order. Ids the catalog does not know are skipped.
func (w *Wizard) SelectedAccounts() []domain.Account {
	out := make([]domain.Account, 0, len(w.draft.SelectedAccountIDs))
	for _, id := range w.draft.SelectedAccountIDs {
		if acc, ok := w.deps.Accounts.ByID(id); ok {
			out = append(out, acc)
		}
	}
	return out
}

// Distribution splits the target count across the selected accounts.
func (w *Wizard) Distribution() []domain.LeadDistributionEntry {
	return calc.Distribute(w.TargetCount(), w.SelectedAccounts())
}
