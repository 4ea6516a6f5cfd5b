package wizard

import (
	"fmt"
	"slices"
	"time"

	"campaign_builder/internal/calc"
	"campaign_builder/internal/domain"
)

// LoadTemplate overwrites the draft with the template. The schedules are not
// copied; the draft gets a single schedule tomorrow at the current minute so
// a cloned campaign never starts in the past.
//
// A template without delays keeps the draft's range. A template whose range
// has min >= max is rejected and the draft is left unchanged.
func (w *Wizard) LoadTemplate(id string) error {
	tpl, ok := w.deps.Templates.Template(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	delay := calc.DelayRange{Min: tpl.DelayMin, Max: tpl.DelayMax}
	keepDelay := delay.Min == 0 && delay.Max == 0
	if !keepDelay && !delay.Valid() {
		return fmt.Errorf("%w: template %s has %d >= %d", ErrInvalidDelayRange, id, delay.Min, delay.Max)
	}

	w.draft.Name = tpl.Name
	w.SelectLeadTags(tpl.SelectedLeadTags)
	w.SelectAccounts(tpl.SelectedAccountIDs)
	w.SetExcludedContacts(tpl.ExcludedContacts)
	w.draft.MaxLeads = max(0, tpl.MaxLeads)
	w.draft.SaveAsTemplate = false
	w.draft.TemplateName = ""
	if keepDelay {
		w.logger.Warn("template has no delay range, keeping current",
			"template_id", id,
			"delay_min", w.draft.DelayMin,
			"delay_max", w.draft.DelayMax,
		)
	} else {
		w.setDelay(delay)
	}
	w.media.Replace(tpl.Sequences)

	tomorrow := w.deps.Now().Add(24 * time.Hour).Truncate(time.Minute)
	w.draft.Schedules = []domain.Schedule{domain.ScheduleFrom(tomorrow)}

	w.logger.Info("template loaded",
		"template_id", id,
		"tags", len(w.draft.SelectedLeadTags),
		"accounts", len(w.draft.SelectedAccountIDs),
		"sequences", w.media.Len(),
	)
	return nil
}

// Submit assembles one campaign per schedule. It only runs from the review
// step and returns either every campaign or an error with none.
func (w *Wizard) Submit() ([]domain.Campaign, error) {
	if w.step != StepReview {
		return nil, ErrNotAtReview
	}
	if err := w.Validate(StepReview); err != nil {
		return nil, err
	}

	now := w.deps.Now()
	pool := w.LeadPool()
	target := w.TargetCount()
	maxLeads := w.draft.MaxLeads
	if maxLeads == 0 {
		maxLeads = pool
	}
	distribution := w.Distribution()
	kinds := w.media.MediaKinds()
	templateName := ""
	if w.draft.SaveAsTemplate {
		templateName = w.draft.TemplateName
	}

	k := len(w.draft.Schedules)
	out := make([]domain.Campaign, 0, k)
	for i, sched := range w.draft.Schedules {
		name := w.draft.Name
		if k > 1 {
			name = fmt.Sprintf("%s - %d", w.draft.Name, i+1)
		}
		out = append(out, domain.Campaign{
			ID:                 w.deps.NewID(),
			Name:               name,
			Schedules:          []domain.Schedule{sched},
			Status:             domain.CampaignScheduled,
			TargetCount:        target,
			MaxLeads:           maxLeads,
			SelectedLeadTags:   slices.Clone(w.draft.SelectedLeadTags),
			SelectedAccountIDs: slices.Clone(w.draft.SelectedAccountIDs),
			ExcludedContacts:   slices.Clone(w.draft.ExcludedContacts),
			Sequences:          w.media.Sequences(),
			MediaTypes:         slices.Clone(kinds),
			Distribution:       slices.Clone(distribution),
			DelayMin:           w.draft.DelayMin,
			DelayMax:           w.draft.DelayMax,
			DelayAverage:       w.draft.DelayAverage,
			SaveAsTemplate:     w.draft.SaveAsTemplate,
			TemplateName:       templateName,
			CreatedAt:          now,
		})
	}

	w.logger.Info("campaigns assembled",
		"name", w.draft.Name,
		"campaigns", len(out),
		"target_count", target,
		"accounts", len(distribution),
	)
	return out, nil
}
