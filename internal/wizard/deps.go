// Package wizard drives the five-step campaign builder.
package wizard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"campaign_builder/internal/domain"
)

// TagCatalog is the read side of the tag cache. *catalog.TagRepository
// satisfies it.
type TagCatalog interface {
	Phase() domain.Phase
	ByKind(kind domain.TagKind) []domain.Tag
}

// AccountCatalog is the read side of the account cache.
type AccountCatalog interface {
	Phase() domain.Phase
	ByID(id int64) (domain.Account, bool)
}

// LeadCounter sizes the lead pool for a set of tag names.
type LeadCounter interface {
	CountByTags(names []string) int
}

// TemplateStore looks up saved campaign templates.
type TemplateStore interface {
	Template(id string) (domain.CampaignTemplate, bool)
}

// Templates is an in-memory TemplateStore keyed by template id.
type Templates map[string]domain.CampaignTemplate

func (t Templates) Template(id string) (domain.CampaignTemplate, bool) {
	tpl, ok := t[id]
	return tpl, ok
}

// Deps are the collaborators of a Wizard. Tags, Accounts and Leads are
// required; the rest default to no templates, time.Now, uuid.NewString and
// slog.Default.
type Deps struct {
	Tags      TagCatalog
	Accounts  AccountCatalog
	Leads     LeadCounter
	Templates TemplateStore
	Now       func() time.Time
	NewID     func() string
	Logger    *slog.Logger
}

var ErrMissingDependency = errors.New("wizard dependency missing")

func (d *Deps) setDefaults() error {
	switch {
	case d.Tags == nil:
		return fmt.Errorf("%w: tag catalog", ErrMissingDependency)
	case d.Accounts == nil:
		return fmt.Errorf("%w: account catalog", ErrMissingDependency)
	case d.Leads == nil:
		return fmt.Errorf("%w: lead counter", ErrMissingDependency)
	}
	if d.Templates == nil {
		d.Templates = Templates{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return nil
}
