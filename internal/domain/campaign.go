package domain

import "time"

type CampaignStatus string

const (
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// CampaignDraft is the aggregate edited by one wizard instance.
type CampaignDraft struct {
	Name               string
	Schedules          []Schedule
	SelectedLeadTags   []string
	SelectedAccountIDs []int64
	ExcludedContacts   []string
	Sequences          []MediaSequence
	DelayMin           int
	DelayMax           int
	DelayAverage       int
	MaxLeads           int
	SaveAsTemplate     bool
	TemplateName       string
}

// Campaign is an immutable record emitted once per draft schedule.
type Campaign struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	Schedules          []Schedule              `json:"schedules"`
	Status             CampaignStatus          `json:"status"`
	TargetCount        int                     `json:"target_count"`
	MaxLeads           int                     `json:"max_leads"`
	SelectedLeadTags   []string                `json:"selected_tags"`
	SelectedAccountIDs []int64                 `json:"selected_accounts"`
	ExcludedContacts   []string                `json:"excluded_contacts"`
	Sequences          []MediaSequence         `json:"sequences"`
	MediaTypes         []MediaKind             `json:"media_types"`
	Distribution       []LeadDistributionEntry `json:"distribution"`
	DelayMin           int                     `json:"delay_min"`
	DelayMax           int                     `json:"delay_max"`
	DelayAverage       int                     `json:"delay_average"`
	SaveAsTemplate     bool                    `json:"use_template"`
	TemplateName       string                  `json:"template_name,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

// LeadDistributionEntry is the share of the lead pool assigned to one
// account. It is derived and never stored on its own.
type LeadDistributionEntry struct {
	AccountID   int64  `json:"account_id"`
	AccountName string `json:"account_name"`
	LeadCount   int    `json:"lead_count"`
}

// CampaignTemplate is a saved draft that can be loaded into a new wizard.
type CampaignTemplate struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Schedules          []Schedule      `json:"schedules"`
	SelectedLeadTags   []string        `json:"selected_tags"`
	SelectedAccountIDs []int64         `json:"selected_accounts"`
	ExcludedContacts   []string        `json:"excluded_contacts"`
	Sequences          []MediaSequence `json:"sequences"`
	MaxLeads           int             `json:"max_leads"`
	DelayMin           int             `json:"delay_min"`
	DelayMax           int             `json:"delay_max"`
}
