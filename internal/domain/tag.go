package domain

import "time"

type TagKind string

const (
	TagKindLead     TagKind = "lead"
	TagKindAccount  TagKind = "account"
	TagKindCampaign TagKind = "campaign"
)

// Tag is a labelled category owned by the remote workflow. The client only
// caches tags, it never edits them.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Kind      TagKind   `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
