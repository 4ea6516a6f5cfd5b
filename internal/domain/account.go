package domain

import "time"

type AccountStatus string

const (
	AccountConnected    AccountStatus = "connected"
	AccountDisconnected AccountStatus = "disconnected"
	AccountPending      AccountStatus = "pending"
)

type Reputation string

const (
	ReputationGood    Reputation = "good"
	ReputationBad     Reputation = "bad"
	ReputationNeutral Reputation = "neutral"
)

// Account is a WhatsApp sender account. TagID optionally points at a Tag of
// kind account.
type Account struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	Phone      string        `json:"phone"`
	Status     AccountStatus `json:"status"`
	Reputation Reputation    `json:"reputation"`
	TagID      *int64        `json:"tag_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Clone returns a copy of a with its own TagID.
func (a Account) Clone() Account {
	if a.TagID != nil {
		id := *a.TagID
		a.TagID = &id
	}
	return a
}
