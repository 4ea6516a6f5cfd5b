package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campaign_builder/internal/domain"
)

var ErrNothingToSubmit = errors.New("no campaigns to submit")

// SubmissionService hands finished campaigns to the dispatch queue and
// announces them.
type SubmissionService struct {
	publisher Publisher
	notifier  Notifier
	user      string
	logger    *slog.Logger
}

func NewSubmissionService(publisher Publisher, notifier Notifier, user string, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{
		publisher: publisher,
		notifier:  notifier,
		user:      user,
		logger:    logger,
	}
}

// Submit builds the campaigns and publishes them as one batch. Nothing is
// published when building fails, and the notification is sent only after
// the batch is committed.
func (s *SubmissionService) Submit(ctx context.Context, builder CampaignBuilder) ([]domain.Campaign, error) {
	campaigns, err := builder.Submit()
	if err != nil {
		return nil, fmt.Errorf("build campaigns: %w", err)
	}
	if len(campaigns) == 0 {
		return nil, ErrNothingToSubmit
	}

	if err := s.publisher.PublishCampaigns(ctx, campaigns); err != nil {
		return nil, fmt.Errorf("publish campaigns: %w", err)
	}

	s.logger.Info("campaigns submitted", "count", len(campaigns), "name", campaigns[0].Name)

	if s.notifier != nil {
		s.notifier.Notify(ctx, domain.Notification{
			Action:   domain.ActionCampaignCreated,
			User:     s.user,
			Data:     summarize(campaigns),
			Messages: messages(campaigns[0]),
		})
	}

	return campaigns, nil
}

type campaignSummary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Schedule    []domain.Schedule `json:"schedules"`
	TargetCount int               `json:"targetCount"`
	Accounts    []int64           `json:"selectedAccounts"`
	Tags        []string          `json:"selectedTags"`
}

func summarize(campaigns []domain.Campaign) []campaignSummary {
	out := make([]campaignSummary, len(campaigns))
	for i, c := range campaigns {
		out[i] = campaignSummary{
			ID:          c.ID,
			Name:        c.Name,
			Schedule:    c.Schedules,
			TargetCount: c.TargetCount,
			Accounts:    c.SelectedAccountIDs,
			Tags:        c.SelectedLeadTags,
		}
	}
	return out
}

// messages flattens the sequences of c, every message carrying the average
// delay.
func messages(c domain.Campaign) []domain.Message {
	var out []domain.Message
	for _, seq := range c.Sequences {
		for _, it := range seq.Items {
			out = append(out, domain.Message{
				ID:      it.ID,
				Kind:    it.Kind,
				Content: it.Content,
				Delay:   c.DelayAverage,
			})
		}
	}
	return out
}
