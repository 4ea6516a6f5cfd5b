// Package calc holds the derived-value rules of the campaign wizard.
package calc

import "campaign_builder/internal/domain"

// Distribute splits totalLeads across accounts in the given order. Each
// account receives totalLeads/len(accounts) and the first remainder accounts
// one more. Negative totals count as zero.
func Distribute(totalLeads int, accounts []domain.Account) []domain.LeadDistributionEntry {
	if len(accounts) == 0 {
		return []domain.LeadDistributionEntry{}
	}
	if totalLeads < 0 {
		totalLeads = 0
	}

	base := totalLeads / len(accounts)
	remainder := totalLeads % len(accounts)

	out := make([]domain.LeadDistributionEntry, len(accounts))
	for i, acc := range accounts {
		n := base
		if i < remainder {
			n++
		}
		out[i] = domain.LeadDistributionEntry{
			AccountID:   acc.ID,
			AccountName: acc.Name,
			LeadCount:   n,
		}
	}
	return out
}
