package n8n

import "campaign_builder/internal/domain"

// Field names used by the workflow payloads.
const (
	fieldID        = "id"
	fieldTagName   = "nome"
	fieldTagKind   = "tipo"
	fieldCreatedAt = "criado_em"
	fieldUpdatedAt = "atualizado_em"

	fieldAccountName = "nome_conta"
	fieldPhone       = "telefone"
	fieldStatus      = "status"
	fieldReputation  = "reputacao"
	fieldTagID       = "id_tag"
)

var tagKinds = map[string]domain.TagKind{
	"lead":     domain.TagKindLead,
	"account":  domain.TagKindAccount,
	"conta":    domain.TagKindAccount,
	"campaign": domain.TagKindCampaign,
	"campanha": domain.TagKindCampaign,
}

var accountStatuses = map[string]domain.AccountStatus{
	"connected":    domain.AccountConnected,
	"conectado":    domain.AccountConnected,
	"disconnected": domain.AccountDisconnected,
	"desconectado": domain.AccountDisconnected,
	"pending":      domain.AccountPending,
	"pendente":     domain.AccountPending,
}

var reputations = map[string]domain.Reputation{
	"good":    domain.ReputationGood,
	"boa":     domain.ReputationGood,
	"bad":     domain.ReputationBad,
	"ruim":    domain.ReputationBad,
	"neutral": domain.ReputationNeutral,
	"neutra":  domain.ReputationNeutral,
}

// timestamp layouts seen in workflow rows
var timeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}
