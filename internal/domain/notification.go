package domain

// Notification is an event announced to the automation webhook.
type Notification struct {
	Action   string
	User     string
	Data     any
	Leads    []Lead
	Messages []Message
}

const (
	ActionCampaignCreated      = "campaign_created"
	ActionCampaignSent         = "campaign_sent"
	ActionWhatsAppConnected    = "whatsapp_connected"
	ActionWhatsAppDisconnected = "whatsapp_disconnected"
	ActionGenerateQR           = "generate_qr"
)

// Lead is a contact attached to a notification.
type Lead struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Tags            []string `json:"tags"`
	WhatsAppAccount string   `json:"whatsappAccount"`
	LastContact     string   `json:"lastContact"`
	Status          string   `json:"status"`
}

// Message is one outgoing message attached to a notification.
type Message struct {
	ID          string    `json:"id"`
	Kind        MediaKind `json:"type"`
	Content     string    `json:"content"`
	MediaBase64 string    `json:"mediaBase64,omitempty"`
	Delay       int       `json:"delay,omitempty"`
}
