package domain

// NotifyOutcome reports per-channel delivery.
type NotifyOutcome struct {
	ChatSent    bool `json:"chat_sent"`
	WebhookSent bool `json:"webhook_sent"`
}

// Complete reports whether both channels succeeded.
func (o NotifyOutcome) Complete() bool {
	return o.ChatSent && o.WebhookSent
}

// LeadNotification is the message and its result handed to the notifier.
type LeadNotification struct {
	Message *NormalizedMessage
	Result  *ClassificationResult
}
