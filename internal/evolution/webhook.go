package evolution

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventMessagesUpsert is the gateway event emitted for new messages, inbound
// and outbound alike; outbound echoes carry key.fromMe=true.
const EventMessagesUpsert = "messages.upsert"

// WebhookEvent is the gateway's webhook envelope.
type WebhookEvent struct {
	Event    string      `json:"event"`
	Instance string      `json:"instance"`
	Data     WebhookData `json:"data"`
}

type WebhookData struct {
	Key              MessageKey     `json:"key"`
	Message          MessagePayload `json:"message"`
	MessageTimestamp int64          `json:"messageTimestamp"`
	PushName         string         `json:"pushName"`
}

type MessageKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

// MessagePayload carries the two text shapes the gateway produces: plain
// conversation text and extended/quoted text.
type MessagePayload struct {
	Conversation        string        `json:"conversation,omitempty"`
	ExtendedTextMessage *ExtendedText `json:"extendedTextMessage,omitempty"`
}

type ExtendedText struct {
	Text string `json:"text"`
}

// ParseWebhook decodes the webhook body.
func ParseWebhook(body []byte) (WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return WebhookEvent{}, fmt.Errorf("evolution: decode webhook: %w", err)
	}
	return evt, nil
}

// FilterReason says why an event did not proceed to classification.
type FilterReason string

const (
	ReasonNone       FilterReason = ""
	ReasonNotMessage FilterReason = "not_message"
	ReasonEcho       FilterReason = "echo"
	ReasonEmptyText  FilterReason = "empty_text"
)

// FilterResult is the outcome of the message filter stage.
type FilterResult struct {
	Proceed bool
	Reason  FilterReason
	Text    string
}

// Filter decides whether the event is a user text message worth classifying.
// Pure function of the envelope.
func Filter(evt WebhookEvent) FilterResult {
	if evt.Event != EventMessagesUpsert {
		return FilterResult{Reason: ReasonNotMessage}
	}
	if evt.Data.Key.FromMe {
		return FilterResult{Reason: ReasonEcho}
	}
	text := strings.TrimSpace(evt.Data.Message.Conversation)
	if text == "" && evt.Data.Message.ExtendedTextMessage != nil {
		text = strings.TrimSpace(evt.Data.Message.ExtendedTextMessage.Text)
	}
	if text == "" {
		return FilterResult{Reason: ReasonEmptyText}
	}
	return FilterResult{Proceed: true, Text: text}
}
