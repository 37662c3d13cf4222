package domain

import "context"

// Provider identifies which messaging platform delivered an inbound event.
type Provider string

const (
	ProviderTwilio        Provider = "twilio"
	ProviderWhatsAppCloud Provider = "whatsapp-cloud"
)

// InboundKind classifies an inbound message for the reply state machine.
type InboundKind string

const (
	KindText     InboundKind = "text"
	KindDocument InboundKind = "document"
	KindOther    InboundKind = "other"
)

// InboundMessage is the provider-neutral view of one webhook event. Exactly
// one of MediaURL (direct fetch) or MediaID (two-step resolve) is set for
// document messages.
type InboundMessage struct {
	Provider Provider
	Kind     InboundKind
	From     string
	Body     string
	MediaURL string
	MediaID  string
	Filename string
}

// IngestionResult is the structured outcome reported to the webhook caller.
// It describes processing, not acknowledgement delivery: a failed outbound
// reply never flips OK.
type IngestionResult struct {
	OK          bool            `json:"ok"`
	Ignored     bool            `json:"ignored,omitempty"`
	Action      ReconcileAction `json:"action,omitempty"`
	CandidateID *int64          `json:"candidate_id,omitempty"`
	Reply       string          `json:"reply,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type IngestionUsecase interface {
	HandleInbound(ctx context.Context, msg InboundMessage) (*IngestionResult, error)
}

// MediaFetcher retrieves attachment bytes from the provider and writes them
// to dest. Callers own dest and must remove it on every exit path.
type MediaFetcher interface {
	// FetchURL performs a single authenticated GET against a ready-to-use URL.
	FetchURL(ctx context.Context, url, dest string) error
	// FetchMediaID resolves an opaque media id to a transient download URL
	// first, then fetches the binary.
	FetchMediaID(ctx context.Context, mediaID, dest string) error
}

// Notifier delivers the best-effort acknowledgement back to the sender.
type Notifier interface {
	SendText(ctx context.Context, to, body string) error
}

// TwilioWebhookPayload is the permissive Twilio-style JSON event. Go's JSON
// decoding is case-insensitive on field names, so both Body/body and
// From/from map onto the same fields.
type TwilioWebhookPayload struct {
	Body  string        `json:"Body"`
	From  string        `json:"From"`
	Media []TwilioMedia `json:"media"`
}

type TwilioMedia struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// ToInbound maps the Twilio payload onto the provider-neutral message.
func (p TwilioWebhookPayload) ToInbound() InboundMessage {
	msg := InboundMessage{
		Provider: ProviderTwilio,
		Kind:     KindText,
		From:     p.From,
		Body:     p.Body,
	}
	if len(p.Media) > 0 && p.Media[0].URL != "" {
		msg.Kind = KindDocument
		msg.MediaURL = p.Media[0].URL
		msg.Filename = p.Media[0].Filename
	}
	return msg
}

// CloudWebhookPayload is the WhatsApp Cloud API event envelope:
// entry[0].changes[0].value.messages[0] carries the message.
type CloudWebhookPayload struct {
	Entry []CloudEntry `json:"entry"`
}

type CloudEntry struct {
	Changes []CloudChange `json:"changes"`
}

type CloudChange struct {
	Value CloudValue `json:"value"`
}

type CloudValue struct {
	Messages []CloudMessage `json:"messages"`
}

type CloudMessage struct {
	ID       string         `json:"id"`
	From     string         `json:"from"`
	Type     string         `json:"type"`
	Text     *CloudText     `json:"text,omitempty"`
	Document *CloudDocument `json:"document,omitempty"`
}

type CloudText struct {
	Body string `json:"body"`
}

type CloudDocument struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// FirstMessage digs out the first message of the envelope, or nil when the
// event carries none (status callbacks and the like).
func (p CloudWebhookPayload) FirstMessage() *CloudMessage {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil
	}
	msgs := p.Entry[0].Changes[0].Value.Messages
	if len(msgs) == 0 {
		return nil
	}
	return &msgs[0]
}

// ToInbound maps a Cloud API message onto the provider-neutral message.
// Unknown types (audio, image, stickers...) classify as KindOther and are
// acknowledged without a reply.
func (m CloudMessage) ToInbound() InboundMessage {
	msg := InboundMessage{
		Provider: ProviderWhatsAppCloud,
		From:     m.From,
	}
	switch m.Type {
	case "text":
		msg.Kind = KindText
		if m.Text != nil {
			msg.Body = m.Text.Body
		}
	case "document":
		if m.Document != nil && m.Document.ID != "" {
			msg.Kind = KindDocument
			msg.MediaID = m.Document.ID
			msg.Filename = m.Document.Filename
		} else {
			// Document message without a resolvable media reference is
			// handled like a bare text message: guidance reply.
			msg.Kind = KindText
		}
	default:
		msg.Kind = KindOther
	}
	return msg
}
