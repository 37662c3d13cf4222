package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-whatscv-backend/config"
	"go-whatscv-backend/internal/domain"
)

// Client talks to the WhatsApp Cloud (Graph) API: media metadata lookups,
// binary downloads and outbound text messages. All calls require the bearer
// access token; its absence is a configuration error, not a fetch failure.
type Client struct {
	baseURL       string
	accessToken   string
	phoneNumberID string
	httpClient    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:       cfg.GraphAPIBaseURL,
		accessToken:   cfg.WhatsAppAccessToken,
		phoneNumberID: cfg.WhatsAppPhoneNumberID,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

type mediaMetadata struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	ID       string `json:"id"`
}

// ResolveMediaURL exchanges an opaque media id for a transient download URL
// via the authenticated metadata endpoint.
func (c *Client) ResolveMediaURL(ctx context.Context, mediaID string) (string, error) {
	if c.accessToken == "" {
		return "", fmt.Errorf("whatsapp access token: %w", domain.ErrConfigMissing)
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, mediaID)
	raw, err := c.doGET(ctx, endpoint)
	if err != nil {
		return "", &domain.MediaUnavailableError{Reason: "media metadata lookup failed", Err: err}
	}

	var meta mediaMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", &domain.MediaUnavailableError{Reason: "media metadata decode failed", Err: err}
	}
	if meta.URL == "" {
		return "", &domain.MediaUnavailableError{Reason: "media metadata returned no url"}
	}
	return meta.URL, nil
}

// Download performs the authenticated binary fetch against a resolved URL
// and returns the body stream. The caller closes it.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	if c.accessToken == "" {
		return nil, fmt.Errorf("whatsapp access token: %w", domain.ErrConfigMissing)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4000))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("whatsapp http %d: %s", resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

type sendTextRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText delivers an outbound text message from the configured phone
// number id. Implements domain.Notifier.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if c.accessToken == "" {
		return fmt.Errorf("whatsapp access token: %w", domain.ErrConfigMissing)
	}
	if c.phoneNumberID == "" {
		return fmt.Errorf("whatsapp phone number id: %w", domain.ErrConfigMissing)
	}

	payload, err := json.Marshal(sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4000))
		return fmt.Errorf("whatsapp http %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (c *Client) doGET(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("whatsapp http %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
