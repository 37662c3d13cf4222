package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-whatscv-backend/config"
	"go-whatscv-backend/internal/domain"
	"go-whatscv-backend/pkg/logger"
)

const systemPrompt = "You are an expert HR parsing assistant. Extract structured JSON only. " +
	"Do not invent facts. If a field is missing, set it to null."

// responseSchema is the fixed structured-output schema sent with every
// request. Scalars are nullable; the two lists are required.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"full_name":     map[string]any{"type": "string", "nullable": true},
		"email":         map[string]any{"type": "string", "nullable": true},
		"phone":         map[string]any{"type": "string", "nullable": true},
		"id_number":     map[string]any{"type": "string", "nullable": true},
		"location_city": map[string]any{"type": "string", "nullable": true},
		"education": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"institution":              map[string]any{"type": "string", "nullable": true},
					"degree":                   map[string]any{"type": "string", "nullable": true},
					"major":                    map[string]any{"type": "string", "nullable": true},
					"gpa":                      map[string]any{"type": "string", "nullable": true},
					"status":                   map[string]any{"type": "string", "enum": []string{"graduated", "attending"}, "nullable": true},
					"expected_graduation_date": map[string]any{"type": "string", "nullable": true},
				},
			},
		},
		"experiences": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"company":           map[string]any{"type": "string", "nullable": true},
					"organization":      map[string]any{"type": "string", "nullable": true},
					"title":             map[string]any{"type": "string", "nullable": true},
					"dates":             map[string]any{"type": "string", "nullable": true},
					"employment_status": map[string]any{"type": "string", "enum": []string{"working", "finished"}, "nullable": true},
					"description":       map[string]any{"type": "string", "nullable": true},
				},
			},
		},
	},
	"required": []string{"experiences", "education"},
}

// Client calls the Gemini generateContent endpoint with a structured-output
// schema. It implements domain.StructuredExtractor and never surfaces
// backend instability: every failure collapses to the safe default.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Extract returns the structured fields for the given paragraph and
// optional CV text, or domain.SafeDefaultFields on any backend error,
// timeout, or malformed output.
func (c *Client) Extract(ctx context.Context, paragraph, cvText string) domain.ExtractedFields {
	raw, err := c.generate(ctx, buildUserContent(paragraph, cvText))
	if err != nil {
		logger.Log.Warn("gemini extraction degraded, using safe default", "error", err)
		return domain.SafeDefaultFields()
	}
	return DecodeFields(raw)
}

func (c *Client) generate(ctx context.Context, userContent string) ([]byte, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: systemPrompt + "\n\n" + userContent}}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

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
		return nil, fmt.Errorf("gemini http %d: %s", resp.StatusCode, truncate(string(raw), 500))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gemini decode error: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	return []byte(out.Candidates[0].Content.Parts[0].Text), nil
}

// buildUserContent joins the paragraph with the optional CV text, blank
// line separated, matching the prompt layout the schema was tuned on.
func buildUserContent(paragraph, cvText string) string {
	paragraph = strings.TrimSpace(paragraph)
	cvText = strings.TrimSpace(cvText)

	var b strings.Builder
	b.WriteString("Paragraph:\n")
	b.WriteString(paragraph)
	if cvText != "" {
		b.WriteString("\n\nCV Text:\n")
		b.WriteString(cvText)
	}
	return b.String()
}

// rawFields mirrors the wire schema with every field optional, so a
// partially valid response still decodes as far as it goes.
type rawFields struct {
	FullName     *string         `json:"full_name"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	IDNumber     *string         `json:"id_number"`
	LocationCity *string         `json:"location_city"`
	Education    []rawEducation  `json:"education"`
	Experiences  []rawExperience `json:"experiences"`
}

type rawEducation struct {
	Institution            *string `json:"institution"`
	Degree                 *string `json:"degree"`
	Major                  *string `json:"major"`
	GPA                    *string `json:"gpa"`
	Status                 *string `json:"status"`
	ExpectedGraduationDate *string `json:"expected_graduation_date"`
}

type rawExperience struct {
	Company          *string `json:"company"`
	Organization     *string `json:"organization"`
	Title            *string `json:"title"`
	Dates            *string `json:"dates"`
	EmploymentStatus *string `json:"employment_status"`
	Description      *string `json:"description"`
}

// DecodeFields validates a raw model response against the schema shape and
// converts it to domain.ExtractedFields. Anything that fails JSON decoding
// collapses to the safe default. The legacy "organization" key backfills
// "company" when company itself is null.
func DecodeFields(raw []byte) domain.ExtractedFields {
	var rf rawFields
	if err := json.Unmarshal(raw, &rf); err != nil {
		logger.Log.Warn("gemini response failed schema decode, using safe default", "error", err)
		return domain.SafeDefaultFields()
	}

	out := domain.ExtractedFields{
		FullName:     rf.FullName,
		Email:        rf.Email,
		Phone:        rf.Phone,
		IDNumber:     rf.IDNumber,
		LocationCity: rf.LocationCity,
		Education:    make([]domain.ExtractedEducation, 0, len(rf.Education)),
		Experiences:  make([]domain.ExtractedExperience, 0, len(rf.Experiences)),
	}

	for _, e := range rf.Education {
		out.Education = append(out.Education, domain.ExtractedEducation{
			Institution:            e.Institution,
			Degree:                 e.Degree,
			Major:                  e.Major,
			GPA:                    e.GPA,
			Status:                 e.Status,
			ExpectedGraduationDate: e.ExpectedGraduationDate,
		})
	}

	for _, x := range rf.Experiences {
		company := x.Company
		if company == nil || *company == "" {
			company = x.Organization
		}
		out.Experiences = append(out.Experiences, domain.ExtractedExperience{
			Company:          company,
			Title:            x.Title,
			Dates:            x.Dates,
			EmploymentStatus: x.EmploymentStatus,
			Description:      x.Description,
		})
	}

	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
