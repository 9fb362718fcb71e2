// Package ai wraps the Gemini API for intent extraction, insight/advice
// elaboration and receipt OCR. Every call walks an ordered list of model
// candidates so a retired model name degrades instead of breaking the bot.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

var fallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash-latest",
	"gemini-flash-latest",
}

type Client struct {
	client  *genai.Client
	models  []string
	timeout time.Duration
	log     zerolog.Logger
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:  client,
		models:  modelCandidates(cfg.Model),
		timeout: timeout,
		log:     log,
	}, nil
}

// modelCandidates puts the configured model first, appends the known
// fallbacks, strips any "models/" prefix and deduplicates.
func modelCandidates(configured string) []string {
	raw := append([]string{configured}, fallbackModels...)
	seen := make(map[string]bool)
	var out []string
	for _, m := range raw {
		m = strings.TrimPrefix(strings.TrimSpace(m), "models/")
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func isModelNotFound(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}

// generate tries each model candidate in order, stopping at the first outcome
// that is not a model-not-found error. The attempt trail goes to the internal
// log only, never to the chat user.
func (c *Client) generate(ctx context.Context, contents []*genai.Content, jsonOutput bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.1),
	}
	if jsonOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	var lastNotFound error
	for _, model := range c.models {
		resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			if isModelNotFound(err) {
				c.log.Debug().Err(err).Str("model", model).Msg("model not found, trying next candidate")
				lastNotFound = err
				continue
			}
			return "", fmt.Errorf("gemini generate (%s): %w", model, err)
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", errors.New("gemini output is empty")
		}
		return text, nil
	}
	return "", fmt.Errorf("no supported gemini model (tried %s): %w", strings.Join(c.models, ", "), lastNotFound)
}

func textContents(prompt string) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
}

// ExtractIntent classifies raw user text and extracts transaction fields.
func (c *Client) ExtractIntent(ctx context.Context, rawInput string, now time.Time) (*Extraction, error) {
	output, err := c.generate(ctx, textContents(extractionPrompt(rawInput, now.UTC().Format(time.RFC3339))), true)
	if err != nil {
		return nil, err
	}

	span, err := ExtractJSONObject(output)
	if err != nil {
		return nil, err
	}
	var extraction Extraction
	if err := json.Unmarshal([]byte(span), &extraction); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	if err := extraction.Validate(); err != nil {
		return nil, fmt.Errorf("extraction contract violated: %w", err)
	}
	return &extraction, nil
}

type insightEnvelope struct {
	InsightText string `json:"insightText"`
}

func (c *Client) decodeInsight(output string) (string, error) {
	span, err := ExtractJSONObject(output)
	if err != nil {
		return "", err
	}
	var env insightEnvelope
	if err := json.Unmarshal([]byte(span), &env); err != nil {
		return "", fmt.Errorf("decode insight: %w", err)
	}
	if strings.TrimSpace(env.InsightText) == "" {
		return "", errors.New("insightText is empty")
	}
	return env.InsightText, nil
}

// GenerateInsightText elaborates a numeric monthly summary.
func (c *Client) GenerateInsightText(ctx context.Context, summary string) (string, error) {
	output, err := c.generate(ctx, textContents(insightPrompt(summary)), true)
	if err != nil {
		return "", err
	}
	return c.decodeInsight(output)
}

// GenerateAdviceText answers a user question grounded in the financial
// snapshot.
func (c *Client) GenerateAdviceText(ctx context.Context, userQuestion, financialSnapshot string) (string, error) {
	prompt := advicePrompt(time.Now().UTC().Format(time.RFC3339), userQuestion, financialSnapshot)
	output, err := c.generate(ctx, textContents(prompt), true)
	if err != nil {
		return "", err
	}
	return c.decodeInsight(output)
}

// ExtractReceiptText runs OCR over image bytes via Gemini vision. Whitespace
// only output counts as a failure.
func (c *Client) ExtractReceiptText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: ocrPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}
	output, err := c.generate(ctx, contents, false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(output) == "" {
		return "", errors.New("no OCR text detected")
	}
	return output, nil
}
