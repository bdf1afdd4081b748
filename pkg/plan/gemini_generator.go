package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nutriplan/domain"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type (
	geminiPart struct {
		Text string `json:"text"`
	}

	geminiContent struct {
		Role  string       `json:"role,omitempty"`
		Parts []geminiPart `json:"parts"`
	}

	geminiRequest struct {
		SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
		Contents          []geminiContent        `json:"contents"`
		GenerationConfig  map[string]interface{} `json:"generationConfig"`
	}

	geminiResponse struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	geminiGenerator struct {
		apiKey     string
		model      string
		baseURL    string
		httpClient *http.Client
	}
)

func NewGeminiGenerator(apiKey, model string, timeout time.Duration) PlanGenerator {
	return &geminiGenerator{
		apiKey:     apiKey,
		model:      model,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *geminiGenerator) Request(ctx context.Context, messages []Message) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}
	if g.model == "" {
		return "", fmt.Errorf("GEMINI_MODEL not set")
	}

	body := geminiRequest{
		GenerationConfig: map[string]interface{}{
			"temperature":      0.7,
			"topP":             0.8,
			"topK":             40,
			"responseMimeType": "application/json",
		},
	}
	for _, m := range messages {
		content := geminiContent{Role: m.Role, Parts: []geminiPart{{Text: m.Text}}}
		if m.Role == RoleSystem {
			content.Role = ""
			body.SystemInstruction = &content
			continue
		}
		body.Contents = append(body.Contents, content)
	}

	requestJSON, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	geminiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, geminiURL, bytes.NewBuffer(requestJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeminiAPIFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: %s - %s", domain.ErrGeminiAPIFailed, resp.Status, string(bodyBytes))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrGeminiAPIFailed, err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrGeminiAPIFailed
	}

	var sb strings.Builder
	for _, p := range geminiResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
