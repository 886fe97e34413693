// Package genai calls the Gemini generateContent API to rewrite the
// SUMMARY, SKILLS and PROJECT EXPERIENCE sections of a resume against a job
// description, and validates the structured payload it returns.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	// GeminiAPIBase is the Gemini REST API base URL.
	GeminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"
	// GeminiModel is the default model.
	GeminiModel = "gemini-1.5-flash"
)

// Client is a Gemini API client. The API key is an explicit constructor
// argument scoped to the client, not process-global state.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new Gemini client.
func NewClient(apiKey, model string) (client *Client) {
	if model == "" {
		model = GeminiModel
	}
	client = &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: GeminiAPIBase,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	return client
}

// SetEndpoint overrides the API base URL, e.g. to point the client at a
// local test server.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// OptimizeSections asks the model to rewrite the three target sections and
// returns the validated replacement texts. Any parse or validation failure
// is a hard failure carrying the raw response for diagnosis; callers must
// not have started mutating the document yet.
func (c *Client) OptimizeSections(ctx context.Context, resumeText, jobText, projectLibrary string) (sections Sections, err error) {
	prompt := buildOptimizePrompt(resumeText, jobText, projectLibrary)

	var responseText string
	responseText, err = c.generateContent(ctx, prompt)
	if err != nil {
		err = errors.Wrap(err, "generation request failed")
		return sections, err
	}

	sections, err = parseSections(responseText)
	if err != nil {
		return sections, err
	}

	return sections, err
}

// generateContent sends a prompt to the Gemini API and returns the first
// candidate's text.
func (c *Client) generateContent(ctx context.Context, prompt string) (responseText string, err error) {
	geminiReq := GenerateContentRequest{
		Contents: []Content{
			{
				Parts: []Part{
					{Text: prompt},
				},
			},
		},
		GenerationConfig: &GenerationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	var reqBody []byte
	reqBody, err = json.Marshal(geminiReq)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return responseText, err
	}

	url := c.endpoint + "/models/" + c.model + ":generateContent"

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return responseText, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)

	var resp *http.Response
	resp, err = c.httpClient.Do(httpReq)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return responseText, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return responseText, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
		return responseText, err
	}

	responseText = gjson.GetBytes(respBody, "candidates.0.content.parts.0.text").String()
	if responseText == "" {
		err = errors.Errorf("response has no candidate text: %s", string(respBody))
		return responseText, err
	}

	return responseText, err
}

// parseSections decodes the strict-JSON payload and normalizes its keys, so
// variants like "project experience" or "Project_Experience" still land in
// the right field. Empty skills or projects after normalization fail the
// whole request.
func parseSections(payload string) (sections Sections, err error) {
	var raw map[string]interface{}
	err = json.Unmarshal([]byte(payload), &raw)
	if err != nil {
		err = errors.Wrapf(err, "generation payload is not a JSON object: %s", payload)
		return sections, err
	}

	normalized := make(map[string]string)
	for key, value := range raw {
		text, ok := value.(string)
		if !ok {
			continue
		}
		normalized[normalizeKey(key)] = text
	}

	sections.Summary = strings.TrimSpace(normalized["summary"])
	sections.Skills = strings.TrimSpace(normalized["skills"])

	projects := normalized["projects"]
	if projects == "" {
		projects = normalized["project experience"]
	}
	if projects == "" {
		projects = normalized["projectexperience"]
	}
	sections.Projects = strings.TrimSpace(projects)

	// Enforce the top-3 selection even if the model sends more.
	if sections.Projects != "" {
		sections.Projects = KeepTopProjects(sections.Projects, 3)
	}

	if sections.Skills == "" {
		err = errors.Errorf("missing or empty \"skills\" in generation payload: %s", payload)
		return sections, err
	}
	if sections.Projects == "" {
		err = errors.Errorf("missing or empty \"projects\" in generation payload: %s", payload)
		return sections, err
	}

	return sections, err
}

func normalizeKey(key string) (normalized string) {
	normalized = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "_", " ")
	return normalized
}
