package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultMaxTokens = 800

// Extractor turns an encoded receipt image into a structured Receipt.
type Extractor interface {
	ExtractReceipt(ctx context.Context, imageBase64 string) (*Receipt, error)
}

// VisionClient calls an OpenAI-compatible chat completions endpoint with the
// receipt image attached as a data URL.
type VisionClient struct {
	apiKey     string
	endpoint   string
	maxTokens  int
	httpClient *http.Client
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type chatPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewVisionClient creates an extraction client for the given endpoint.
func NewVisionClient(apiKey, endpoint string, timeout time.Duration, maxTokens int) *VisionClient {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &VisionClient{
		apiKey:    apiKey,
		endpoint:  strings.TrimRight(endpoint, "/"),
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExtractReceipt sends the image to the vision model and parses the answer.
func (c *VisionClient) ExtractReceipt(ctx context.Context, imageBase64 string) (*Receipt, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("vision api key is missing")
	}
	if strings.TrimSpace(imageBase64) == "" {
		return nil, errors.New("image is empty")
	}

	reqBody := chatRequest{
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: []chatPart{{Type: "text", Text: extractionPrompt}},
			},
			{
				Role: "user",
				Content: []chatPart{{
					Type:     "image_url",
					ImageURL: &chatImageURL{URL: "data:image/jpeg;base64," + imageBase64},
				}},
			},
		},
		Temperature: 0.2,
		MaxTokens:   c.maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("api-key", c.apiKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var apiErr chatResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("vision api error: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("vision api error: %s", strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("vision response missing choices")
	}

	return ParseResponse(parsed.Choices[0].Message.Content)
}
