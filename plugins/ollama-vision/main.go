// Package main provides a pose-review plugin backed by a local Ollama server.
// It classifies pose snapshots and writes coaching text with a vision model.
//
// Build with: go build -o plugins/ollama-vision/ollama-vision ./plugins/ollama-vision
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2-vision:11b"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Image  []byte          `json:"image"`
	Prompt string          `json:"prompt"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config selects the Ollama server and model. Environment variables
// OLLAMA_HOST and OLLAMA_VISION_MODEL fill unset fields.
type Config struct {
	BaseURL string `json:"baseUrl"`
	Model   string `json:"model"`
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Format string   `json:"format,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	cfg, err := loadConfig(req.Config)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	ctx := context.Background()
	var data json.RawMessage

	switch req.Action {
	case "classify-pose":
		data, err = classifyPose(ctx, cfg, req)
	case "generate-text":
		data, err = generateText(ctx, cfg, req)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse(data)
}

func loadConfig(raw json.RawMessage) (Config, error) {
	var cfg Config
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OLLAMA_HOST")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if !strings.Contains(cfg.BaseURL, "://") {
		cfg.BaseURL = "http://" + cfg.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OLLAMA_VISION_MODEL")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return cfg, nil
}

// classifyPose returns the model's JSON verdict unchanged.
func classifyPose(ctx context.Context, cfg Config, req Request) (json.RawMessage, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("image is required")
	}

	out, err := generate(ctx, cfg, generateRequest{
		Model:  cfg.Model,
		Prompt: req.Prompt,
		Images: []string{base64.StdEncoding.EncodeToString(req.Image)},
		Format: "json",
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(out)) {
		return nil, fmt.Errorf("model returned invalid JSON")
	}
	return json.RawMessage(out), nil
}

func generateText(ctx context.Context, cfg Config, req Request) (json.RawMessage, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	out, err := generate(ctx, cfg, generateRequest{Model: cfg.Model, Prompt: req.Prompt})
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"text": out})
}

func generate(ctx context.Context, cfg Config, body generateRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ollama response parse (status %d)", resp.StatusCode)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama error: %s", parsed.Error)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama status %d", resp.StatusCode)
	}

	out := strings.TrimSpace(parsed.Response)
	if out == "" {
		return "", fmt.Errorf("empty response")
	}
	return out, nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse(data json.RawMessage) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}
