// Package webhook posts Discord embeds to webhook URLs.
// It is shared by the logger, the anti-crash reporter and the web server request log.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Footer is the embed footer.
type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// Author is the embed author line.
type Author struct {
	Name string `json:"name"`
}

// Field is a single embed field.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed mirrors the subset of the Discord embed object we send.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Author      *Author `json:"author,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

type payload struct {
	Embeds []Embed `json:"embeds"`
}

var client = &http.Client{Timeout: 10 * time.Second}

// Post sends the embeds to url. An empty url is a no-op.
func Post(ctx context.Context, url string, embeds ...Embed) error {
	if url == "" {
		return nil
	}
	for i := range embeds {
		if embeds[i].Timestamp == "" {
			embeds[i].Timestamp = time.Now().Format(time.RFC3339)
		}
	}

	body, err := json.Marshal(payload{Embeds: embeds})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
