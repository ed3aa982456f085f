package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiClient is a thin JSON client over the daemon's HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: base,
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *apiClient) getJSON(path string, target any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, target)
}

func (c *apiClient) postJSON(path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, target)
}

// postDownload posts a JSON payload and returns the raw response body,
// for endpoints that stream file content.
func (c *apiClient) postDownload(path string, payload any) (content []byte, contentType, fileName string, err error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", "", fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, "", "", fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", "", apiError(resp)
	}
	content, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", "", fmt.Errorf("read download: %w", err)
	}
	return content, resp.Header.Get("Content-Type"), dispositionFileName(resp.Header.Get("Content-Disposition")), nil
}

func decodeResponse(resp *http.Response, target any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("daemon returned status %d", resp.StatusCode)
}

func dispositionFileName(disposition string) string {
	const marker = `filename="`
	start := bytes.Index([]byte(disposition), []byte(marker))
	if start < 0 {
		return ""
	}
	rest := disposition[start+len(marker):]
	end := bytes.IndexByte([]byte(rest), '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
