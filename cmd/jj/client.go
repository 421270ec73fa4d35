package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultAPIURL = "http://localhost:5000/api"

// cliConfig is persisted at ~/.jj/config.json.
type cliConfig struct {
	APIURL string `json:"api_url,omitempty"`
	Token  string `json:"token,omitempty"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".jj", "config.json"), nil
}

func loadConfig() *cliConfig {
	cfg := &cliConfig{}
	path, err := configPath()
	if err != nil {
		return cfg
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	// A corrupt config file behaves like a missing one.
	_ = json.Unmarshal(raw, cfg)
	return cfg
}

func (c *cliConfig) save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func (c *cliConfig) apiURL() string {
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	return defaultAPIURL
}

// client wraps the pastebin API.
type client struct {
	cfg  *cliConfig
	http *http.Client
}

func newClient(cfg *cliConfig) *client {
	return &client{cfg: cfg, http: &http.Client{Timeout: 30 * time.Second}}
}

// do sends a JSON request and decodes the JSON response into out (which may
// be nil). Non-2xx responses come back as errors carrying the server's
// message.
func (c *client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.cfg.apiURL()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error connecting to API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// detectLanguage maps a filename extension to a language tag, matching what
// the server's syntax highlighter understands.
func detectLanguage(filename string) string {
	if filename == "" || filename == "-" {
		return "text"
	}
	extMap := map[string]string{
		".py":         "python",
		".js":         "javascript",
		".ts":         "typescript",
		".html":       "html",
		".css":        "css",
		".json":       "json",
		".xml":        "xml",
		".sql":        "sql",
		".sh":         "bash",
		".bash":       "bash",
		".c":          "c",
		".cpp":        "cpp",
		".java":       "java",
		".php":        "php",
		".rb":         "ruby",
		".go":         "go",
		".rs":         "rust",
		".yml":        "yaml",
		".yaml":       "yaml",
		".md":         "markdown",
		".dockerfile": "dockerfile",
	}
	if lang, ok := extMap[strings.ToLower(filepath.Ext(filename))]; ok {
		return lang
	}
	return "text"
}
