package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// defaultAgentAddr is where a locally started agent listens.
const defaultAgentAddr = "http://127.0.0.1:8710"

var agentAddr string

func init() {
	addr := os.Getenv("MATCHER_AGENT_ADDR")
	if addr == "" {
		addr = defaultAgentAddr
	}
	rootCmd.PersistentFlags().StringVar(&agentAddr, "addr", addr, "Address of the running agent")
}

// agentClient talks to a running agent's HTTP API. Every CLI command
// except serve and scan goes through it.
type agentClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newAgentClient() *agentClient {
	return &agentClient{
		baseURL: agentAddr,
		apiKey:  os.Getenv("MATCHER_API_KEY"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// message posts a typed message to the agent and decodes the response
// into out. A connection failure gets a hint about starting the agent.
func (c *agentClient) message(msgType string, extra map[string]any, out any) error {
	payload := map[string]any{"type": msgType}
	for k, v := range extra {
		payload[k] = v
	}
	return c.post("/message", payload, out)
}

func (c *agentClient) post(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *agentClient) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *agentClient) delete(path string, out any) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *agentClient) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("agent unreachable at %s (is 'matcher_agent serve' running?): %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("agent returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode agent response: %w", err)
	}
	return nil
}
