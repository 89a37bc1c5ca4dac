package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RTDB talks to a Firebase Realtime Database over its REST interface. Every
// node is addressable as {base}{path}.json; POST generates push keys server
// side, PUT replaces, GET returns the JSON subtree (the literal "null" for
// absent nodes).
type RTDB struct {
	baseURL string
	auth    string // database secret or ID token, appended as ?auth=
	client  *http.Client
}

// NewRTDB creates a Realtime Database backend. The timeout bounds each
// request; a timed-out call surfaces as ErrUnavailable.
func NewRTDB(baseURL, auth string, timeout time.Duration) (*RTDB, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("store URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid store URL: %w", err)
	}
	return &RTDB{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		auth:    auth,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// resolveURL builds the REST URL for a node path, with optional query params.
func (d *RTDB) resolveURL(path string, params url.Values) string {
	if d.auth != "" {
		if params == nil {
			params = url.Values{}
		}
		params.Set("auth", d.auth)
	}
	u := d.baseURL + path + ".json"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// do performs one REST round trip and returns the response body. Transport
// failures and 5xx responses are mapped to ErrUnavailable.
func (d *RTDB) do(ctx context.Context, method, rawURL string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (d *RTDB) Exists(ctx context.Context, path string) (bool, error) {
	params := url.Values{}
	// shallow avoids transferring whole subtrees just to probe presence.
	params.Set("shallow", "true")

	body, err := d.do(ctx, http.MethodGet, d.resolveURL(path, params), nil)
	if err != nil {
		return false, err
	}
	return !isJSONNull(body), nil
}

func (d *RTDB) Read(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := d.do(ctx, http.MethodGet, d.resolveURL(path, nil), nil)
	if err != nil {
		return nil, err
	}
	if isJSONNull(body) {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func (d *RTDB) Write(ctx context.Context, path string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document for %s: %w", path, err)
	}

	if _, err := d.do(ctx, http.MethodPut, d.resolveURL(path, nil), bytes.NewReader(payload)); err != nil {
		return err
	}
	return nil
}

func (d *RTDB) Append(ctx context.Context, path string, doc any) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling document for %s: %w", path, err)
	}

	body, err := d.do(ctx, http.MethodPost, d.resolveURL(path, nil), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var pushed struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &pushed); err != nil {
		return "", fmt.Errorf("could not unmarshal push response: %w", err)
	}
	if pushed.Name == "" {
		return "", fmt.Errorf("push response missing generated key: %s", string(body))
	}
	return pushed.Name, nil
}

// isJSONNull reports whether a response body is the JSON literal null.
func isJSONNull(body []byte) bool {
	return string(bytes.TrimSpace(body)) == "null"
}
