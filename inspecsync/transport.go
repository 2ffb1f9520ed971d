// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package inspecsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var slashRun = regexp.MustCompile(`/+`)

// buildURL joins the configured server address with endpoint. Endpoints that
// are already absolute URLs pass through untouched; everything else is
// normalized to a single leading slash.
func (c *Client) buildURL(endpoint string) (string, error) {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint, nil
	}

	host := c.State.APIHost()
	if host == "" {
		return "", ErrHostNotConfigured
	}

	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	endpoint = slashRun.ReplaceAllString(endpoint, "/")

	return "http://" + host + endpoint, nil
}

// postJSON sends payload to endpoint. A nil return means the server answered
// 2xx. Any failure comes back as a *TransportError classified at this
// boundary; callers branch on the kind, never on message text.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) error {
	target, err := c.buildURL(endpoint)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return classifyRequestError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a bounded amount so the connection can be reused and the
		// status line carries some context in logs.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("request failed", "url", target, "status", resp.StatusCode, "body", string(snippet))
		return &TransportError{Kind: KindHTTP, Status: resp.StatusCode, URL: target}
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

// getJSON fetches endpoint and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	target, err := c.buildURL(endpoint)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return classifyRequestError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Kind: KindHTTP, Status: resp.StatusCode, URL: target}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func classifyRequestError(target string, err error) error {
	kind := KindUnreachable

	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		kind = KindTimeout
	} else if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}

	return &TransportError{Kind: kind, URL: target, Err: err}
}
