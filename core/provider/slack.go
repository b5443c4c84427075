package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	slackEmojiListURL = "https://slack.com/api/emoji.list"
	slackAuthTestURL  = "https://slack.com/api/auth.test"

	// Alias chains deeper than this are treated as broken.
	slackMaxAliasDepth = 10
)

// Slack fetches custom emojis from a Slack workspace. A single authenticated
// emoji.list call enumerates the full set; alias entries are resolved to the
// underlying asset's URL.
type Slack struct {
	namespace string
	token     string
	client    *http.Client
	maxBytes  int64

	// overridable in tests
	listURL string
	authURL string
}

func newSlack(namespace, token string, client *http.Client, maxBytes int64) *Slack {
	return &Slack{
		namespace: namespace,
		token:     token,
		client:    client,
		maxBytes:  maxBytes,
		listURL:   slackEmojiListURL,
		authURL:   slackAuthTestURL,
	}
}

// Identify returns the provider descriptor.
func (s *Slack) Identify() Descriptor {
	return Descriptor{Kind: KindSlack, Namespace: s.namespace}
}

// slackEmojiResponse is the emoji.list payload. Values are either asset URLs
// or "alias:<target>" markers.
type slackEmojiResponse struct {
	OK    bool              `json:"ok"`
	Error string            `json:"error"`
	Emoji map[string]string `json:"emoji"`
}

// List enumerates the workspace's custom emojis with aliases resolved.
// Entries are returned in name order so downstream reporting is reproducible.
func (s *Slack) List(ctx context.Context) ([]Entry, error) {
	data, err := s.callAPI(ctx, s.listURL)
	if err != nil {
		return nil, err
	}

	var payload slackEmojiResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &UnavailableError{Provider: s.namespace, Err: fmt.Errorf("decoding emoji.list: %w", err)}
	}
	if !payload.OK {
		return nil, s.apiError(payload.Error)
	}

	resolved := resolveAliases(payload.Emoji)

	names := make([]string, 0, len(resolved))
	for name := range resolved {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{
			Namespace: s.namespace,
			Name:      name,
			URL:       resolved[name],
		})
	}
	return entries, nil
}

// Fetch retrieves the asset bytes for one listed entry.
func (s *Slack) Fetch(ctx context.Context, entry Entry) (*Content, error) {
	return fetchAsset(ctx, s.client, s.namespace, entry, s.maxBytes)
}

// Validate checks the token via auth.test, then verifies the emoji:read
// scope by listing, returning the emoji count.
func (s *Slack) Validate(ctx context.Context) (int, error) {
	data, err := s.callAPI(ctx, s.authURL)
	if err != nil {
		return 0, err
	}

	var auth struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &auth); err != nil {
		return 0, &UnavailableError{Provider: s.namespace, Err: fmt.Errorf("decoding auth.test: %w", err)}
	}
	if !auth.OK {
		return 0, s.apiError(auth.Error)
	}

	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// callAPI performs an authenticated GET against a Slack Web API endpoint and
// maps HTTP-level failures into the provider error taxonomy.
func (s *Slack) callAPI(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UnavailableError{Provider: s.namespace, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Provider: s.namespace, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Provider: s.namespace, Reason: resp.Status}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{Provider: s.namespace, RetryAfter: retryAfter(resp)}
	case resp.StatusCode != http.StatusOK:
		return nil, &UnavailableError{Provider: s.namespace, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	return readBody(resp)
}

// apiError maps Slack's ok=false error codes into the taxonomy.
func (s *Slack) apiError(code string) error {
	switch code {
	case "invalid_auth", "not_authed", "token_revoked", "account_inactive", "missing_scope":
		return &AuthError{Provider: s.namespace, Reason: code}
	case "ratelimited", "rate_limited":
		return &RateLimitError{Provider: s.namespace}
	default:
		return &UnavailableError{Provider: s.namespace, Err: fmt.Errorf("slack api error: %s", code)}
	}
}

// resolveAliases maps every emoji name to a concrete asset URL. Alias chains
// are followed up to slackMaxAliasDepth; aliases whose target never resolves
// to a URL (missing, built-in, or cyclic) are dropped.
func resolveAliases(raw map[string]string) map[string]string {
	const aliasPrefix = "alias:"

	resolved := make(map[string]string, len(raw))
	for name, value := range raw {
		if strings.HasPrefix(value, aliasPrefix) {
			continue
		}
		resolved[name] = value
	}

	for name, value := range raw {
		if !strings.HasPrefix(value, aliasPrefix) {
			continue
		}
		target := strings.TrimPrefix(value, aliasPrefix)
		for depth := 0; depth < slackMaxAliasDepth; depth++ {
			next, ok := raw[target]
			if !ok || !strings.HasPrefix(next, aliasPrefix) {
				break
			}
			target = strings.TrimPrefix(next, aliasPrefix)
		}
		if url, ok := resolved[target]; ok {
			resolved[name] = url
		}
	}

	return resolved
}
