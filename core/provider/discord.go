package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

const (
	discordAPIBase = "https://discord.com/api/v10"
	discordCDNBase = "https://cdn.discordapp.com/emojis"
)

// Discord fetches custom emojis from a Discord guild. Listing returns asset
// IDs rather than URLs; the CDN fetch URL is constructed from the ID and the
// animated flag (animated emojis are GIFs, the rest PNGs).
type Discord struct {
	namespace string
	token     string
	guildID   string
	client    *http.Client
	maxBytes  int64

	// overridable in tests
	apiBase string
	cdnBase string
}

func newDiscord(namespace, token, guildID string, client *http.Client, maxBytes int64) *Discord {
	return &Discord{
		namespace: namespace,
		token:     token,
		guildID:   guildID,
		client:    client,
		maxBytes:  maxBytes,
		apiBase:   discordAPIBase,
		cdnBase:   discordCDNBase,
	}
}

// Identify returns the provider descriptor.
func (d *Discord) Identify() Descriptor {
	return Descriptor{Kind: KindDiscord, Namespace: d.namespace}
}

// discordEmoji is one element of the guild emoji listing.
type discordEmoji struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Animated bool   `json:"animated"`
}

// List enumerates the guild's custom emojis in name order.
func (d *Discord) List(ctx context.Context) ([]Entry, error) {
	raw, err := d.listEmojis(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.Name == "" || e.ID == "" {
			continue
		}
		ext := "png"
		if e.Animated {
			ext = "gif"
		}
		entries = append(entries, Entry{
			Namespace: d.namespace,
			Name:      e.Name,
			URL:       fmt.Sprintf("%s/%s.%s", d.cdnBase, e.ID, ext),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Fetch retrieves the asset bytes for one listed entry from the CDN.
func (d *Discord) Fetch(ctx context.Context, entry Entry) (*Content, error) {
	return fetchAsset(ctx, d.client, d.namespace, entry, d.maxBytes)
}

// Validate checks the token and guild access, returning the emoji count.
func (d *Discord) Validate(ctx context.Context) (int, error) {
	raw, err := d.listEmojis(ctx)
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

func (d *Discord) listEmojis(ctx context.Context) ([]discordEmoji, error) {
	url := fmt.Sprintf("%s/guilds/%s/emojis", d.apiBase, d.guildID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UnavailableError{Provider: d.namespace, Err: err}
	}
	req.Header.Set("Authorization", "Bot "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Provider: d.namespace, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized:
		return nil, &AuthError{Provider: d.namespace, Reason: "invalid bot token"}
	case http.StatusForbidden:
		return nil, &AuthError{
			Provider: d.namespace,
			Reason:   "bot lacks permission to read guild emojis",
		}
	case http.StatusNotFound:
		return nil, &UnavailableError{
			Provider: d.namespace,
			Err:      fmt.Errorf("guild %s not found (is the bot a member?)", d.guildID),
		}
	case http.StatusTooManyRequests:
		return nil, &RateLimitError{Provider: d.namespace, RetryAfter: retryAfter(resp)}
	default:
		return nil, &UnavailableError{Provider: d.namespace, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, &UnavailableError{Provider: d.namespace, Err: err}
	}

	var raw []discordEmoji
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &UnavailableError{Provider: d.namespace, Err: fmt.Errorf("decoding guild emojis: %w", err)}
	}
	return raw, nil
}
