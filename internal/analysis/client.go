// Package analysis wraps calls to the Anthropic API: prompt construction,
// input truncation, structured-output validation, and retry with exponential
// backoff on transient failure classes.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
)

// oauthBeta is the beta flag required for OAuth bearer authentication.
const oauthBeta = "oauth-2025-04-20"

// Options tunes a Client. Zero values fall back to the defaults below.
type Options struct {
	// MaxAttempts bounds total tries per call, first attempt included.
	MaxAttempts int

	// InitialBackoff is the first retry delay. Tests shrink this.
	InitialBackoff time.Duration
}

const (
	defaultMaxAttempts    = 4
	defaultInitialBackoff = time.Second
)

// Client drives the external analysis service for one run.
type Client struct {
	api         *anthropic.Client
	model       anthropic.Model
	maxAttempts int
	initialWait time.Duration

	// create performs one raw completion; replaceable in tests.
	create func(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// NewClient builds a client authenticated with the given bearer token.
func NewClient(token, model string, opts Options) *Client {
	api := anthropic.NewClient(
		option.WithAuthToken(token),
		option.WithHeaderAdd("anthropic-beta", oauthBeta),
		// The SDK retries internally as well; keep that off so retry
		// policy lives in one place.
		option.WithMaxRetries(0),
	)
	c := &Client{
		api:         &api,
		model:       anthropic.Model(model),
		maxAttempts: opts.MaxAttempts,
		initialWait: opts.InitialBackoff,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.initialWait <= 0 {
		c.initialWait = defaultInitialBackoff
	}
	c.create = c.createMessage
	return c
}

// Model returns the model identifier the client calls with.
func (c *Client) Model() string { return string(c.model) }

func (c *Client) createMessage(ctx context.Context, prompt string, maxTokens int) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &Error{Kind: KindMalformed, Err: fmt.Errorf("no text content in API response")}
}

// complete runs one completion with retry. Transient failures back off
// exponentially up to MaxAttempts tries; exhaustion surfaces as
// KindExhausted rather than retrying forever.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialWait

	var out string
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		text, err := c.create(ctx, prompt, maxTokens)
		if err != nil {
			kind := KindOf(err)
			if kind == KindOther {
				kind = classify(err)
			}
			wrapped := &Error{Kind: kind, Err: err}
			if !transient(kind) {
				return backoff.Permanent(wrapped)
			}
			return wrapped
		}
		out = text
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1)), ctx))

	if err != nil {
		if kind := KindOf(err); transient(kind) && attempts >= c.maxAttempts {
			return "", &Error{Kind: KindExhausted, Err: err}
		}
		return "", err
	}
	return out, nil
}

// CompleteJSON runs a completion and decodes the first JSON object in the
// reply into out. Any deviation from the expected shape is KindMalformed.
func (c *Client) CompleteJSON(ctx context.Context, prompt string, maxTokens int, out any) error {
	text, err := c.complete(ctx, prompt, maxTokens)
	if err != nil {
		return err
	}
	raw := extractJSONObject(text)
	if raw == "" {
		return &Error{Kind: KindMalformed, Err: fmt.Errorf("no JSON object in response")}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return &Error{Kind: KindMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// extractJSONObject returns the first complete JSON object embedded in text,
// tolerating markdown fencing and surrounding prose. Brace matching is done
// with a real decoder, not a regex, so nested objects parse correctly.
func extractJSONObject(text string) string {
	text = stripFences(text)
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	dec := json.NewDecoder(strings.NewReader(text[start:]))
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return ""
	}
	return text[start : start+int(dec.InputOffset())]
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if _, rest, ok := strings.Cut(text, "\n"); ok {
		text = rest
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
