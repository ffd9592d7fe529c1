// Package lookup reaches the external AI services: the price lookup used by
// the sync coordinator and the advice service surfaced verbatim on the
// dashboard. Both ride the Gemini API with Google Search grounding, which is
// where the citation metadata comes from.
package lookup

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ewallis/finboard"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client implements finboard.PriceLookup and finboard.Adviser.
//
// Responses are cached with a short TTL and calls are rate limited, so
// repeated dashboard refreshes do not hammer the external service.
type Client struct {
	genai *genai.Client
	model string
	log   zerolog.Logger
	cache *gocache.Cache
	limit *rate.Limiter
}

var (
	_ finboard.PriceLookup = (*Client)(nil)
	_ finboard.Adviser     = (*Client)(nil)
)

// New creates a client for the given model name, reading credentials from
// the environment the way the genai SDK does by default.
func New(ctx context.Context, model string, log zerolog.Logger) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not initialize genai client: %w", err)
	}
	return &Client{
		genai: client,
		model: model,
		log:   log,
		cache: gocache.New(15*time.Minute, 30*time.Minute),
		limit: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}, nil
}

// LookupPrices asks the service for current prices of the given symbols.
// The raw answer text and the grounding citations are returned as-is; the
// coordinator owns parsing and citation filtering.
func (c *Client) LookupPrices(ctx context.Context, symbols []string) (*finboard.LookupResponse, error) {
	key := "prices:" + strings.Join(symbols, ",")
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*finboard.LookupResponse), nil
	}
	if err := c.limit.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(pricePrompt(symbols)),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
		})
	if err != nil {
		return nil, fmt.Errorf("price lookup call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from price lookup")
	}

	candidate := resp.Candidates[0]
	out := &finboard.LookupResponse{
		Text:      partsText(candidate.Content.Parts),
		Citations: citations(candidate),
	}
	c.log.Debug().
		Int("symbols", len(symbols)).
		Int("citations", len(out.Citations)).
		Msg("price lookup answered")

	c.cache.Set(key, out, gocache.DefaultExpiration)
	return out, nil
}

// Advise sends a short financial summary and returns the service's answer
// verbatim, without parsing.
func (c *Client) Advise(ctx context.Context, summary string) (string, error) {
	key := "advice:" + summary
	if cached, ok := c.cache.Get(key); ok {
		return cached.(string), nil
	}
	if err := c.limit.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(advicePrompt(summary)), nil)
	if err != nil {
		return "", fmt.Errorf("advice call failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from advice service")
	}

	text := partsText(resp.Candidates[0].Content.Parts)
	c.cache.Set(key, text, gocache.DefaultExpiration)
	return text, nil
}

func pricePrompt(symbols []string) string {
	return fmt.Sprintf(`Find the current market price for each of these instruments: %s.
Answer with a fenced json block containing a JSON array of objects with
fields "symbol" and "price" (a number in the instrument's trading currency).`,
		strings.Join(symbols, ", "))
}

func advicePrompt(summary string) string {
	return fmt.Sprintf(`You are a prudent personal-finance assistant. Here is a
summary of the user's finances:

%s

Give short, practical advice in markdown.`, summary)
}

func partsText(parts []*genai.Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Text != "" {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// citations extracts the grounding citations of a candidate, incomplete ones
// included; callers decide what is worth displaying.
func citations(c *genai.Candidate) []finboard.Source {
	if c.GroundingMetadata == nil {
		return nil
	}
	var sources []finboard.Source
	for _, chunk := range c.GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		sources = append(sources, finboard.Source{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}
	return sources
}
