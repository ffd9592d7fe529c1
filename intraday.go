package finboard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// IntradayProvider fetches current prices for symbols directly from an HTTP
// JSON quote endpoint, bypassing the AI lookup. The quotes it produces flow
// through the same matcher and store path as AI-sourced ones.
type IntradayProvider struct {
	// BaseURL is the quote endpoint; the symbol is appended, URL-escaped.
	BaseURL string
	// Path is the jsonpath of the price value in the response document.
	Path string
	// Client defaults to an HTTP client with a daily-expiring disk cache.
	Client *http.Client
}

// NewIntradayProvider creates a provider for the given endpoint and price
// jsonpath.
func NewIntradayProvider(baseURL, path string) *IntradayProvider {
	return &IntradayProvider{BaseURL: baseURL, Path: path, Client: daily()}
}

// Quotes fetches the current price of every symbol, one request each.
// Symbols that cannot be quoted are skipped, their errors joined into the
// returned error alongside the quotes that did succeed.
func (p *IntradayProvider) Quotes(symbols []string) ([]Quote, error) {
	var errs error
	quotes := make([]Quote, 0, len(symbols))
	for _, symbol := range symbols {
		price, err := p.quote(symbol)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("could not get intraday for %s: %w", symbol, err))
			continue
		}
		quotes = append(quotes, Quote{Symbol: symbol, Price: price})
	}
	return quotes, errs
}

func (p *IntradayProvider) quote(symbol string) (float64, error) {
	client := p.Client
	if client == nil {
		client = daily()
	}

	var jobj any
	if err := jwget(client, p.BaseURL+url.QueryEscape(symbol), &jobj); err != nil {
		return 0, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}

	jval, err := jsonpath.Get(p.Path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %q %w", symbol, p.Path, err)
	}
	// because jsonpath is never clear about whether it returns a list of one
	// answer, or a single answer: keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	val, ok := jval.(float64)
	if !ok {
		// sometimes quote APIs return the value as a localized string
		sval, ok := jval.(string)
		if !ok {
			return 0, fmt.Errorf("cannot read value for %q: neither a float nor a string", symbol)
		}
		sval = strings.ReplaceAll(sval, ",", ".")
		sval = strings.ReplaceAll(sval, " ", "")
		val, err = strconv.ParseFloat(sval, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot read value for %q: invalid string %q: %w", symbol, sval, err)
		}
	}
	if val == 0 {
		return 0, fmt.Errorf("empty quote for %s, no value to return", symbol)
	}
	return val, nil
}
