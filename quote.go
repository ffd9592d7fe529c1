package finboard

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Quote is a transient (symbol, price) pair extracted from a price-lookup
// response. Quotes are never persisted.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Source is a citation accompanying a lookup response, shown for transparency.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ParseQuotes extracts a list of quotes from the raw text of a price-lookup
// response. The service enforces no schema, so several formatting conventions
// are tried in order, first success wins:
//
//  1. a fenced block labeled "json", parsed as a JSON array of quotes;
//  2. if no labeled block exists, any fenced block;
//  3. the substring between the first '[' and the last ']';
//  4. otherwise no quotes.
//
// Array elements are validated independently: an element qualifies only with
// a non-empty string symbol and a finite numeric price, others are dropped
// silently. Duplicate symbols are preserved in output order; de-duplication
// is the matcher's concern. ParseQuotes never fails, it degrades to an empty
// or partial list.
func ParseQuotes(raw string) []Quote {
	source := []byte(raw)

	candidates := fencedBlocks(source, "json")
	if len(candidates) == 0 {
		candidates = fencedBlocks(source, "")
	}
	for _, block := range candidates {
		if quotes, ok := parseQuoteArray(block); ok {
			return quotes
		}
	}

	// No fenced block parsed, fall back to the outermost bracket pair.
	if i := strings.Index(raw, "["); i >= 0 {
		if j := strings.LastIndex(raw, "]"); j > i {
			if quotes, ok := parseQuoteArray(raw[i : j+1]); ok {
				return quotes
			}
		}
	}
	return nil
}

// fencedBlocks walks the markdown AST of source and returns the content of
// every fenced code block whose language label matches lang. An empty lang
// matches every fenced block, labeled or not.
func fencedBlocks(source []byte, lang string) []string {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var label string
		if fcb.Info != nil {
			label = strings.TrimSpace(string(fcb.Info.Segment.Value(source)))
		}
		if lang != "" && !strings.EqualFold(label, lang) {
			return ast.WalkContinue, nil
		}

		var content strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			content.Write(line.Value(source))
		}
		blocks = append(blocks, content.String())
		return ast.WalkContinue, nil
	})
	return blocks
}

// parseQuoteArray attempts to parse s as a JSON array of quote objects.
// ok reports whether the array itself parsed; invalid elements do not
// invalidate the rest of the array.
func parseQuoteArray(s string) (quotes []Quote, ok bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &elements); err != nil {
		return nil, false
	}

	quotes = make([]Quote, 0, len(elements))
	for _, e := range elements {
		var entry struct {
			Symbol *string  `json:"symbol"`
			Price  *float64 `json:"price"`
		}
		if err := json.Unmarshal(e, &entry); err != nil {
			continue
		}
		if entry.Symbol == nil || *entry.Symbol == "" || entry.Price == nil {
			continue
		}
		if math.IsNaN(*entry.Price) || math.IsInf(*entry.Price, 0) {
			continue
		}
		quotes = append(quotes, Quote{Symbol: *entry.Symbol, Price: *entry.Price})
	}
	return quotes, true
}
