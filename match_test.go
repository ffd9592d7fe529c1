package finboard

import "testing"

func TestMatchQuote(t *testing.T) {
	tests := []struct {
		name     string
		quotes   []Quote
		holding  string
		want     Quote
		strategy MatchStrategy
		ok       bool
	}{
		{
			name:     "exact match",
			quotes:   []Quote{{Symbol: "AAPL", Price: 225.3}},
			holding:  "AAPL",
			want:     Quote{Symbol: "AAPL", Price: 225.3},
			strategy: MatchExact,
			ok:       true,
		},
		{
			name:     "exact match is case-insensitive",
			quotes:   []Quote{{Symbol: "2330.tw", Price: 990}},
			holding:  "2330.TW",
			want:     Quote{Symbol: "2330.tw", Price: 990},
			strategy: MatchExact,
			ok:       true,
		},
		{
			name:     "bare ticker matches suffixed holding",
			quotes:   []Quote{{Symbol: "2330", Price: 980.5}},
			holding:  "2330.TW",
			want:     Quote{Symbol: "2330", Price: 980.5},
			strategy: MatchSubstring,
			ok:       true,
		},
		{
			name:     "suffixed quote matches bare holding",
			quotes:   []Quote{{Symbol: "AAPL.US", Price: 225.3}},
			holding:  "AAPL",
			want:     Quote{Symbol: "AAPL.US", Price: 225.3},
			strategy: MatchSubstring,
			ok:       true,
		},
		{
			name:    "no match leaves holding untouched",
			quotes:  []Quote{{Symbol: "AAPL", Price: 1}},
			holding: "NVDA",
			ok:      false,
		},
		{
			name: "exact beats earlier substring",
			quotes: []Quote{
				{Symbol: "AAPLX", Price: 1},
				{Symbol: "AAPL", Price: 2},
			},
			holding:  "AAPL",
			want:     Quote{Symbol: "AAPL", Price: 2},
			strategy: MatchExact,
			ok:       true,
		},
		{
			name: "first substring wins when none is exact",
			quotes: []Quote{
				{Symbol: "AAPLX", Price: 1},
				{Symbol: "AAPLY", Price: 2},
			},
			holding:  "AAPL",
			want:     Quote{Symbol: "AAPLX", Price: 1},
			strategy: MatchSubstring,
			ok:       true,
		},
		{
			name:    "empty quote symbol never matches",
			quotes:  []Quote{{Symbol: "", Price: 1}},
			holding: "AAPL",
			ok:      false,
		},
		{
			name:    "no quotes",
			quotes:  nil,
			holding: "AAPL",
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, ok := MatchQuote(tt.quotes, tt.holding)
			if ok != tt.ok {
				t.Fatalf("MatchQuote() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("MatchQuote() = %v, want %v", got, tt.want)
			}
			if strategy != tt.strategy {
				t.Errorf("MatchQuote() strategy = %v, want %v", strategy, tt.strategy)
			}
		})
	}
}
