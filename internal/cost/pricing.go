// Package cost prices streaming calls and sums them across a turn.
package cost

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var defaultPrices []byte

// Usage is the token count reported for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add returns the element-wise sum of u and o.
func (u Usage) Add(o Usage) Usage {
	return Usage{InputTokens: u.InputTokens + o.InputTokens, OutputTokens: u.OutputTokens + o.OutputTokens}
}

// Rate is the price of a model in USD per million tokens.
type Rate struct {
	InputPerMillion  float64 `yaml:"input_per_million"`
	OutputPerMillion float64 `yaml:"output_per_million"`
}

// Table maps model names to rates. The zero Table prices everything at 0.
type Table struct {
	rates map[string]Rate
	// keys sorted longest first so dated variants hit their family.
	keys []string

	warnOnce *sync.Map
}

// providerPrefixes are stripped before lookup ("openai/gpt-4o" -> "gpt-4o").
var providerPrefixes = []string{"openai/", "anthropic/", "azure/"}

// DefaultTable returns the built-in price list.
func DefaultTable() Table {
	t, err := parseTable(defaultPrices)
	if err != nil {
		panic(fmt.Sprintf("cost: embedded prices.yaml: %v", err))
	}
	return t
}

// LoadTable reads a YAML price list from path and layers it over the
// built-in prices. An empty path returns DefaultTable.
func LoadTable(path string) (Table, error) {
	base := DefaultTable()
	if path == "" {
		return base, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read pricing file: %w", err)
	}
	over, err := parseTable(b)
	if err != nil {
		return Table{}, fmt.Errorf("parse pricing file %s: %w", path, err)
	}
	merged := make(map[string]Rate, len(base.rates)+len(over.rates))
	for k, v := range base.rates {
		merged[k] = v
	}
	for k, v := range over.rates {
		merged[k] = v
	}
	return NewTable(merged), nil
}

// NewTable builds a Table from explicit rates.
func NewTable(rates map[string]Rate) Table {
	t := Table{rates: make(map[string]Rate, len(rates)), warnOnce: &sync.Map{}}
	for k, v := range rates {
		k = strings.ToLower(k)
		t.rates[k] = v
		t.keys = append(t.keys, k)
	}
	sort.Slice(t.keys, func(i, j int) bool {
		if len(t.keys[i]) != len(t.keys[j]) {
			return len(t.keys[i]) > len(t.keys[j])
		}
		return t.keys[i] < t.keys[j]
	})
	return t
}

func parseTable(b []byte) (Table, error) {
	rates := map[string]Rate{}
	if err := yaml.Unmarshal(b, &rates); err != nil {
		return Table{}, err
	}
	for name, r := range rates {
		if r.InputPerMillion < 0 || r.OutputPerMillion < 0 {
			return Table{}, fmt.Errorf("model %q: negative price", name)
		}
	}
	return NewTable(rates), nil
}

// Lookup finds the rate for model: exact match first, then the longest known
// name that model starts with.
func (t Table) Lookup(model string) (Rate, bool) {
	name := strings.ToLower(model)
	for _, p := range providerPrefixes {
		name = strings.TrimPrefix(name, p)
	}
	if r, ok := t.rates[name]; ok {
		return r, true
	}
	for _, k := range t.keys {
		if strings.HasPrefix(name, k) {
			return t.rates[k], true
		}
	}
	return Rate{}, false
}

// Cost prices usage for model. Unknown models cost 0; a warning is logged the
// first time each one is seen.
func (t Table) Cost(model string, u Usage) float64 {
	r, ok := t.Lookup(model)
	if !ok {
		if t.warnOnce != nil {
			if _, seen := t.warnOnce.LoadOrStore(model, struct{}{}); !seen {
				slog.Warn("no pricing for model; cost reported as 0", "model", model)
			}
		}
		return 0
	}
	return float64(u.InputTokens)*r.InputPerMillion/1e6 + float64(u.OutputTokens)*r.OutputPerMillion/1e6
}
