package cost_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/petasbytes/frontogether/internal/cost"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func TestTable_Lookup(t *testing.T) {
	tbl := cost.NewTable(map[string]cost.Rate{
		"gpt-4o":      {InputPerMillion: 2.5, OutputPerMillion: 10},
		"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.6},
	})
	cases := []struct {
		model string
		want  float64
		ok    bool
	}{
		{"gpt-4o", 2.5, true},
		{"GPT-4o", 2.5, true},
		{"openai/gpt-4o", 2.5, true},
		{"gpt-4o-2024-08-06", 2.5, true},
		{"gpt-4o-mini-2024-07-18", 0.15, true},
		{"llama3", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.model, func(t *testing.T) {
			r, ok := tbl.Lookup(tc.model)
			if ok != tc.ok || r.InputPerMillion != tc.want {
				t.Fatalf("Lookup(%q) = %+v, %v", tc.model, r, ok)
			}
		})
	}
}

func TestTable_Cost(t *testing.T) {
	tbl := cost.NewTable(map[string]cost.Rate{"m": {InputPerMillion: 2, OutputPerMillion: 8}})
	got := tbl.Cost("m", cost.Usage{InputTokens: 1000, OutputTokens: 500})
	if !approx(got, 0.002+0.004) {
		t.Fatalf("Cost = %v", got)
	}
	if tbl.Cost("unknown", cost.Usage{InputTokens: 10}) != 0 {
		t.Fatal("unknown model should cost 0")
	}
}

func TestDefaultTable_KnowsDefaultModel(t *testing.T) {
	if _, ok := cost.DefaultTable().Lookup("gpt-4o"); !ok {
		t.Fatal("default table missing gpt-4o")
	}
}

func TestLoadTable_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	body := "gpt-4o:\n  input_per_million: 1\n  output_per_million: 1\nlocal-model:\n  input_per_million: 0\n  output_per_million: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := cost.LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if r, _ := tbl.Lookup("gpt-4o"); r.InputPerMillion != 1 {
		t.Fatalf("override not applied: %+v", r)
	}
	if _, ok := tbl.Lookup("local-model"); !ok {
		t.Fatal("new model not added")
	}
	if _, ok := tbl.Lookup("gpt-4o-mini"); !ok {
		t.Fatal("defaults dropped")
	}
}

func TestLoadTable_RejectsNegativePrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	if err := os.WriteFile(path, []byte("m:\n  input_per_million: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cost.LoadTable(path); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestLedger_SumsCharges(t *testing.T) {
	tbl := cost.NewTable(map[string]cost.Rate{"m": {InputPerMillion: 1e6, OutputPerMillion: 2e6}})
	var l cost.Ledger
	l.Record(tbl, "m", cost.Usage{InputTokens: 1, OutputTokens: 1})
	l.Record(tbl, "m", cost.Usage{InputTokens: 2})
	if !approx(l.Total(), 3+2) {
		t.Fatalf("Total = %v", l.Total())
	}
	if u := l.Usage(); u.InputTokens != 3 || u.OutputTokens != 1 {
		t.Fatalf("Usage = %+v", u)
	}
	if len(l.Charges()) != 2 {
		t.Fatalf("Charges len = %d", len(l.Charges()))
	}
}
