package ground

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bioepic-data/trowel/internal/ontology"
)

// --- mock searcher ---

type mockSearcher struct {
	candidates map[string][]ontology.Candidate
	errs       map[string]error
	gotLimits  []int
}

func (m *mockSearcher) Search(_ context.Context, query string, limit int) ([]ontology.Candidate, error) {
	m.gotLimits = append(m.gotLimits, limit)
	if err, ok := m.errs[query]; ok {
		return nil, err
	}
	return m.candidates[query], nil
}

func defaultOpts() Options {
	return Options{Threshold: 0.7, LimitPerTerm: 3}
}

// --- Score ---

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name  string
		term  string
		label string
		want  float64
	}{
		{"identical", "soil moisture", "soil moisture", 1.0},
		{"case insensitive", "Soil Moisture", "soil moisture", 1.0},
		{"whitespace trimmed", "  soil moisture  ", "soil moisture", 1.0},
		{"term inside label", "soil moisture", "soil moisture content", 0.9},
		{"label inside term", "total soil moisture", "soil moisture", 0.9},
		{"unrelated", "soil moisture", "air temperature", 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.term, tt.label); got != tt.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.term, tt.label, got, tt.want)
			}
		})
	}
}

func TestScoreOnlyEmitsThreeValues(t *testing.T) {
	labels := []string{"soil moisture", "soil", "water content", "SOIL MOISTURE ", "x"}
	valid := map[float64]bool{1.0: true, 0.9: true, 0.7: true}
	for _, label := range labels {
		got := Score("soil moisture", label)
		if !valid[got] {
			t.Errorf("Score(soil moisture, %q) = %v, not a tier value", label, got)
		}
	}
}

// --- Terms ---

func TestTermsScenario(t *testing.T) {
	s := &mockSearcher{candidates: map[string][]ontology.Candidate{
		"soil moisture": {
			{TermID: "BERVO:01", Ontology: "bervo", Label: "soil moisture"},
			{TermID: "BERVO:02", Ontology: "bervo", Label: "soil water content"},
		},
	}}

	var buf bytes.Buffer
	result, err := Terms(context.Background(), s, []string{"soil moisture"}, defaultOpts(), &buf)
	if err != nil {
		t.Fatalf("Terms() error = %v", err)
	}

	g := result["soil moisture"]
	if g.Failed() {
		t.Fatalf("unexpected failure: %s", g.Err)
	}
	if len(g.Matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(g.Matches))
	}
	if g.Matches[0].TermID != "BERVO:01" || g.Matches[0].Confidence != 1.0 {
		t.Errorf("first match = %+v, want BERVO:01 at 1.0", g.Matches[0])
	}
	// "soil water content" shares no substring with "soil moisture" as a
	// whole string, so it lands in the found tier.
	if g.Matches[1].TermID != "BERVO:02" || g.Matches[1].Confidence != 0.7 {
		t.Errorf("second match = %+v, want BERVO:02 at 0.7", g.Matches[1])
	}
}

func TestTermsThresholdBoundaries(t *testing.T) {
	candidates := []ontology.Candidate{
		{TermID: "X:1", Ontology: "x", Label: "ph"},         // exact, 1.0
		{TermID: "X:2", Ontology: "x", Label: "soil ph"},    // substring, 0.9
		{TermID: "X:3", Ontology: "x", Label: "alkalinity"}, // found, 0.7
	}
	s := &mockSearcher{candidates: map[string][]ontology.Candidate{"ph": candidates}}

	tests := []struct {
		threshold float64
		want      int
	}{
		{0.7, 3},
		{0.8, 2},
		{0.9, 2},
		{1.0, 1},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		opts := Options{Threshold: tt.threshold, LimitPerTerm: 10}
		result, err := Terms(context.Background(), s, []string{"ph"}, opts, &buf)
		if err != nil {
			t.Fatalf("threshold %v: %v", tt.threshold, err)
		}
		if got := len(result["ph"].Matches); got != tt.want {
			t.Errorf("threshold %v: kept %d candidates, want %d", tt.threshold, got, tt.want)
		}
		// Candidates at exactly the threshold are retained.
		for _, m := range result["ph"].Matches {
			if m.Confidence < tt.threshold {
				t.Errorf("threshold %v: match %+v below threshold", tt.threshold, m)
			}
		}
	}
}

func TestTermsLimitAndOverfetch(t *testing.T) {
	var candidates []ontology.Candidate
	for i := 0; i < 30; i++ {
		candidates = append(candidates, ontology.Candidate{
			TermID: "X:" + string(rune('a'+i)), Ontology: "x", Label: "water",
		})
	}
	s := &mockSearcher{candidates: map[string][]ontology.Candidate{"water": candidates}}

	var buf bytes.Buffer
	result, err := Terms(context.Background(), s, []string{"water"}, defaultOpts(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(result["water"].Matches); got != 3 {
		t.Errorf("len(matches) = %d, want limit 3", got)
	}
	// limit 3 over-fetches up to the floor.
	if s.gotLimits[0] != 20 {
		t.Errorf("search limit = %d, want floor 20", s.gotLimits[0])
	}
}

func TestTermsStableOrderWithinTier(t *testing.T) {
	s := &mockSearcher{candidates: map[string][]ontology.Candidate{
		"water": {
			{TermID: "X:1", Ontology: "x", Label: "water table"},
			{TermID: "X:2", Ontology: "x", Label: "water level"},
			{TermID: "X:3", Ontology: "x", Label: "water"},
		},
	}}

	var buf bytes.Buffer
	result, err := Terms(context.Background(), s, []string{"water"}, defaultOpts(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	matches := result["water"].Matches
	if len(matches) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(matches))
	}
	// The exact match sorts first; the two substring matches keep the
	// backend's relative order.
	wantOrder := []string{"X:3", "X:1", "X:2"}
	for i, want := range wantOrder {
		if matches[i].TermID != want {
			t.Errorf("matches[%d] = %s, want %s", i, matches[i].TermID, want)
		}
	}
}

func TestTermsPartialFailureIsolation(t *testing.T) {
	s := &mockSearcher{
		candidates: map[string][]ontology.Candidate{
			"good": {{TermID: "X:1", Ontology: "x", Label: "good"}},
		},
		errs: map[string]error{
			"bad": &ontology.BackendError{Backend: "bioportal", Err: errors.New("connection refused")},
		},
	}

	var buf bytes.Buffer
	result, err := Terms(context.Background(), s, []string{"good", "bad", "good"}, defaultOpts(), &buf)
	if err != nil {
		t.Fatalf("batch should not abort on a per-term failure: %v", err)
	}

	if result["good"].Failed() {
		t.Errorf("good term marked failed: %s", result["good"].Err)
	}
	if len(result["good"].Matches) != 1 {
		t.Errorf("good term matches = %d, want 1", len(result["good"].Matches))
	}

	bad := result["bad"]
	if !bad.Failed() {
		t.Fatal("failed term not marked")
	}
	if len(bad.Matches) != 0 {
		t.Errorf("failed term has matches: %+v", bad.Matches)
	}
	if !bytes.Contains(buf.Bytes(), []byte("could not ground")) {
		t.Errorf("missing warning in output: %q", buf.String())
	}
	// The summary counts the three inputs even though the duplicate
	// "good" terms share one result key.
	if !bytes.Contains(buf.Bytes(), []byte("2 of 3 terms grounded, 1 failed")) {
		t.Errorf("summary miscounts duplicates: %q", buf.String())
	}
}

func TestTermsEmptyMatchListIsNotFailure(t *testing.T) {
	s := &mockSearcher{candidates: map[string][]ontology.Candidate{
		"obscure": {{TermID: "X:1", Ontology: "x", Label: "unrelated"}},
	}}

	var buf bytes.Buffer
	opts := Options{Threshold: 0.9, LimitPerTerm: 3}
	result, err := Terms(context.Background(), s, []string{"obscure"}, opts, &buf)
	if err != nil {
		t.Fatal(err)
	}

	g, ok := result["obscure"]
	if !ok {
		t.Fatal("searched term missing from result map")
	}
	if g.Failed() {
		t.Errorf("empty result marked as failure: %s", g.Err)
	}
	if len(g.Matches) != 0 {
		t.Errorf("matches = %+v, want none above 0.9", g.Matches)
	}
}

func TestTermsValidation(t *testing.T) {
	s := &mockSearcher{}
	var buf bytes.Buffer

	cases := []struct {
		name  string
		terms []string
		opts  Options
	}{
		{"threshold too high", []string{"x"}, Options{Threshold: 1.5, LimitPerTerm: 3}},
		{"threshold negative", []string{"x"}, Options{Threshold: -0.1, LimitPerTerm: 3}},
		{"zero limit", []string{"x"}, Options{Threshold: 0.7, LimitPerTerm: 0}},
		{"no terms", nil, defaultOpts()},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Terms(context.Background(), s, tt.terms, tt.opts, &buf); err == nil {
				t.Error("expected configuration error")
			}
			if len(s.gotLimits) != 0 {
				t.Error("configuration error must fail before any search")
			}
		})
	}
}
