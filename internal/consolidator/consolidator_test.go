package consolidator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dealscope/internal/config"
	"dealscope/internal/llm"
	"dealscope/internal/models"
	"dealscope/internal/prompts"
)

// scriptedCompleter returns canned responses in call order.
type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ llm.Request) (*llm.Response, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return &llm.Response{Content: s.responses[i]}, nil
	}
	return &llm.Response{Content: "[]"}, nil
}

func testLibrary(t *testing.T) *prompts.Library {
	t.Helper()
	lib, err := prompts.Load("")
	if err != nil {
		t.Fatalf("prompts.Load() error = %v", err)
	}
	return lib
}

func wideProfile() config.ModelProfile {
	return config.ModelProfile{ContextWindow: 100000, MaxChunkSize: 50000}
}

func extractions() map[string][]models.CompanyRecord {
	return map[string][]models.CompanyRecord{
		"deal/a.pdf": {{Name: "Acme", Variables: models.VariableMap{
			"revenue": {2022: {Value: 10, Currency: "EUR", Unit: "m"}},
		}}},
		"deal/b.pdf": {{Name: "Acme", Variables: models.VariableMap{
			"revenue": {2023: {Value: 12, Currency: "EUR", Unit: "m"}},
		}}},
	}
}

func TestConsolidateMergesAcrossFiles(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`[{"name":"Acme","type":"company","variables":{"revenue":{"2022":{"value":10,"currency":"EUR","unit":"m"},"2023":{"value":12,"currency":"EUR","unit":"m"}}}}]`,
	}}
	cons := New(completer, testLibrary(t))

	merged, chunkErrs, err := cons.Consolidate(context.Background(), extractions(), "mock:m", wideProfile(), "")
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if len(chunkErrs) != 0 {
		t.Errorf("unexpected chunk errors: %#v", chunkErrs)
	}
	if len(merged) != 1 || merged[0].Name != "Acme" {
		t.Fatalf("merged = %#v", merged)
	}
	rev := merged[0].Variables["revenue"]
	if rev[2022].Value != 10 || rev[2023].Value != 12 {
		t.Errorf("revenue = %#v", rev)
	}
}

func TestConsolidateEmptyInput(t *testing.T) {
	completer := &scriptedCompleter{}
	cons := New(completer, testLibrary(t))

	merged, chunkErrs, err := cons.Consolidate(context.Background(), nil, "mock:m", wideProfile(), "")
	if err != nil || merged != nil || chunkErrs != nil {
		t.Fatalf("Consolidate(empty) = %v, %v, %v; want all nil", merged, chunkErrs, err)
	}
	if completer.calls != 0 {
		t.Errorf("empty input still made %d LLM calls", completer.calls)
	}
}

func TestConsolidateAllChunksFailed(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{errors.New("backend down")}}
	cons := New(completer, testLibrary(t))

	_, chunkErrs, err := cons.Consolidate(context.Background(), extractions(), "mock:m", wideProfile(), "")
	if err == nil || !strings.Contains(err.Error(), "consolidation chunks failed") {
		t.Fatalf("expected aggregate failure, got %v", err)
	}
	if len(chunkErrs) != 1 {
		t.Errorf("chunk errors = %#v", chunkErrs)
	}
}

func TestConsolidateDropsUnparseableChunk(t *testing.T) {
	// Tiny budget forces multiple chunks; the first response is prose and
	// must be dropped without failing the run.
	completer := &scriptedCompleter{responses: []string{
		"sorry, I cannot help with that",
		`[{"name":"Acme","type":"company"}]`,
	}}
	cons := New(completer, testLibrary(t))
	profile := config.ModelProfile{ContextWindow: 200, MaxChunkSize: 30, TokenSafetyMargin: 10, ReservedCompletionTokens: 10}

	merged, chunkErrs, err := cons.Consolidate(context.Background(), extractions(), "mock:m", profile, "")
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if len(chunkErrs) == 0 {
		t.Error("expected at least one dropped chunk")
	}
	if len(merged) == 0 {
		t.Error("surviving chunks produced no companies")
	}
}

func TestConsolidateSortsOutput(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`[{"name":"Zenith Fund","type":"fund"},{"name":"Acme","type":"company"}]`,
	}}
	cons := New(completer, testLibrary(t))

	merged, _, err := cons.Consolidate(context.Background(), extractions(), "mock:m", wideProfile(), "")
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if len(merged) != 2 || merged[0].Name != "Acme" || merged[1].Name != "Zenith Fund" {
		t.Errorf("merged order = %#v", merged)
	}
}
