package consolidator

import (
	"reflect"
	"testing"

	"dealscope/internal/models"
)

func company(name string, variables models.VariableMap) models.ConsolidatedCompany {
	return models.ConsolidatedCompany{Name: name, Variables: variables}
}

func TestMergeDisjointNames(t *testing.T) {
	a := []models.ConsolidatedCompany{company("Acme", nil)}
	b := []models.ConsolidatedCompany{company("Beta Fund", nil)}

	got := Merge(a, b)
	if len(got) != 2 {
		t.Fatalf("Merge produced %d entries, want 2", len(got))
	}
	if got[0].Name != "Acme" || got[1].Name != "Beta Fund" {
		t.Errorf("Merge order = %q, %q", got[0].Name, got[1].Name)
	}

	// Argument order must not change the resulting set of names.
	reversed := Merge(b, a)
	names := map[string]bool{}
	for _, c := range reversed {
		names[c.Name] = true
	}
	if len(reversed) != 2 || !names["Acme"] || !names["Beta Fund"] {
		t.Errorf("Merge(b, a) = %#v", reversed)
	}
}

func TestMergeUnionsVariablesAcrossYears(t *testing.T) {
	a := []models.ConsolidatedCompany{company("Acme", models.VariableMap{
		"revenue": {2022: {Value: 10, Currency: "EUR", Unit: "m"}},
	})}
	b := []models.ConsolidatedCompany{company("Acme", models.VariableMap{
		"revenue": {2023: {Value: 12, Currency: "EUR", Unit: "m"}},
		"ebitda":  {2023: {Value: 3, Currency: "EUR", Unit: "m"}},
	})}

	got := Merge(a, b)
	if len(got) != 1 {
		t.Fatalf("Merge produced %d entries, want 1", len(got))
	}
	rev := got[0].Variables["revenue"]
	if len(rev) != 2 || rev[2022].Value != 10 || rev[2023].Value != 12 {
		t.Errorf("revenue years = %#v", rev)
	}
	if got[0].Variables["ebitda"][2023].Value != 3 {
		t.Errorf("ebitda = %#v", got[0].Variables["ebitda"])
	}
}

func TestMergeLastWriteWinsOnCollision(t *testing.T) {
	a := []models.ConsolidatedCompany{company("Acme", models.VariableMap{
		"revenue": {2022: {Value: 10}},
	})}
	b := []models.ConsolidatedCompany{company("Acme", models.VariableMap{
		"revenue": {2022: {Value: 20}},
	})}

	got := Merge(a, b)
	if v := got[0].Variables["revenue"][2022].Value; v != 20 {
		t.Errorf("collision value = %v, want the later chunk's 20", v)
	}
}

func TestMergeKeepsFirstDescriptionAndType(t *testing.T) {
	a := []models.ConsolidatedCompany{{Name: "Acme", Type: models.EntityCompany, Description: "industrial group"}}
	b := []models.ConsolidatedCompany{{Name: "Acme", Type: models.EntityFund, Description: "something else"}}

	got := Merge(a, b)
	if got[0].Description != "industrial group" || got[0].Type != models.EntityCompany {
		t.Errorf("got description %q type %q", got[0].Description, got[0].Type)
	}

	// An empty first description is filled by the next chunk.
	got = Merge([]models.ConsolidatedCompany{{Name: "Acme"}}, b)
	if got[0].Description != "something else" || got[0].Type != models.EntityFund {
		t.Errorf("empty fields not filled: %#v", got[0])
	}
}

func TestMergeUnionsDatesSorted(t *testing.T) {
	a := []models.ConsolidatedCompany{{Name: "Acme", Dates: []string{"2023-06-30", "2022-12-31"}}}
	b := []models.ConsolidatedCompany{{Name: "Acme", Dates: []string{"2023-06-30", "2024-03-31"}}}

	got := Merge(a, b)
	want := []string{"2022-12-31", "2023-06-30", "2024-03-31"}
	if !reflect.DeepEqual(got[0].Dates, want) {
		t.Errorf("Dates = %v, want %v", got[0].Dates, want)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := []models.ConsolidatedCompany{company("Acme", models.VariableMap{
		"revenue": {2022: {Value: 10}},
	})}
	b := []models.ConsolidatedCompany{company("Acme", models.VariableMap{
		"revenue": {2022: {Value: 20}},
	})}

	_ = Merge(a, b)
	if a[0].Variables["revenue"][2022].Value != 10 {
		t.Error("Merge mutated its first input")
	}
}

func TestMergeIdempotent(t *testing.T) {
	a := []models.ConsolidatedCompany{company("Acme", models.VariableMap{
		"revenue": {2022: {Value: 10}},
	})}

	once := Merge(nil, a)
	twice := Merge(once, a)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Merge not idempotent: %#v vs %#v", once, twice)
	}
}
