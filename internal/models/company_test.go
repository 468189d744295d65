package models

import "testing"

func TestCompanyRecordValidate(t *testing.T) {
	valid := CompanyRecord{Name: "Acme", Variables: VariableMap{
		"revenue": {2023: {Value: 10, Currency: "EUR", Unit: "m"}},
	}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}

	tests := []struct {
		name   string
		record CompanyRecord
	}{
		{"missing name", CompanyRecord{Name: "  "}},
		{"empty variable name", CompanyRecord{Name: "Acme", Variables: VariableMap{"": {2023: {}}}}},
		{"implausible year", CompanyRecord{Name: "Acme", Variables: VariableMap{"revenue": {1023: {}}}}},
	}
	for _, tt := range tests {
		if err := tt.record.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestConsolidatedCompanyValidate(t *testing.T) {
	valid := ConsolidatedCompany{Name: "Acme", Type: EntityCompany}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid company rejected: %v", err)
	}
	untyped := ConsolidatedCompany{Name: "Acme"}
	if err := untyped.Validate(); err != nil {
		t.Errorf("empty type should be allowed: %v", err)
	}

	bad := ConsolidatedCompany{Name: "Acme", Type: "conglomerate"}
	if err := bad.Validate(); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestConsolidatedCompanyCloneIsDeep(t *testing.T) {
	original := ConsolidatedCompany{
		Name:      "Acme",
		Variables: VariableMap{"revenue": {2023: {Value: 10}}},
		Dates:     []string{"2023-12-31"},
	}

	clone := original.Clone()
	clone.Variables["revenue"][2023] = ValueCell{Value: 99}
	clone.Dates[0] = "changed"

	if original.Variables["revenue"][2023].Value != 10 {
		t.Error("clone shares variable cells with the original")
	}
	if original.Dates[0] != "2023-12-31" {
		t.Error("clone shares the dates slice with the original")
	}
}
