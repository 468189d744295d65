package models

import (
	"errors"
	"strings"
)

// EntityType classifies a consolidated entry as an operating company or a fund.
type EntityType string

const (
	EntityCompany EntityType = "company"
	EntityFund    EntityType = "fund"
)

// ValueCell is a single financial data point for one variable in one year.
type ValueCell struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// VariableMap maps snake_case variable names to year-keyed value cells.
type VariableMap map[string]map[int]ValueCell

// CompanyRecord is one entity extracted from one chunk of one document.
// Name is the merge key used downstream by the consolidator.
type CompanyRecord struct {
	Name      string      `json:"name"`
	Sector    string      `json:"sector,omitempty"`
	Years     []int       `json:"years,omitempty"`
	Variables VariableMap `json:"variables,omitempty"`
}

// Validate checks the shape the extraction prompt asks the model for. A record
// failing validation is treated the same as unparseable JSON.
func (r *CompanyRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("company record missing name")
	}
	for variable, byYear := range r.Variables {
		if strings.TrimSpace(variable) == "" {
			return errors.New("company record has empty variable name")
		}
		for year := range byYear {
			if year < 1800 || year > 2200 {
				return errors.New("company record has implausible year")
			}
		}
	}
	return nil
}

// ConsolidatedCompany is the canonical, deduplicated output of a pipeline run:
// one entry per entity name, with year-keyed variables unioned across every
// source document.
type ConsolidatedCompany struct {
	Name        string      `json:"name"`
	Type        EntityType  `json:"type,omitempty"`
	Description string      `json:"description,omitempty"`
	Variables   VariableMap `json:"variables,omitempty"`
	Dates       []string    `json:"dates,omitempty"`
}

// Validate checks the consolidation response shape.
func (c *ConsolidatedCompany) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("consolidated company missing name")
	}
	switch c.Type {
	case "", EntityCompany, EntityFund:
	default:
		return errors.New("consolidated company has unknown type")
	}
	for variable, byYear := range c.Variables {
		if strings.TrimSpace(variable) == "" {
			return errors.New("consolidated company has empty variable name")
		}
		for year := range byYear {
			if year < 1800 || year > 2200 {
				return errors.New("consolidated company has implausible year")
			}
		}
	}
	return nil
}

// Clone returns a deep copy. The consolidator merges into copies so callers
// never see shared variable maps.
func (c ConsolidatedCompany) Clone() ConsolidatedCompany {
	out := c
	out.Variables = c.Variables.Clone()
	out.Dates = append([]string(nil), c.Dates...)
	return out
}

// Clone deep-copies a variable map.
func (v VariableMap) Clone() VariableMap {
	if v == nil {
		return nil
	}
	out := make(VariableMap, len(v))
	for variable, byYear := range v {
		cells := make(map[int]ValueCell, len(byYear))
		for year, cell := range byYear {
			cells[year] = cell
		}
		out[variable] = cells
	}
	return out
}
