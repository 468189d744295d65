package search

import (
	"testing"

	"dealscope/internal/models"
)

func directory() []models.ConsolidatedCompany {
	return []models.ConsolidatedCompany{
		{Name: "Acme Industrial", Type: models.EntityCompany, Description: "machinery manufacturer in Germany"},
		{Name: "Northwind Growth Fund", Type: models.EntityFund, Description: "mid-market buyout fund"},
		{Name: "Beta Logistics", Type: models.EntityCompany, Description: "freight and warehousing"},
	}
}

func TestIndexAndSearch(t *testing.T) {
	svc := New("")
	defer svc.Close()

	if err := svc.IndexSession(1, directory()); err != nil {
		t.Fatalf("IndexSession() error = %v", err)
	}

	hits, err := svc.Search(1, "buyout fund", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for indexed content")
	}
	if hits[0].Name != "Northwind Growth Fund" {
		t.Errorf("top hit = %q", hits[0].Name)
	}
	if hits[0].Type != "fund" {
		t.Errorf("top hit type = %q", hits[0].Type)
	}
}

func TestSearchUnknownSession(t *testing.T) {
	svc := New("")
	defer svc.Close()

	if _, err := svc.Search(42, "anything", 10); err == nil {
		t.Fatal("expected error for session without an index")
	}
}

func TestIndexSessionReplacesIndex(t *testing.T) {
	svc := New("")
	defer svc.Close()

	if err := svc.IndexSession(1, directory()); err != nil {
		t.Fatalf("IndexSession() error = %v", err)
	}
	if err := svc.IndexSession(1, []models.ConsolidatedCompany{
		{Name: "Solo Corp", Type: models.EntityCompany, Description: "the only one left"},
	}); err != nil {
		t.Fatalf("IndexSession(replace) error = %v", err)
	}

	hits, err := svc.Search(1, "machinery", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("stale documents survived the rebuild: %#v", hits)
	}
}

func TestDropSession(t *testing.T) {
	svc := New("")
	defer svc.Close()

	if err := svc.IndexSession(1, directory()); err != nil {
		t.Fatalf("IndexSession() error = %v", err)
	}
	svc.DropSession(1)

	if _, err := svc.Search(1, "acme", 10); err == nil {
		t.Fatal("dropped session still searchable")
	}
}

func TestOnDiskIndex(t *testing.T) {
	svc := New(t.TempDir())
	defer svc.Close()

	if err := svc.IndexSession(7, directory()); err != nil {
		t.Fatalf("IndexSession(on disk) error = %v", err)
	}
	hits, err := svc.Search(7, "freight", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "Beta Logistics" {
		t.Errorf("hits = %#v", hits)
	}
}
