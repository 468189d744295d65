package extractor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractPlainTextKinds(t *testing.T) {
	for _, name := range []string{"a.txt", "b.md", "c.csv", "d.json", "e.log"} {
		text, ok, err := Extract(name, []byte("content"))
		if err != nil || !ok || text != "content" {
			t.Errorf("Extract(%q) = %q, %v, %v", name, text, ok, err)
		}
	}
}

func TestExtractSniffsUnknownTextExtension(t *testing.T) {
	text, ok, err := Extract("notes.dat", []byte("just some readable notes\n"))
	if err != nil || !ok {
		t.Fatalf("Extract(text-like .dat) = %v, %v", ok, err)
	}
	if !strings.Contains(text, "readable notes") {
		t.Errorf("text = %q", text)
	}
}

func TestExtractUnknownBinaryIsNotAnError(t *testing.T) {
	text, ok, err := Extract("blob.bin", []byte{0x00, 0xff, 0x13, 0x37})
	if err != nil {
		t.Fatalf("binary payload produced error: %v", err)
	}
	if ok || text != "" {
		t.Errorf("binary payload extracted: %q, %v", text, ok)
	}
}

func TestExtractLegacyXLSIsNonExtractable(t *testing.T) {
	// OLE compound-document magic, the legacy binary Excel container.
	ole := []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
	text, ok, err := Extract("ledger.xls", ole)
	if err != nil {
		t.Fatalf("legacy xls produced error: %v", err)
	}
	if ok || text != "" {
		t.Errorf("legacy xls extracted: %q, %v", text, ok)
	}
}

func TestExtractCorruptSupportedTypes(t *testing.T) {
	for _, name := range []string{"broken.pdf", "broken.xlsx", "broken.docx"} {
		_, ok, err := Extract(name, []byte("this is not the advertised format"))
		if err == nil {
			t.Errorf("Extract(%q) succeeded on garbage", name)
		}
		if ok {
			t.Errorf("Extract(%q) reported ok on garbage", name)
		}
	}
}

func TestExtractXLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"company", "revenue"}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Acme", 10.5}); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write workbook: %v", err)
	}

	text, ok, err := Extract("fy.xlsx", buf.Bytes())
	if err != nil || !ok {
		t.Fatalf("Extract(xlsx) = %v, %v", ok, err)
	}
	if !strings.Contains(text, "company\trevenue") || !strings.Contains(text, "Acme") {
		t.Errorf("sheet text = %q", text)
	}
}

func TestStripXMLTags(t *testing.T) {
	got := stripXMLTags(`<w:r><w:t>Revenue grew</w:t></w:r> <w:t>in 2023</w:t>`)
	if got != "Revenue grew in 2023" {
		t.Errorf("stripXMLTags = %q", got)
	}
}
