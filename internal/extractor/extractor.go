// Package extractor converts uploaded document payloads into plain text.
// Unsupported binary types are reported as non-extractable rather than as
// errors, so one odd file never poisons a batch.
package extractor

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// PageBreakMarker separates page texts in multi-page extractions.
const PageBreakMarker = "\n\n--- page break ---\n\n"

// Extract converts a file payload to plain text, dispatching on the file
// extension with a MIME sniff as fallback.
//
// ok=false means the type is not extractable; that is not an error. A non-nil
// err means a supported type failed to parse (corrupt file) and should be
// recorded against the file.
func Extract(name string, data []byte) (text string, ok bool, err error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		text, err = extractPDF(data)
		return text, err == nil, err
	case ".xlsx", ".xlsm":
		text, err = extractXLSX(data)
		return text, err == nil, err
	case ".docx":
		text, err = extractDOCX(data)
		return text, err == nil, err
	case ".txt", ".md", ".csv", ".json", ".log":
		return string(data), true, nil
	}

	// Unknown extension: accept anything that sniffs as text.
	mtype := mimetype.Detect(data)
	if strings.HasPrefix(mtype.String(), "text/") && utf8.Valid(data) {
		return string(data), true, nil
	}

	return "", false, nil
}
