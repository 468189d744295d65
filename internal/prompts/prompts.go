// Package prompts holds the instruction templates sent with each LLM call.
// Templates are configuration: the pipeline substitutes slots like
// {documentText} and never interprets the surrounding text, so prompt tuning
// needs no code change.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind names one instruction template.
type Kind string

const (
	Summarize        Kind = "summarize"
	ExtractCompanies Kind = "extract_companies"
	Consolidate      Kind = "consolidate"
	Chat             Kind = "chat"
)

// Library resolves templates, preferring files in a configured directory over
// the embedded defaults.
type Library struct {
	templates map[Kind]string
}

// Load builds a Library from defaults overlaid with any <kind>.txt files found
// in dir. An empty dir selects the defaults only.
func Load(dir string) (*Library, error) {
	lib := &Library{templates: map[Kind]string{
		Summarize:        defaultSummarize,
		ExtractCompanies: defaultExtractCompanies,
		Consolidate:      defaultConsolidate,
		Chat:             defaultChat,
	}}

	if dir == "" {
		return lib, nil
	}
	for kind := range lib.templates {
		path := filepath.Join(dir, string(kind)+".txt")
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read template %q: %w", path, err)
		}
		lib.templates[kind] = string(data)
	}
	return lib, nil
}

// Render substitutes {slot} placeholders into the named template.
func (l *Library) Render(kind Kind, slots map[string]string) (string, error) {
	tmpl, ok := l.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown template %q", kind)
	}
	for slot, value := range slots {
		tmpl = strings.ReplaceAll(tmpl, "{"+slot+"}", value)
	}
	return tmpl, nil
}

const defaultSummarize = `You are an analyst reviewing private-equity deal documents.
Summarize the document excerpt below in a few dense paragraphs. Preserve
company names, fund names, financial figures with their currencies and units,
reporting periods, and any dates. Do not editorialize.

Document excerpt:
{documentText}`

const defaultExtractCompanies = `You are an analyst extracting structured company data from
private-equity deal documents. From the document excerpt below, extract every
company or fund mentioned with financial data. Respond with a JSON array only,
no prose. Each element must have this shape:

{"name": "...", "sector": "...", "years": [2022, 2023],
 "variables": {"revenue": {"2022": {"value": 10.5, "currency": "EUR", "unit": "m"}}}}

Variable names are snake_case ({variables} are commonly expected). Omit fields
you cannot find rather than guessing. Respond with [] if no company data is
present.

Document excerpt:
{documentText}`

const defaultConsolidate = `You are consolidating company data extracted from multiple
private-equity documents. The raw records below may repeat the same entity
across documents and years. Merge them into one JSON array with a single entry
per entity, no prose. Each element must have this shape:

{"name": "...", "type": "company" or "fund", "description": "...",
 "variables": {"revenue": {"2022": {"value": 10.5, "currency": "EUR", "unit": "m"}}},
 "dates": ["2023-06-30"]}

Keep every year of data seen for an entity. Infer "type" from context.

Raw records:
{rawData}`

const defaultChat = `You are an analyst assistant for a private-equity document
workspace. Answer using only the context below; say so when the context does
not contain the answer.

Context:
{text}`
