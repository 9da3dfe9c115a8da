// Package i18n renders localized, user-facing messages for error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/aurora-runner/internal/platform/i18n/catalog"
)

// Code is a machine-readable error code (string form of errors.Code).
type Code = string

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]*template.Template
	raw      map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the error catalog for locale, falling back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, "errors")
	if c, ok := lookupCatalog(resolved); ok {
		return c
	}
	return storeCatalogIfAbsent(resolved, NewCatalog(resolved, messages))
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata as template data.
// Unknown codes render as the code itself; broken templates render raw.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		if raw, exists := c.raw[code]; exists {
			return raw
		}
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return c.raw[code]
	}
	return strings.TrimSpace(buf.String())
}

// RegisterCatalog registers a catalog for locale, replacing any previous one.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog parses messages into templates for locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cat := &Catalog{
		locale:   locale,
		messages: make(map[Code]*template.Template, len(messages)),
		raw:      make(map[Code]string, len(messages)),
	}
	for code, text := range messages {
		cat.raw[code] = text
		tmpl, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err != nil {
			continue
		}
		cat.messages[code] = tmpl
	}
	return cat
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
