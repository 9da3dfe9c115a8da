// Package i18nhttp resolves the response locale for HTTP requests against the
// embedded message catalog.
package i18nhttp

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	i18ncatalog "github.com/louisbranch/aurora-runner/internal/platform/i18n/catalog"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

// Resolver matches request languages to catalog locales.
type Resolver struct {
	locales []string
	matcher language.Matcher
}

// NewResolver builds a resolver over bundle's locales. The base locale is
// preferred when nothing matches.
func NewResolver(bundle *i18ncatalog.Bundle) *Resolver {
	locales := []string{i18ncatalog.BaseLocale}
	for _, locale := range bundle.Locales() {
		if locale != i18ncatalog.BaseLocale {
			locales = append(locales, locale)
		}
	}
	tags := make([]language.Tag, 0, len(locales))
	for _, locale := range locales {
		tags = append(tags, language.Make(locale))
	}
	return &Resolver{locales: locales, matcher: language.NewMatcher(tags)}
}

// Locales returns the supported locales, base locale first.
func (r *Resolver) Locales() []string {
	return append([]string(nil), r.locales...)
}

// Resolve picks the locale for req: the lang query parameter first, then
// Accept-Language, then the base locale.
func (r *Resolver) Resolve(req *http.Request) string {
	if r == nil || req == nil {
		return i18ncatalog.BaseLocale
	}
	if value := strings.TrimSpace(req.URL.Query().Get(LangParam)); value != "" {
		if tag, err := language.Parse(value); err == nil {
			return r.match(tag)
		}
	}
	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return r.match(tags...)
		}
	}
	return i18ncatalog.BaseLocale
}

func (r *Resolver) match(tags ...language.Tag) string {
	_, index, confidence := r.matcher.Match(tags...)
	if confidence == language.No {
		return i18ncatalog.BaseLocale
	}
	return r.locales[index]
}
