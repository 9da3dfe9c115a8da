// Package labels resolves localized display text for difficulty presets and
// shop items.
package labels

import (
	"github.com/louisbranch/aurora-runner/internal/platform/i18n/catalog"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/difficulty"
	"github.com/louisbranch/aurora-runner/internal/services/runner/domain/shop"
)

// Text is a display label with its longer description.
type Text struct {
	Label       string
	Description string
}

// Resolver looks labels up in one locale with base-locale fallback.
type Resolver struct {
	bundle *catalog.Bundle
	locale string
}

// New returns a Resolver for locale backed by the embedded catalog.
func New(locale string) Resolver {
	return Resolver{bundle: catalog.Default(), locale: locale}
}

// Locale returns the requested locale.
func (r Resolver) Locale() string {
	return r.locale
}

// Difficulty returns the localized label for preset, defaulting to the
// preset's own text.
func (r Resolver) Difficulty(preset difficulty.Preset) Text {
	prefix := "difficulty." + string(preset.ID)
	return Text{
		Label:       r.lookup(prefix+".label", preset.Label),
		Description: r.lookup(prefix+".description", preset.Description),
	}
}

// ShopItem returns the localized name and description for item.
func (r Resolver) ShopItem(item shop.Item) Text {
	prefix := "shop." + string(item.ID)
	return Text{
		Label:       r.lookup(prefix+".name", item.Name),
		Description: r.lookup(prefix+".description", ""),
	}
}

// UI returns a localized interface string, or key when it is missing.
func (r Resolver) UI(key string) string {
	return r.lookup(key, key)
}

// Number formats n with the locale's digit grouping.
func (r Resolver) Number(n int64) string {
	return r.bundle.Printer(r.locale).Sprintf("%d", n)
}

func (r Resolver) lookup(key, fallback string) string {
	if r.bundle == nil {
		return fallback
	}
	if value, ok := r.bundle.Message(r.locale, key); ok {
		return value
	}
	return fallback
}
