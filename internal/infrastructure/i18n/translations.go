package i18n

import (
	"embed"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"eventplanner/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

// Catalogs lists the embedded message files.
var Catalogs = []string{"active.de.toml", "active.en.toml"}

var _ output.T = (*Translator)(nil)

// Translator renders notification and error texts from the embedded catalogs.
// Localizers are kept per requested locale.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *slog.Logger

	localizers sync.Map // locale -> *i18n.Localizer
	missing    sync.Map // locale + "\x00" + key -> struct{}
}

// NewTranslator builds a Translator over the embedded catalogs, falling back
// to defaultLocale (e.g. "de") for unknown locales and missing messages.
func NewTranslator(defaultLocale string, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.German
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range Catalogs {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Error("i18n: load catalog failed", "file", file, "error", err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		logger:          logger,
	}
}

// T renders key for locale, then for the default locale. A key found in
// neither renders as itself and is reported in the log once per locale.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	msg, err := t.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		if _, seen := t.missing.LoadOrStore(locale+"\x00"+key, struct{}{}); !seen {
			t.logger.Warn("i18n: message unavailable", "key", key, "locale", locale, "error", err)
		}
		return key
	}
	return msg
}

func (t *Translator) localizer(locale string) *i18n.Localizer {
	if l, ok := t.localizers.Load(locale); ok {
		return l.(*i18n.Localizer)
	}
	var languages []string
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())
	l, _ := t.localizers.LoadOrStore(locale, i18n.NewLocalizer(t.bundle, languages...))
	return l.(*i18n.Localizer)
}
