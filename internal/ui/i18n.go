package ui

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// DefaultLanguage is the language overlay labels are translated into when
// no other language is configured.
const DefaultLanguage = "pl"

// builtinMessages are always available so labels produced by the stock
// reducers render without extra message files.
var builtinMessages = map[language.Tag][]*i18n.Message{
	language.Polish: {
		{ID: "BACK_BUTTON_TEXT", Other: "Wróć"},
		{ID: "LOADING", Other: "Ładowanie..."},
		{ID: "SAVED", Other: "Zapisano"},
	},
	language.English: {
		{ID: "BACK_BUTTON_TEXT", Other: "Back"},
		{ID: "LOADING", Other: "Loading..."},
		{ID: "SAVED", Other: "Saved"},
	},
}

// Translator resolves overlay labels. A label that is a known message ID is
// replaced by its translation; anything else is shown verbatim.
type Translator struct {
	localizer *i18n.Localizer
}

// NewTranslator builds a translator for lang, loading TOML message files
// (e.g. active.pl.toml) in addition to the built-in messages.
func NewTranslator(lang string, messageFiles ...string) (*Translator, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for t, msgs := range builtinMessages {
		if err := bundle.AddMessages(t, msgs...); err != nil {
			return nil, fmt.Errorf("add builtin messages: %w", err)
		}
	}
	for _, path := range messageFiles {
		if _, err := bundle.LoadMessageFile(path); err != nil {
			return nil, fmt.Errorf("load message file %s: %w", path, err)
		}
	}

	return &Translator{localizer: i18n.NewLocalizer(bundle, tag.String())}, nil
}

// Translate returns the localized text for label, or label itself.
func (t *Translator) Translate(label string) string {
	if t == nil || label == "" {
		return label
	}
	text, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: label})
	if err != nil || text == "" {
		return label
	}
	return text
}
