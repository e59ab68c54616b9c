// Package i18n provides the localized string catalog for the chat UI.
package i18n

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog resolves UI strings by key. Lookups fall back from the override
// file to the built-in locale to English, and finally echo the key itself so
// a missing translation never blanks out the UI.
type Catalog struct {
	locale   string
	override map[string]string
}

// builtin holds the shipped catalogs, keyed by locale.
var builtin = map[string]map[string]string{
	"en": {
		"chat.placeholder":       "Type a command, e.g. \"generate my cv as pdf\"",
		"chat.title":             "CV Studio Assistant",
		"chat.pending":           "Working on it",
		"chat.error_prefix":      "✗ Error: ",
		"chat.welcome":           "Signed in. Try one of these commands:",
		"chat.example_generate":  "generate my cv as a pdf",
		"chat.example_edit":      "rewrite my experience section to sound more senior",
		"chat.example_fetch":     "show me my cover letter",
		"chat.result_pdf":        "Your document is ready.",
		"chat.result_edit":       "Edit prepared. Open the editor to apply it.",
		"chat.result_file":       "File content retrieved.",
		"chat.result_generic":    "Done.",
		"chat.download_hint":     "saved to",
		"chat.download_failed":   "download failed",
		"chat.edit_hint":         "section",
		"chat.suggestions_title": "Suggestions",
		"chat.transcript_saved":  "transcript saved",
		"auth.gate_title":        "Sign in required",
		"auth.gate_body":         "You need to sign in before issuing commands.",
		"auth.gate_action":       "Press Enter to sign in, Esc to dismiss.",
		"auth.signing_in":        "Signing in",
	},
	"de": {
		"chat.placeholder":       "Befehl eingeben, z.B. \"erstelle meinen lebenslauf als pdf\"",
		"chat.title":             "CV Studio Assistent",
		"chat.pending":           "Wird bearbeitet",
		"chat.error_prefix":      "✗ Fehler: ",
		"chat.welcome":           "Angemeldet. Probiere einen dieser Befehle:",
		"chat.example_generate":  "erstelle meinen lebenslauf als pdf",
		"chat.example_edit":      "formuliere meinen erfahrungsabschnitt überzeugender",
		"chat.example_fetch":     "zeige mir mein anschreiben",
		"chat.result_pdf":        "Dein Dokument ist fertig.",
		"chat.result_edit":       "Änderung vorbereitet. Öffne den Editor, um sie anzuwenden.",
		"chat.result_file":       "Dateiinhalt abgerufen.",
		"chat.result_generic":    "Erledigt.",
		"chat.download_hint":     "gespeichert unter",
		"chat.download_failed":   "Download fehlgeschlagen",
		"chat.edit_hint":         "Abschnitt",
		"chat.suggestions_title": "Vorschläge",
		"chat.transcript_saved":  "Verlauf gespeichert",
		"auth.gate_title":        "Anmeldung erforderlich",
		"auth.gate_body":         "Du musst dich anmelden, bevor du Befehle ausführst.",
		"auth.gate_action":       "Enter zum Anmelden, Esc zum Schließen.",
		"auth.signing_in":        "Anmeldung läuft",
	},
}

// New creates a catalog for the given locale. overrideFile may be empty; if
// set it must be a YAML file of key: value pairs which take precedence over
// the built-in strings.
func New(locale, overrideFile string) (*Catalog, error) {
	c := &Catalog{locale: locale}

	if overrideFile == "" {
		return c, nil
	}

	data, err := os.ReadFile(overrideFile)
	if err != nil {
		return nil, fmt.Errorf("read locale file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.override); err != nil {
		return nil, fmt.Errorf("parse locale file: %w", err)
	}
	return c, nil
}

// Get returns the string for key, or the key itself if no catalog has it.
func (c *Catalog) Get(key string) string {
	if s, ok := c.override[key]; ok {
		return s
	}
	if m, ok := builtin[c.locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := builtin["en"][key]; ok {
		return s
	}
	return key
}
