// Package resources holds the localized strings shown by the dialog surfaces.
package resources

import (
	"os"
	"strings"

	"github.com/petems/screenrecord/internal/options"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// String keys.
const (
	PermissionError = "screenrecord_permission_error"
	Title           = "screenrecord_title"
	MicLabel        = "screenrecord_mic_label"
	TapsLabel       = "screenrecord_taps_label"
	LowQualityLabel = "screenrecord_low_quality_label"
	StartLabel      = "screenrecord_start_label"
	CancelLabel     = "screenrecord_cancel_label"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		PermissionError: "Screen recording permissions were not granted",
		Title:           "Screen recording",
		MicLabel:        "Record audio",
		TapsLabel:       "Show taps",
		LowQualityLabel: "Low quality",
		StartLabel:      "Start",
		CancelLabel:     "Cancel",
	},
	language.German: {
		PermissionError: "Berechtigungen für die Bildschirmaufnahme wurden nicht erteilt",
		Title:           "Bildschirmaufnahme",
		MicLabel:        "Audio aufnehmen",
		TapsLabel:       "Berührungen anzeigen",
		LowQualityLabel: "Niedrige Qualität",
		StartLabel:      "Starten",
		CancelLabel:     "Abbrechen",
	},
	language.Japanese: {
		PermissionError: "画面録画の権限が許可されませんでした",
		Title:           "画面録画",
		MicLabel:        "音声を録音",
		TapsLabel:       "タップを表示",
		LowQualityLabel: "低画質",
		StartLabel:      "開始",
		CancelLabel:     "キャンセル",
	},
}

// Strings resolves keys to text in one language.
type Strings struct {
	printer *message.Printer
}

// New builds the catalog and picks the closest supported language to lang.
// An empty lang falls back to the LANG environment variable, then English.
func New(lang string) *Strings {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range translations {
		for key, msg := range entries {
			_ = b.SetString(tag, key, msg)
		}
	}

	if lang == "" {
		lang = os.Getenv("LANG")
	}

	supported := []language.Tag{language.English, language.German, language.Japanese}
	_, idx, _ := language.NewMatcher(supported).Match(language.Make(normalize(lang)))

	return &Strings{printer: message.NewPrinter(supported[idx], message.Catalog(b))}
}

// Get returns the text for key.
func (s *Strings) Get(key string) string {
	return s.printer.Sprintf(key)
}

// OptionLabel returns the key of the toggle label for o, or "" for an
// unknown option.
func OptionLabel(o options.Option) string {
	switch o {
	case options.MicrophoneEnabled:
		return MicLabel
	case options.ShowTaps:
		return TapsLabel
	case options.LowQuality:
		return LowQualityLabel
	default:
		return ""
	}
}

// normalize turns POSIX locale names such as "de_DE.UTF-8" into BCP 47.
func normalize(lang string) string {
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "C" || lang == "POSIX" {
		return "en"
	}
	return strings.ReplaceAll(lang, "_", "-")
}
