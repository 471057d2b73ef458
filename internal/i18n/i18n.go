// Package i18n holds the fixed UI string tables.
package i18n

import "strings"

// Language codes.
const (
	ID = "ID"
	EN = "EN"
)

// Default is used for unknown languages.
const Default = ID

// Strings is one UI translation table.
type Strings struct {
	Helper         string `json:"helper" yaml:"helper"`
	SavedPoints    string `json:"savedPoints" yaml:"saved_points"`
	ClearConfirm   string `json:"clearConfirm" yaml:"clear_confirm"`
	ModalTitle     string `json:"modalTitle" yaml:"modal_title"`
	From           string `json:"from" yaml:"from"`
	To             string `json:"to" yaml:"to"`
	BtnSave        string `json:"btnSave" yaml:"btn_save"`
	ConfirmTitle   string `json:"confirmTitle" yaml:"confirm_title"`
	ConfirmDesc    string `json:"confirmDesc" yaml:"confirm_desc"`
	BtnCancel      string `json:"btnCancel" yaml:"btn_cancel"`
	BtnConfirm     string `json:"btnConfirm" yaml:"btn_confirm"`
	PlaceholderLat string `json:"placeholderLat" yaml:"placeholder_lat"`
	PlaceholderLon string `json:"placeholderLon" yaml:"placeholder_lon"`
}

var tables = map[string]Strings{
	ID: {
		Helper:         "Klik 3x pada peta untuk mengambil lokasi",
		SavedPoints:    "Titik Tersimpan",
		ClearConfirm:   "Hapus semua titik tersimpan?",
		ModalTitle:     "Konversi Koordinat",
		From:           "DARI",
		To:             "KE",
		BtnSave:        "Simpan & Tambahkan ke Peta",
		ConfirmTitle:   "Simpan Koordinat",
		ConfirmDesc:    "Simpan titik ini ke memori aplikasi Anda?",
		BtnCancel:      "Batal",
		BtnConfirm:     "Simpan & Pin",
		PlaceholderLat: "Lat",
		PlaceholderLon: "Lon",
	},
	EN: {
		Helper:         "Triple click on map to pick location",
		SavedPoints:    "Points Saved",
		ClearConfirm:   "Clear all saved points?",
		ModalTitle:     "Convert Coordinates",
		From:           "FROM",
		To:             "TO",
		BtnSave:        "Save & Add to Map",
		ConfirmTitle:   "Save Coordinate",
		ConfirmDesc:    "Save this point to your application memory?",
		BtnCancel:      "Cancel",
		BtnConfirm:     "Save & Pin",
		PlaceholderLat: "Lat",
		PlaceholderLon: "Lon",
	},
}

// Normalize maps a language code to a supported one, case-insensitively.
func Normalize(lang string) string {
	lang = strings.ToUpper(strings.TrimSpace(lang))
	if _, ok := tables[lang]; ok {
		return lang
	}
	return Default
}

// Lookup returns the table for lang, falling back to Indonesian.
func Lookup(lang string) Strings {
	return tables[Normalize(lang)]
}

// Languages lists the supported codes.
func Languages() []string {
	return []string{ID, EN}
}
