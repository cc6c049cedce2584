package domain

import "strings"

var importModeLabels = map[ImportMode]string{
	ImportModeUpdate: "Actualizar costos",
	ImportModeCreate: "Importar productos nuevos",
}

var importModeCodes = map[string]ImportMode{
	"update":     ImportModeUpdate,
	"actualizar": ImportModeUpdate,
	"create":     ImportModeCreate,
	"crear":      ImportModeCreate,
	"import":     ImportModeCreate,
	"importar":   ImportModeCreate,
}

// ImportModeLabel returns the admin panel label for an import mode.
func ImportModeLabel(mode ImportMode) string {
	if label, ok := importModeLabels[mode]; ok {
		return label
	}

	return "Desconocido"
}

// ParseImportMode returns the mode for a given label (case-insensitive).
// An empty label selects update mode.
func ParseImportMode(label string) (ImportMode, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return ImportModeUpdate, true
	}
	mode, ok := importModeCodes[label]

	return mode, ok
}
