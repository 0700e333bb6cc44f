package circuitgen

import (
	"strings"
	"unicode"
)

// Exported turns name into an exported Go identifier: non alphanumeric
// characters split words, each word is capitalized.
func Exported(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteByte('X')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func deserializeName(typeName string) string { return "Deserialize" + typeName }

func defaultName(typeName string) string { return "Default" + typeName }

func unitsName(typeName string) string { return typeName + "Units" }

// PackageName returns the lower case package name generated for a layout.
func PackageName(layout string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(layout) {
		if unicode.IsLetter(r) || (unicode.IsDigit(r) && b.Len() > 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "layout"
	}
	return b.String()
}
