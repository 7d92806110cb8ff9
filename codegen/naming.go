package codegen

import (
	"strings"
	"unicode"
)

// ToLowerCamelCase converts an upper-camel-case or all-caps identifier to
// lower camel case. A leading abbreviation is lower-cased as a whole, except
// for its last letter when that letter starts the next word:
//
//	"ImportCSV"    -> "importCSV"
//	"FOOBARImport" -> "foobarImport"
//	"CSV"          -> "csv"
//	"_CSVImport"   -> "_csvImport"
//
// Underscores are never treated as letters. The conversion is idempotent.
func ToLowerCamelCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	firstLower := -1
	for i, r := range runes {
		if r != '_' && unicode.IsLower(r) {
			firstLower = i
			break
		}
	}
	switch {
	case firstLower < 0:
		return strings.ToLower(s)
	case firstLower == 0:
		// already lower camel case, as in "importCSV"
		return s
	case firstLower == 1:
		// as in "ImportCSV"
		return strings.ToLower(string(runes[0])) + string(runes[1:])
	default:
		// starts with an abbreviation, as in "FOOBARImport"; the last upper-case
		// letter before firstLower begins the next word
		split := firstLower - 1
		return strings.ToLower(string(runes[:split])) + string(runes[split:])
	}
}

// swiftTypePrefix computes the prefix that is prepended to the names of types
// generated from a file with the given proto package. Dots become underscores,
// underscores are dropped, and each letter that follows either one (and the
// first letter) is capitalized. A non-empty result ends with an underscore:
//
//	"foo.bar_baz" -> "Foo_BarBaz_"
func swiftTypePrefix(protoPackage string) string {
	if protoPackage == "" {
		return ""
	}
	var buf strings.Builder
	makeUpper := true
	for _, r := range protoPackage {
		switch r {
		case '_':
			makeUpper = true
		case '.':
			makeUpper = true
			buf.WriteByte('_')
		default:
			if makeUpper {
				buf.WriteString(strings.ToUpper(string(r)))
				makeUpper = false
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('_')
	return buf.String()
}
