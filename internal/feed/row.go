// Package feed reads the published spreadsheet exports: it splits raw CSV
// lines into fields, canonicalizes dates, and maps rows onto teachers and
// reports.
//
// Nothing in this package fails on bad data. A malformed row yields empty
// fields, an unrecognised date passes through untouched.
package feed

import (
	"regexp"
	"strings"
)

// fieldPattern matches one field at the start of the remaining input: either
// a double-quoted span (with "" as an escaped quote) or a run of non-comma
// characters, followed by a comma or the end of the line.
var fieldPattern = regexp.MustCompile(`^\s*(?:"((?:[^"]|"")*)"|([^,]*?))\s*(,|$)`)

// ParseRow splits one trimmed, non-empty line into its fields.
//
// Quoted fields keep embedded commas. Surrounding quotes and whitespace are
// removed from every field. Empty fields between commas are kept so later
// columns never shift left.
//
// Examples:
//
//	ParseRow(`R1,"Blok A, Tingkat 2",Kipas`) → ["R1", "Blok A, Tingkat 2", "Kipas"]
//	ParseRow(`a,,c`)                        → ["a", "", "c"]
func ParseRow(line string) []string {
	var fields []string

	rest := line
	for {
		m := fieldPattern.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}

		var value string
		switch {
		case m[2] >= 0:
			value = strings.ReplaceAll(rest[m[2]:m[3]], `""`, `"`)
		case m[4] >= 0:
			value = rest[m[4]:m[5]]
		}
		fields = append(fields, clean(value))

		// Separator group is empty at end of line
		if m[6] == m[7] {
			break
		}
		rest = rest[m[1]:]
	}

	if len(fields) == 0 {
		for _, part := range strings.Split(line, ",") {
			fields = append(fields, clean(part))
		}
	}

	return fields
}

// Field returns fields[i], or "" when the row is too short.
func Field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// clean strips one surrounding quote on each side and trims whitespace.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}
