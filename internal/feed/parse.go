package feed

import (
	"sort"
	"strings"

	"aduan/internal/report"
)

// Report feed column positions.
const (
	colID = iota
	colReportedAt
	colTeacher
	colLocation
	colDescription
	colImage
	colStatus
)

// Lines splits a feed body into trimmed, non-empty lines.
func Lines(body string) []string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseTeachers extracts the Teacher Directory from the teacher feed.
//
// The header line is skipped. A row's name is everything after its first
// comma; rows without a comma or with a blank name are ignored. The result is
// sorted and holds each name once.
func ParseTeachers(body string) []string {
	lines := Lines(body)
	if len(lines) < 2 {
		return []string{}
	}

	seen := make(map[string]struct{})
	names := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		i := strings.Index(line, ",")
		if i < 0 {
			continue
		}
		name := clean(line[i+1:])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// ParseReports maps the report feed onto reports, newest (last row) first.
//
// Rows are positional: id, date, teacher, location, description, image,
// status. Missing columns become empty strings and an empty status becomes
// report.StatusNew.
func ParseReports(body string, dates *DateNormalizer) []report.Report {
	lines := Lines(body)
	if len(lines) < 2 {
		return []report.Report{}
	}

	rows := lines[1:]
	reports := make([]report.Report, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		reports = append(reports, MapReport(ParseRow(rows[i]), dates))
	}
	return reports
}

// MapReport builds a report from one parsed row.
func MapReport(fields []string, dates *DateNormalizer) report.Report {
	raw := Field(fields, colReportedAt)
	return report.Report{
		ID:               Field(fields, colID),
		ReportedAt:       dates.Normalize(raw),
		ReportedAtRaw:    raw,
		TeacherName:      Field(fields, colTeacher),
		Location:         Field(fields, colLocation),
		IssueDescription: Field(fields, colDescription),
		ImageURL:         Field(fields, colImage),
		Status:           report.NormalizeStatus(Field(fields, colStatus)),
	}
}
