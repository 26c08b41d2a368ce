package feed

import (
	"fmt"
	"strconv"
	"strings"
)

// Day/month orders understood by DateNormalizer. They match the DATE_ORDER
// configuration values.
const (
	OrderAuto = "auto"
	OrderDMY  = "dmy"
	OrderMDY  = "mdy"
)

// DateNormalizer converts loosely formatted sheet dates to DD/MM/YYYY.
type DateNormalizer struct {
	order string
}

// NewDateNormalizer returns a normalizer for the given order. Unknown orders
// behave like OrderAuto.
func NewDateNormalizer(order string) *DateNormalizer {
	switch order {
	case OrderDMY, OrderMDY:
	default:
		order = OrderAuto
	}
	return &DateNormalizer{order: order}
}

// Order returns the configured day/month order.
func (n *DateNormalizer) Order() string {
	return n.order
}

// Normalize canonicalizes raw to a zero-padded DD/MM/YYYY string.
//
// Anything after the first space or comma (the time of day) is dropped. The
// remainder must be exactly three numeric parts separated by "/"; otherwise
// raw is returned unchanged.
//
// With OrderAuto a first part ≤ 12 followed by a second part > 12 is read as
// M/D/YYYY and everything else as D/M/YYYY, so 3/4/2026 is the 3rd of April.
// An explicit order is honoured unless it would produce a month above 12, in
// which case the parts are swapped.
//
// Examples:
//
//	"2/25/2026, 08:00:00" → "25/02/2026"
//	"25/2/2026"           → "25/02/2026"
//	"2026-02-25"          → "2026-02-25"
func (n *DateNormalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	datePart := strings.TrimSpace(raw)
	if i := strings.IndexAny(datePart, " ,"); i >= 0 {
		datePart = datePart[:i]
	}

	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return raw
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if !isDigits(p) {
			return raw
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return raw
		}
		nums[i] = v
	}

	first, second := nums[0], nums[1]
	var day, month int
	switch n.order {
	case OrderMDY:
		month, day = first, second
	case OrderDMY:
		day, month = first, second
	default:
		if first <= 12 && second > 12 {
			month, day = first, second
		} else {
			day, month = first, second
		}
	}
	if month > 12 && day <= 12 {
		day, month = month, day
	}

	return fmt.Sprintf("%02d/%02d/%s", day, month, parts[2])
}

// isDigits reports whether s is non-empty and only ASCII digits. Signs are
// not numeric parts of a date.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MonthKey returns the MM/YYYY bucket of a normalized DD/MM/YYYY date, or ""
// when the value is not in that shape.
func MonthKey(normalized string) string {
	datePart := normalized
	if i := strings.IndexAny(datePart, " ,"); i >= 0 {
		datePart = datePart[:i]
	}
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return ""
	}
	return parts[1] + "/" + parts[2]
}
