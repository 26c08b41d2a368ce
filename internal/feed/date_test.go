package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateNormalizer_Auto(t *testing.T) {
	n := NewDateNormalizer(OrderAuto)

	tests := []struct {
		raw  string
		want string
	}{
		{"2/25/2026", "25/02/2026"},
		{"25/2/2026", "25/02/2026"},
		{"2026-02-25", "2026-02-25"},
		{"", ""},
		{"2/25/2026, 08:00:00", "25/02/2026"},
		{"25/2/2026 14:30:00", "25/02/2026"},
		{"3/4/2026", "03/04/2026"},
		{"1/2", "1/2"},
		{"a/b/2026", "a/b/2026"},
		{"Tiada tarikh", "Tiada tarikh"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestDateNormalizer_ExplicitOrder(t *testing.T) {
	mdy := NewDateNormalizer(OrderMDY)
	assert.Equal(t, "04/03/2026", mdy.Normalize("3/4/2026"))
	assert.Equal(t, "25/02/2026", mdy.Normalize("25/2/2026"), "impossible month swaps")

	dmy := NewDateNormalizer(OrderDMY)
	assert.Equal(t, "03/04/2026", dmy.Normalize("3/4/2026"))
	assert.Equal(t, "25/02/2026", dmy.Normalize("2/25/2026"), "impossible month swaps")
}

func TestNormalize_RejectsSignedParts(t *testing.T) {
	n := NewDateNormalizer(OrderAuto)
	for _, raw := range []string{"+2/3/2026", "2/-3/2026", "2/3/+2026", "2//2026"} {
		assert.Equal(t, raw, n.Normalize(raw))
	}
}

func TestNewDateNormalizer_UnknownOrder(t *testing.T) {
	assert.Equal(t, OrderAuto, NewDateNormalizer("ymd").Order())
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "02/2026", MonthKey("25/02/2026"))
	assert.Equal(t, "02/2026", MonthKey("25/02/2026, 08:00"))
	assert.Equal(t, "", MonthKey("2026-02-25"))
	assert.Equal(t, "", MonthKey(""))
}
