package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain fields",
			line: "R1,25/02/2026,Cikgu Ali,Makmal,Paip bocor",
			want: []string{"R1", "25/02/2026", "Cikgu Ali", "Makmal", "Paip bocor"},
		},
		{
			name: "quoted comma kept in one field",
			line: `id,"Block A, 2nd Floor",type`,
			want: []string{"id", "Block A, 2nd Floor", "type"},
		},
		{
			name: "whitespace trimmed",
			line: ` a , b ,c `,
			want: []string{"a", "b", "c"},
		},
		{
			name: "spaces inside field preserved",
			line: "Kipas siling tidak berfungsi,Bilik Guru",
			want: []string{"Kipas siling tidak berfungsi", "Bilik Guru"},
		},
		{
			name: "empty middle field keeps position",
			line: "a,,c",
			want: []string{"a", "", "c"},
		},
		{
			name: "trailing comma yields empty last field",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
		{
			name: "escaped quote",
			line: `R2,"Tingkap ""pecah"" teruk",Baru`,
			want: []string{"R2", `Tingkap "pecah" teruk`, "Baru"},
		},
		{
			name: "quoted date with time",
			line: `R3,"2/25/2026, 08:00:00",Cikgu Siti`,
			want: []string{"R3", "2/25/2026, 08:00:00", "Cikgu Siti"},
		},
		{
			name: "unterminated quote degrades",
			line: `R4,"Blok B,Tandas`,
			want: []string{"R4", "Blok B", "Tandas"},
		},
		{
			name: "single field",
			line: "only",
			want: []string{"only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRow(tt.line))
		})
	}
}

func TestParseRow_FieldCount(t *testing.T) {
	lines := map[string]int{
		"a":             1,
		"a,b":           2,
		"a,b,c,d,e,f,g": 7,
		"x, y ,z":       3,
	}
	for line, n := range lines {
		assert.Len(t, ParseRow(line), n, line)
	}
}

func TestField(t *testing.T) {
	fields := []string{"a", "b"}
	assert.Equal(t, "a", Field(fields, 0))
	assert.Equal(t, "b", Field(fields, 1))
	assert.Equal(t, "", Field(fields, 2))
	assert.Equal(t, "", Field(fields, -1))
	assert.Equal(t, "", Field(nil, 0))
}
