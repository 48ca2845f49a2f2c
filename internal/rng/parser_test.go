package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Entry
		skipped int
	}{
		{
			name:    "single pair with ev",
			content: "AKs\n0.6;1500.0\n",
			want:    []Entry{{Hand: "AKs", Weight: 0.6, EV: 0.75}},
		},
		{
			name:    "pair without ev defaults to zero",
			content: "72o\n1.0\n",
			want:    []Entry{{Hand: "72o", Weight: 1.0, EV: 0}},
		},
		{
			name:    "multiple pairs",
			content: "AA\n1.0;2400\nKK\n0.95;2000\nQQ\n0.9;1600\n",
			want: []Entry{
				{Hand: "AA", Weight: 1.0, EV: 1.2},
				{Hand: "KK", Weight: 0.95, EV: 1.0},
				{Hand: "QQ", Weight: 0.9, EV: 0.8},
			},
		},
		{
			name:    "blank lines between pairs tolerated",
			content: "AA\n\n1.0;2400\n\n\nKK\n0.95;2000\n",
			want: []Entry{
				{Hand: "AA", Weight: 1.0, EV: 1.2},
				{Hand: "KK", Weight: 0.95, EV: 1.0},
			},
		},
		{
			name:    "surrounding whitespace trimmed",
			content: "  AKo  \n  0.5 ; 1000 \n",
			want:    []Entry{{Hand: "AKo", Weight: 0.5, EV: 0.5}},
		},
		{
			name:    "empty file yields zero entries",
			content: "",
			want:    nil,
		},
		{
			name:    "whitespace-only file yields zero entries",
			content: "\n\n  \n",
			want:    nil,
		},
		{
			name:    "unknown hand label skipped",
			content: "XYZ\n0.5;100\nAA\n1.0;2400\n",
			want:    []Entry{{Hand: "AA", Weight: 1.0, EV: 1.2}},
			skipped: 1, // the bogus pair is skipped as a unit
		},
		{
			name:    "non-numeric weight skipped",
			content: "AA\nnotanumber;100\nKK\n0.5;1000\n",
			want:    []Entry{{Hand: "KK", Weight: 0.5, EV: 0.5}},
			skipped: 1,
		},
		{
			name:    "too many fields skipped",
			content: "AA\n0.5;100;9\nKK\n0.5;1000\n",
			want:    []Entry{{Hand: "KK", Weight: 0.5, EV: 0.5}},
			skipped: 1,
		},
		{
			name:    "weight above one skipped",
			content: "AA\n1.5;100\n",
			want:    nil,
			skipped: 1,
		},
		{
			name:    "trailing hand without data line skipped",
			content: "AA\n1.0;2400\nKK\n",
			want:    []Entry{{Hand: "AA", Weight: 1.0, EV: 1.2}},
			skipped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse("test.rng", []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Entries)
			assert.Len(t, f.Skipped, tt.skipped)
		})
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := Parse("bad.rng", []byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "bad.rng", readErr.File)
}

func TestParse_Idempotent(t *testing.T) {
	content := []byte("AA\n1.0;2400\nAKs\n0.6;1500\n72o\n0.0;-300\n")

	first, err := Parse("test.rng", content)
	require.NoError(t, err)
	second, err := Parse("test.rng", content)
	require.NoError(t, err)

	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Skipped, second.Skipped)
}

func TestParse_ErrorsCarryPosition(t *testing.T) {
	f, err := Parse("pos.rng", []byte("AA\nbogus;1\n"))
	require.NoError(t, err)
	require.Len(t, f.Skipped, 1)

	perr := f.Skipped[0]
	assert.Equal(t, "pos.rng", perr.File)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Error(), "invalid weight")
}
