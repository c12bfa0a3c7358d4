package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"66 dB", 66, true},
		{"4'400 mAh", 4400, true},
		{"5,200 mAh", 5200, true},
		{"9.7 cm", 9.7, true},
		{"0.77 kg", 0.77, true},
		{"no digits here", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := firstNumber(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"CHF 1'299.–", 1299, true},
		{"499.50", 499.5, true},
		{"CHF 89.90", 89.9, true},
		{"1,440.05", 1440.05, true},
		{"price on request", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"180 min", 180},
		{"90min", 90},
		{"2.5 h", 150},
		{"45", 45},
	}
	for _, tt := range tests {
		got, ok := parseMinutes(tt.in)
		assert.True(t, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	_, ok := parseMinutes("unknown")
	assert.False(t, ok)
}

func TestSplitTags_CollapsesVariants(t *testing.T) {
	tags := splitTags("Mopping function, mopping function, Wet-mopping, wet mopping, ")
	assert.Equal(t, []string{"mopping function", "wet mopping"}, tags)
}

func TestMergeColors(t *testing.T) {
	assert.Equal(t, "Black", mergeColors("Black", ""))
	assert.Equal(t, "Jet Black", mergeColors("", "Jet Black"))
	assert.Equal(t, "Black", mergeColors("Black", "Black"))
	assert.Equal(t, "Black, Jet Black", mergeColors("Black", "Jet Black"))
	assert.Equal(t, "Black, White", mergeColors("Black, White", "black"))
}

func TestCanonLabel(t *testing.T) {
	assert.Equal(t,
		"battery properties capacity",
		canonLabel("Battery properties  Capacity"))
	assert.Equal(t,
		canonLabel("Key specifications  Battery life"),
		canonLabel("key specifications battery life"))
}
