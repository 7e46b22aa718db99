package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *float64
	}{
		{"formatted", "£1,234,500", f(1234500)},
		{"plain digits", "250000", f(250000)},
		{"decimal", "£1,250.50", f(1250.50)},
		{"prose only", "Guide price", nil},
		{"empty", "", nil},
		{"prose prefix", "Offers over £300,000", f(300000)},
		{"just symbol", "£", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestIntField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *int
	}{
		{"plain", "2", i(2)},
		{"with suffix", "3 beds", i(3)},
		{"garbled", "x4x", i(4)},
		{"empty", "", nil},
		{"no digits", "studio", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntField(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestText(t *testing.T) {
	got := Text("line one\nline two\twith\ttabs\r\n trimmed ")
	require.NotNil(t, got)
	assert.Equal(t, "line one line two with tabs  trimmed", *got)

	assert.Nil(t, Text(""))
	assert.Nil(t, Text("  \n\t "))
}

func TestString(t *testing.T) {
	got := String("  W11  ")
	require.NotNil(t, got)
	assert.Equal(t, "W11", *got)
	assert.Nil(t, String("   "))
}

func TestPricePerSqm(t *testing.T) {
	got := PricePerSqm(f(2000), f(50))
	require.NotNil(t, got)
	assert.Equal(t, 40.0, *got)

	assert.Nil(t, PricePerSqm(nil, f(50)))
	assert.Nil(t, PricePerSqm(f(2000), nil))
	assert.Nil(t, PricePerSqm(f(2000), f(0)))
	assert.Nil(t, PricePerSqm(f(2000), f(-10)))
}

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
