package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ffc800")
	require.NoError(t, err)
	assert.Equal(t, Marker, c)

	c, err = ParseHex("0a141e")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, c)

	for _, bad := range []string{"", "fff", "gggggg", "#ffc80000"} {
		_, err := ParseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestBandAroundClamps(t *testing.T) {
	b := BandAround(Marker, 50)
	assert.Equal(t, [3]uint8{0, 150, 205}, b.Lower)
	assert.Equal(t, [3]uint8{50, 250, 255}, b.Upper)
}
