package robot

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lightseeker/internal/explore"
)

const sampleLine = `{"t":1.536,"ps":[61.2,70.0,65.3,60.1,62.4,118.7,95.2,143.9],"ls":[612.5,400,400,400,400,400,400,400],"gps":[0.254,-0.011,-0.318]}`

func TestDecodeSample_MapsSensors(t *testing.T) {
	got, err := DecodeSample(sampleLine)
	require.NoError(t, err)

	want := explore.Sample{
		FrontRange:      143.9,
		LeftRange:       118.7,
		LeftCornerRange: 95.2,
		Light:           612.5,
		Position:        r3.Vec{X: 0.254, Y: -0.011, Z: -0.318},
		Time:            1.536,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeSample mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSample_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"not json", "V 1.0 2.0"},
		{"truncated", `{"t":1.0,"ps":[1,2`},
		{"short ps", `{"t":1.0,"ps":[1,2,3],"ls":[1],"gps":[0,0,0]}`},
		{"no light", `{"t":1.0,"ps":[0,0,0,0,0,0,0,0],"ls":[],"gps":[0,0,0]}`},
		{"bad gps", `{"t":1.0,"ps":[0,0,0,0,0,0,0,0],"ls":[1],"gps":[0,0]}`},
		{"wrong type", `{"t":"soon","ps":[0,0,0,0,0,0,0,0],"ls":[1],"gps":[0,0,0]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSample(tt.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedFrame), "error %v should wrap ErrMalformedFrame", err)
		})
	}
}

func TestEncodeSample_DecodesBack(t *testing.T) {
	in := explore.Sample{
		FrontRange:      101,
		LeftRange:       80.5,
		LeftCornerRange: 12,
		Light:           733.25,
		Position:        r3.Vec{X: -0.5, Y: 0.02, Z: 0.75},
		Time:            12.8,
	}
	line, err := EncodeSample(in)
	require.NoError(t, err)

	out, err := DecodeSample(line)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFormatVelocity(t *testing.T) {
	assert.Equal(t, "V 6.2800 -3.1400", FormatVelocity(6.28, -3.14))
	assert.Equal(t, "V 0.0000 0.0000", FormatVelocity(0, 0))
}
