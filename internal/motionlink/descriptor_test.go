package motionlink

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/san-kum/gearsim/internal/joint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptor_BinaryRoundTrip(t *testing.T) {
	want := Descriptor{
		Target:   joint.Handle{Index: 0xdeadbeef, Generation: 17},
		Ratio:    -0.123456789012345,
		Reversed: true,
	}
	data, err := want.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, RecordSize)

	var got Descriptor
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, want, got)
	assert.Equal(t, math.Float64bits(want.Ratio), math.Float64bits(got.Ratio))
}

func TestDescriptor_JSONRoundTrip(t *testing.T) {
	want := Entry{
		Source:     joint.Handle{Index: 1},
		Descriptor: Descriptor{Target: joint.Handle{Index: 0, Generation: 3}, Ratio: 0.5},
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"source":{"index":1,"generation":0},"target":{"index":0,"generation":3},"ratio":0.5,"reversed":false}`,
		string(data))

	var got Entry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestDescriptor_UnmarshalRejects(t *testing.T) {
	good, err := Descriptor{Target: joint.Handle{Index: 1}, Ratio: 1}.MarshalBinary()
	require.NoError(t, err)

	badFlag := append([]byte(nil), good...)
	badFlag[16] = 2

	zero, err := Descriptor{Target: joint.Handle{Index: 1}, Ratio: 0}.MarshalBinary()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"short", good[:10]},
		{"long", append(append([]byte(nil), good...), 0)},
		{"bad flag", badFlag},
		{"zero ratio", zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Descriptor
			assert.ErrorIs(t, d.UnmarshalBinary(tt.data), ErrMalformedRecord)
		})
	}
}

func TestDescriptor_Gain(t *testing.T) {
	assert.Equal(t, 0.5, Descriptor{Ratio: 0.5}.Gain())
	assert.Equal(t, -0.5, Descriptor{Ratio: 0.5, Reversed: true}.Gain())
}

func TestEntries_BinaryRoundTrip(t *testing.T) {
	want := []Entry{
		{Source: joint.Handle{Index: 2, Generation: 1}, Descriptor: Descriptor{Target: joint.Handle{Index: 0, Generation: 4}, Ratio: 0.5}},
		{Source: joint.Handle{Index: 3}, Descriptor: Descriptor{Target: joint.Handle{Index: 2, Generation: 1}, Ratio: -3, Reversed: true}},
	}
	data, err := AppendEntries(nil, want)
	require.NoError(t, err)
	require.Len(t, data, 2*EntryRecordSize)

	got, err := DecodeEntries(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = DecodeEntries(data[:EntryRecordSize+3])
	assert.ErrorIs(t, err, ErrMalformedRecord)

	empty, err := DecodeEntries(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
