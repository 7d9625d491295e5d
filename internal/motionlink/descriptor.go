package motionlink

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/san-kum/gearsim/internal/joint"
)

// Descriptor is the link attached to a source joint.
type Descriptor struct {
	// Target is the joint whose motion is followed. Weak: it may dangle.
	Target joint.Handle `json:"target"`
	// Ratio scales the target's coupled-axis velocity.
	Ratio float64 `json:"ratio"`
	// Reversed flips the direction of the followed motion.
	Reversed bool `json:"reversed"`
}

// Sign is -1 for reversed links and +1 otherwise.
func (d Descriptor) Sign() float64 {
	if d.Reversed {
		return -1
	}
	return 1
}

// Gain is the signed factor applied to the target velocity.
func (d Descriptor) Gain() float64 {
	return d.Sign() * d.Ratio
}

// RecordSize is the length of a binary descriptor record.
const RecordSize = 17

// MarshalBinary encodes the descriptor as a fixed little-endian record:
// target index u32, target generation u32, ratio f64, reversed u8.
func (d Descriptor) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], d.Target.Index)
	binary.LittleEndian.PutUint32(buf[4:8], d.Target.Generation)
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(d.Ratio))
	if d.Reversed {
		buf[16] = 1
	}
	return buf, nil
}

func (d *Descriptor) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrMalformedRecord, len(data), RecordSize)
	}
	flag := data[16]
	if flag > 1 {
		return fmt.Errorf("%w: reversed flag %d", ErrMalformedRecord, flag)
	}
	ratio := math.Float64frombits(binary.LittleEndian.Uint64(data[8:16]))
	if !validRatio(ratio) {
		return fmt.Errorf("%w: %w", ErrMalformedRecord, ErrInvalidRatio)
	}
	d.Target = joint.Handle{
		Index:      binary.LittleEndian.Uint32(data[0:4]),
		Generation: binary.LittleEndian.Uint32(data[4:8]),
	}
	d.Ratio = ratio
	d.Reversed = flag == 1
	return nil
}

// Entry pairs a source joint with its descriptor for snapshots.
type Entry struct {
	Source joint.Handle `json:"source"`
	Descriptor
}

// EntryRecordSize is the length of a binary entry record.
const EntryRecordSize = 8 + RecordSize

// MarshalBinary encodes the source index and generation as u32s followed by
// the descriptor record.
func (e Entry) MarshalBinary() ([]byte, error) {
	rec, err := e.Descriptor.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8, EntryRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], e.Source.Index)
	binary.LittleEndian.PutUint32(buf[4:8], e.Source.Generation)
	return append(buf, rec...), nil
}

func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) != EntryRecordSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrMalformedRecord, len(data), EntryRecordSize)
	}
	if err := e.Descriptor.UnmarshalBinary(data[8:]); err != nil {
		return err
	}
	e.Source = joint.Handle{
		Index:      binary.LittleEndian.Uint32(data[0:4]),
		Generation: binary.LittleEndian.Uint32(data[4:8]),
	}
	return nil
}

// AppendEntries encodes entries back to back onto buf.
func AppendEntries(buf []byte, entries []Entry) ([]byte, error) {
	for _, e := range entries {
		rec, err := e.MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = append(buf, rec...)
	}
	return buf, nil
}

// DecodeEntries splits data into entry records.
func DecodeEntries(data []byte) ([]Entry, error) {
	if len(data)%EntryRecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of entries", ErrMalformedRecord, len(data))
	}
	out := make([]Entry, len(data)/EntryRecordSize)
	for i := range out {
		off := i * EntryRecordSize
		if err := out[i].UnmarshalBinary(data[off : off+EntryRecordSize]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

func validRatio(r float64) bool {
	return r != 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}
