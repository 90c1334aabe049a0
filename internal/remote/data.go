// Package remote models infrared remote-control signals as raw mark/space
// timings and provides the transmitter, receiver and sensor components that
// IR climate devices bind to.
//
// A timing list alternates marks (carrier on, positive microseconds) and
// spaces (carrier off, negative microseconds), starting with a mark.
package remote

import (
	"fmt"
)

// DefaultCarrierFrequency is the carrier used by most consumer IR remotes (Hz).
const DefaultCarrierFrequency = 38000

// DefaultTolerance is the default receive tolerance in percent.
const DefaultTolerance = 25

// TransmitData is a raw frame to be sent.
type TransmitData struct {
	CarrierFrequency uint32  `json:"carrier_frequency"`
	Timings          []int32 `json:"timings"`
}

// SetCarrierFrequency sets the carrier frequency in Hz.
func (d *TransmitData) SetCarrierFrequency(hz uint32) {
	d.CarrierFrequency = hz
}

// Mark appends a carrier-on period of us microseconds.
func (d *TransmitData) Mark(us uint32) {
	d.Timings = append(d.Timings, int32(us))
}

// Space appends a carrier-off period of us microseconds.
// A zero-length space is not recorded.
func (d *TransmitData) Space(us uint32) {
	if us == 0 {
		return
	}
	d.Timings = append(d.Timings, -int32(us))
}

// Item appends a mark followed by a space.
func (d *TransmitData) Item(mark, space uint32) {
	d.Mark(mark)
	d.Space(space)
}

// Len returns the number of timing items.
func (d *TransmitData) Len() int {
	return len(d.Timings)
}

// Validate checks that the frame alternates marks and spaces, starting with a mark.
func (d *TransmitData) Validate() error {
	for i, t := range d.Timings {
		if t == 0 {
			return fmt.Errorf("%w: zero timing at %d", ErrInvalidTimings, i)
		}
		if (i%2 == 0) != (t > 0) {
			return fmt.Errorf("%w: item %d has wrong polarity", ErrInvalidTimings, i)
		}
	}
	return nil
}

// ReceiveData is a cursor over a received raw frame.
//
// The Peek methods compare without moving; the Expect methods advance past
// the matched items only on success.
type ReceiveData struct {
	timings   []int32
	index     int
	tolerance int
}

// NewReceiveData wraps raw timings with a tolerance in percent.
// A tolerance of zero or less selects DefaultTolerance.
func NewReceiveData(timings []int32, tolerance int) *ReceiveData {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &ReceiveData{timings: timings, tolerance: tolerance}
}

// Pos returns the cursor position.
func (r *ReceiveData) Pos() int {
	return r.index
}

// Len returns the number of timing items.
func (r *ReceiveData) Len() int {
	return len(r.timings)
}

// Tolerance returns the matching tolerance in percent.
func (r *ReceiveData) Tolerance() int {
	return r.tolerance
}

// Advance moves the cursor forward by n items.
func (r *ReceiveData) Advance(n int) {
	r.index += n
}

// Reset moves the cursor back to the start.
func (r *ReceiveData) Reset() {
	r.index = 0
}

func (r *ReceiveData) lowerBound(us uint32) int64 {
	return int64(us) * int64(100-r.tolerance) / 100
}

func (r *ReceiveData) upperBound(us uint32) int64 {
	return int64(us) * int64(100+r.tolerance) / 100
}

func (r *ReceiveData) at(offset int) (int32, bool) {
	i := r.index + offset
	if i < 0 || i >= len(r.timings) {
		return 0, false
	}
	return r.timings[i], true
}

// PeekMark reports whether the item at offset is a mark of about us microseconds.
func (r *ReceiveData) PeekMark(us uint32, offset int) bool {
	v, ok := r.at(offset)
	if !ok || v <= 0 {
		return false
	}
	return int64(v) >= r.lowerBound(us) && int64(v) <= r.upperBound(us)
}

// PeekSpace reports whether the item at offset is a space of about us microseconds.
func (r *ReceiveData) PeekSpace(us uint32, offset int) bool {
	v, ok := r.at(offset)
	if !ok || v >= 0 {
		return false
	}
	return int64(-v) >= r.lowerBound(us) && int64(-v) <= r.upperBound(us)
}

// PeekItem reports whether a mark of mark and a space of space follow.
func (r *ReceiveData) PeekItem(mark, space uint32) bool {
	return r.PeekMark(mark, 0) && r.PeekSpace(space, 1)
}

// ExpectMark consumes a mark of about us microseconds.
func (r *ReceiveData) ExpectMark(us uint32) bool {
	if !r.PeekMark(us, 0) {
		return false
	}
	r.index++
	return true
}

// ExpectSpace consumes a space of about us microseconds.
func (r *ReceiveData) ExpectSpace(us uint32) bool {
	if !r.PeekSpace(us, 0) {
		return false
	}
	r.index++
	return true
}

// ExpectItem consumes a mark/space pair.
func (r *ReceiveData) ExpectItem(mark, space uint32) bool {
	if !r.PeekItem(mark, space) {
		return false
	}
	r.index += 2
	return true
}
