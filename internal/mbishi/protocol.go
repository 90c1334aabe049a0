package mbishi

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
)

// Domain errors for frame decoding.
var (
	ErrBadHeader  = errors.New("mbishi: header not found")
	ErrBadBit     = errors.New("mbishi: bit timing not recognised")
	ErrBadPrefix  = errors.New("mbishi: static prefix mismatch")
	ErrBadInverse = errors.New("mbishi: inverted byte mismatch")
)

// FrameLen is the number of bytes in one frame.
const FrameLen = 19

// Frame is one raw remote-control message.
//
// Bytes 0..4 are a fixed prefix. Every byte at an even index from 6 on is the
// bitwise inverse of the byte before it.
type Frame [FrameLen]byte

// Power bits (byte 5).
const (
	powerOn  byte = 0x00
	powerOff byte = 0x08
	cleanOff byte = 0x60
)

// Operating modes (byte 5, low three bits).
const (
	modeAuto byte = 0x07
	modeHeat byte = 0x03
	modeCool byte = 0x06
	modeDry  byte = 0x05
	modeFan  byte = 0x04
)

// Fan speeds (byte 9).
const (
	fanAuto    byte = 0x0F
	fan1       byte = 0x0E
	fan2       byte = 0x0D
	fan3       byte = 0x0C
	fan4       byte = 0x0B
	fanHiPower byte = 0x07
	fanEcono   byte = 0x00
)

// Vertical vane positions (bytes 11 and 13, high bits).
const (
	vaneSwing   byte = 0xE0
	vaneUp      byte = 0xC0
	vaneMidUp   byte = 0xA0
	vaneMiddle  byte = 0x80
	vaneMidDown byte = 0x60
	vaneDown    byte = 0x40
	vaneStop    byte = 0x20
)

// Horizontal vane positions (byte 13, low nibble).
const (
	wideSwing     byte = 0x0F
	wideMiddle    byte = 0x0C
	wideLeft      byte = 0x0E
	wideMidLeft   byte = 0x0D
	wideMidRight  byte = 0x0B
	wideRight     byte = 0x0A
	wideStop      byte = 0x07
	wideLeftRight byte = 0x08
	wideRightLeft byte = 0x09
)

// Byte 11 and byte 15 options. 3D auto and silent are always sent off.
const (
	autoThreeDOff byte = 0x12
	silentOff     byte = 0x80
)

// Temperature limits the frame can carry.
const (
	MinTemperature     = 18
	MaxTemperature     = 30
	defaultTemperature = 22
	temperatureBase    = 17
)

// Pulse timings in microseconds.
const (
	CarrierFrequency = 38000
	HeaderMark       = 3200
	HeaderSpace      = 1600
	BitMark          = 400
	OneSpace         = 1200
	ZeroSpace        = 400
)

var template = Frame{
	0x52, 0xAE, 0xC3, 0x1A, 0xE5,
	0x90, 0x00, 0xF0, 0x00, 0xF0, 0x00, 0x0D,
	0x00, 0x10, 0x00, 0xFF, 0x00, 0x7F, 0x00,
}

const prefixLen = 5

// Encode builds the frame for st.
//
// Each mode has a preferred vertical vane position that swing overrides.
// The middle, focus and diffuse fan presets run the fan on auto and set the
// horizontal vane, overriding horizontal swing. Byte 13 carries the
// vertical vane bits as well as the horizontal ones.
func Encode(st climate.State) Frame {
	f := template

	power, mode := powerOn, modeAuto
	vertical, horizontal := vaneStop, wideStop

	switch st.Mode {
	case climate.ModeCool:
		mode, vertical = modeCool, vaneUp
	case climate.ModeHeat:
		mode, vertical = modeHeat, vaneDown
	case climate.ModeAuto:
		mode, vertical = modeAuto, vaneMiddle
	case climate.ModeFanOnly:
		mode, vertical = modeFan, vaneMiddle
	case climate.ModeDry:
		mode, vertical = modeDry, vaneMiddle
	default:
		power = powerOff
	}

	temp := defaultTemperature
	if t := st.TargetTemperature; t > temperatureBase && t < MaxTemperature+1 {
		temp = int(t)
	}

	switch st.SwingMode {
	case climate.SwingBoth:
		vertical, horizontal = vaneSwing, wideSwing
	case climate.SwingHorizontal:
		horizontal = wideSwing
	case climate.SwingVertical:
		vertical = vaneSwing
	}

	fan := fanAuto
	switch st.FanMode {
	case climate.FanLow:
		fan = fan1
	case climate.FanMedium:
		fan = fan3
	case climate.FanHigh:
		fan = fan4
	case climate.FanMiddle:
		horizontal = wideMiddle
	case climate.FanFocus:
		horizontal = wideRightLeft
	case climate.FanDiffuse:
		horizontal = wideLeftRight
	}

	f[5] |= power | mode | cleanOff
	f[7] |= ^byte(temp-temperatureBase) & 0x0F
	f[9] |= fan
	f[11] |= vertical | autoThreeDOff
	f[13] |= vertical | horizontal
	f[15] |= silentOff
	for i := 6; i < FrameLen; i += 2 {
		f[i] = ^f[i-1]
	}
	return f
}

// Decode reads the state carried by f.
//
// The current temperature is unknown. An unrecognised operating mode is
// reported as auto.
func Decode(f Frame) (climate.State, error) {
	for i := 0; i < prefixLen; i++ {
		if f[i] != template[i] {
			return climate.State{}, fmt.Errorf("%w: byte %d is 0x%02X", ErrBadPrefix, i, f[i])
		}
	}
	for i := 6; i < FrameLen; i += 2 {
		if f[i] != ^f[i-1] {
			return climate.State{}, fmt.Errorf("%w: bytes %d and %d", ErrBadInverse, i-1, i)
		}
	}

	st := climate.State{CurrentTemperature: math.NaN()}

	if f[5]&0x08 == powerOn {
		switch f[5] & 0x07 {
		case modeCool:
			st.Mode = climate.ModeCool
		case modeHeat:
			st.Mode = climate.ModeHeat
		case modeFan:
			st.Mode = climate.ModeFanOnly
		case modeDry:
			st.Mode = climate.ModeDry
		default:
			st.Mode = climate.ModeAuto
		}
	} else {
		st.Mode = climate.ModeOff
	}

	st.TargetTemperature = float64(int(^f[7]&0x0F) + temperatureBase)

	vertical := f[11] & 0xE0
	horizontal := f[13] & 0x0F
	switch {
	case vertical == vaneSwing && horizontal == wideSwing:
		st.SwingMode = climate.SwingBoth
	case vertical == vaneSwing:
		st.SwingMode = climate.SwingVertical
	case horizontal == wideSwing:
		st.SwingMode = climate.SwingHorizontal
	default:
		st.SwingMode = climate.SwingOff
	}

	switch f[9] & 0x0F {
	case fan1, fan2:
		st.FanMode = climate.FanLow
	case fan3:
		st.FanMode = climate.FanMedium
	case fan4, fanHiPower:
		st.FanMode = climate.FanHigh
	case fanAuto:
		switch horizontal {
		case wideMiddle:
			st.FanMode = climate.FanMiddle
		case wideRightLeft:
			st.FanMode = climate.FanFocus
		case wideLeftRight:
			st.FanMode = climate.FanDiffuse
		default:
			st.FanMode = climate.FanAuto
		}
	default:
		st.FanMode = climate.FanAuto
	}
	return st, nil
}

// Modulate converts f to raw timings: a header, each byte LSB first, then a
// closing mark.
func Modulate(f Frame) remote.TransmitData {
	var data remote.TransmitData
	data.SetCarrierFrequency(CarrierFrequency)
	data.Item(HeaderMark, HeaderSpace)
	for _, b := range f {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				data.Item(BitMark, OneSpace)
			} else {
				data.Item(BitMark, ZeroSpace)
			}
		}
	}
	data.Mark(BitMark)
	return data
}

// Demodulate reads one frame from data. The cursor is left after the last
// data bit on success.
func Demodulate(data *remote.ReceiveData) (Frame, error) {
	var f Frame
	if !data.ExpectItem(HeaderMark, HeaderSpace) {
		return f, ErrBadHeader
	}
	for i := range f {
		var b byte
		for bit := 0; bit < 8; bit++ {
			switch {
			case data.ExpectItem(BitMark, OneSpace):
				b |= 1 << bit
			case data.ExpectItem(BitMark, ZeroSpace):
			default:
				return f, fmt.Errorf("%w: byte %d bit %d at item %d", ErrBadBit, i, bit, data.Pos())
			}
		}
		f[i] = b
	}
	return f, nil
}

// String renders the frame as space-separated hex bytes.
func (f Frame) String() string {
	var sb strings.Builder
	for i, b := range f {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// Protocol adapts the frame codec to the IR climate base.
type Protocol struct{}

// Transmit encodes and modulates st.
func (Protocol) Transmit(st climate.State) remote.TransmitData {
	return Modulate(Encode(st))
}

// Receive demodulates and decodes one frame.
func (Protocol) Receive(data *remote.ReceiveData) (climate.State, bool) {
	f, err := Demodulate(data)
	if err != nil {
		return climate.State{}, false
	}
	st, err := Decode(f)
	if err != nil {
		return climate.State{}, false
	}
	return st, true
}
