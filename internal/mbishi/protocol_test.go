package mbishi

import (
	"errors"
	"math"
	"testing"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
)

func state(mode climate.Mode, temp float64, fan climate.FanMode, swing climate.SwingMode) climate.State {
	return climate.State{Mode: mode, TargetTemperature: temp, FanMode: fan, SwingMode: swing, CurrentTemperature: math.NaN()}
}

func TestEncodeKnownFrames(t *testing.T) {
	tests := []struct {
		name string
		st   climate.State
		want string
	}{
		{
			"cool 24 auto fan",
			state(climate.ModeCool, 24, climate.FanAuto, climate.SwingOff),
			"52 AE C3 1A E5 F6 09 F8 07 FF 00 DF 20 D7 28 FF 00 7F 80",
		},
		{
			"off keeps defaults",
			state(climate.ModeOff, 24, climate.FanAuto, climate.SwingOff),
			"52 AE C3 1A E5 FF 00 F8 07 FF 00 3F C0 37 C8 FF 00 7F 80",
		},
		{
			"heat 30 high both",
			state(climate.ModeHeat, 30, climate.FanHigh, climate.SwingBoth),
			"52 AE C3 1A E5 F3 0C F2 0D FB 04 FF 00 FF 00 FF 00 7F 80",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.st).String(); got != tt.want {
				t.Errorf("Encode() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestEncodeTemperatureOutOfRange(t *testing.T) {
	def := Encode(state(climate.ModeCool, 22, climate.FanAuto, climate.SwingOff))
	for _, temp := range []float64{0, 17, 31, math.NaN()} {
		if got := Encode(state(climate.ModeCool, temp, climate.FanAuto, climate.SwingOff)); got != def {
			t.Errorf("Encode(%g) = %s, want default 22 frame", temp, got)
		}
	}
}

func TestEncodeSwingBytes(t *testing.T) {
	tests := []struct {
		swing  climate.SwingMode
		want11 byte
		want13 byte
	}{
		{climate.SwingOff, 0xDF, 0xD7},
		{climate.SwingHorizontal, 0xDF, 0xDF},
		{climate.SwingVertical, 0xFF, 0xF7},
		{climate.SwingBoth, 0xFF, 0xFF},
	}
	for _, tt := range tests {
		f := Encode(state(climate.ModeCool, 24, climate.FanAuto, tt.swing))
		if f[11] != tt.want11 || f[13] != tt.want13 {
			t.Errorf("swing %s: bytes 11/13 = %02X/%02X, want %02X/%02X", tt.swing, f[11], f[13], tt.want11, tt.want13)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	modes := []climate.Mode{climate.ModeAuto, climate.ModeCool, climate.ModeHeat, climate.ModeDry, climate.ModeFanOnly}
	speeds := []climate.FanMode{climate.FanAuto, climate.FanLow, climate.FanMedium, climate.FanHigh}

	for _, mode := range modes {
		for temp := MinTemperature; temp <= MaxTemperature; temp++ {
			for _, fan := range speeds {
				for _, swing := range climate.AllSwingModes() {
					in := state(mode, float64(temp), fan, swing)
					got, err := Decode(Encode(in))
					if err != nil {
						t.Fatalf("Decode(Encode(%+v)) error = %v", in, err)
					}
					if got.Mode != in.Mode || got.TargetTemperature != in.TargetTemperature ||
						got.FanMode != in.FanMode || got.SwingMode != in.SwingMode {
						t.Errorf("round trip %+v -> %+v", in, got)
					}
				}
			}
		}
	}
}

func TestFanPresetsRoundTrip(t *testing.T) {
	// Presets take over the horizontal vane, so only swing modes that leave
	// it alone survive.
	for _, fan := range []climate.FanMode{climate.FanMiddle, climate.FanFocus, climate.FanDiffuse} {
		for _, swing := range []climate.SwingMode{climate.SwingOff, climate.SwingVertical} {
			in := state(climate.ModeCool, 23, fan, swing)
			got, err := Decode(Encode(in))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.FanMode != fan || got.SwingMode != swing {
				t.Errorf("%s/%s decoded as %s/%s", fan, swing, got.FanMode, got.SwingMode)
			}
		}
	}

	got, _ := Decode(Encode(state(climate.ModeCool, 23, climate.FanFocus, climate.SwingBoth)))
	if got.FanMode != climate.FanFocus || got.SwingMode != climate.SwingVertical {
		t.Errorf("focus overriding horizontal swing decoded as %s/%s", got.FanMode, got.SwingMode)
	}
}

func TestDecodeOff(t *testing.T) {
	got, err := Decode(Encode(state(climate.ModeOff, 25, climate.FanLow, climate.SwingOff)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Mode != climate.ModeOff || got.TargetTemperature != 25 || got.FanMode != climate.FanLow {
		t.Errorf("Decode() = %+v", got)
	}
	if !math.IsNaN(got.CurrentTemperature) {
		t.Error("decoded current temperature should be unknown")
	}
}

func TestDecodeRemoteOnlyValues(t *testing.T) {
	f := Encode(state(climate.ModeCool, 24, climate.FanAuto, climate.SwingOff))
	set := func(i int, b byte) {
		f[i] = b
		f[i+1] = ^b
	}

	set(9, 0xF0|fan2)
	if got, _ := Decode(f); got.FanMode != climate.FanLow {
		t.Errorf("fan2 decoded as %s", got.FanMode)
	}
	set(9, 0xF0|fanHiPower)
	if got, _ := Decode(f); got.FanMode != climate.FanHigh {
		t.Errorf("hi-power decoded as %s", got.FanMode)
	}
	set(9, 0xF0|fanEcono)
	if got, _ := Decode(f); got.FanMode != climate.FanAuto {
		t.Errorf("econo decoded as %s", got.FanMode)
	}
	set(5, 0xF0|0x01)
	if got, _ := Decode(f); got.Mode != climate.ModeAuto {
		t.Errorf("unknown mode decoded as %s", got.Mode)
	}
}

func TestDecodeRejects(t *testing.T) {
	good := Encode(state(climate.ModeCool, 24, climate.FanAuto, climate.SwingOff))

	badPrefix := good
	badPrefix[2] = 0x00
	if _, err := Decode(badPrefix); !errors.Is(err, ErrBadPrefix) {
		t.Errorf("prefix error = %v", err)
	}

	for i := 6; i < FrameLen; i += 2 {
		bad := good
		bad[i] ^= 0x01
		if _, err := Decode(bad); !errors.Is(err, ErrBadInverse) {
			t.Errorf("byte %d: error = %v, want ErrBadInverse", i, err)
		}
	}
}

func TestModulate(t *testing.T) {
	f := Encode(state(climate.ModeCool, 24, climate.FanAuto, climate.SwingOff))
	data := Modulate(f)

	if data.CarrierFrequency != CarrierFrequency {
		t.Errorf("carrier = %d", data.CarrierFrequency)
	}
	if n := data.Len(); n != 2+FrameLen*8*2+1 {
		t.Errorf("Len() = %d, want %d", n, 2+FrameLen*8*2+1)
	}
	if err := data.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	// 0x52 LSB first: 0 1 0 0 1 0 1 0
	wantFirst := []int32{HeaderMark, -HeaderSpace, BitMark, -ZeroSpace, BitMark, -OneSpace, BitMark, -ZeroSpace}
	for i, w := range wantFirst {
		if data.Timings[i] != w {
			t.Errorf("Timings[%d] = %d, want %d", i, data.Timings[i], w)
		}
	}
	if last := data.Timings[data.Len()-1]; last != BitMark {
		t.Errorf("last item = %d, want trailing mark", last)
	}
}

func TestDemodulateRoundTrip(t *testing.T) {
	f := Encode(state(climate.ModeHeat, 21, climate.FanMedium, climate.SwingVertical))
	timings := Modulate(f).Timings

	// Stretch every item by 15%, inside the default tolerance.
	jittered := make([]int32, len(timings))
	for i, v := range timings {
		jittered[i] = v + v*15/100
	}

	for name, in := range map[string][]int32{"exact": timings, "jittered": jittered} {
		got, err := Demodulate(remote.NewReceiveData(in, 0))
		if err != nil {
			t.Fatalf("%s: Demodulate() error = %v", name, err)
		}
		if got != f {
			t.Errorf("%s: Demodulate() = %s, want %s", name, got, f)
		}
	}
}

func TestDemodulateErrors(t *testing.T) {
	timings := Modulate(Encode(state(climate.ModeCool, 24, climate.FanAuto, climate.SwingOff))).Timings

	if _, err := Demodulate(remote.NewReceiveData(timings[2:], 0)); !errors.Is(err, ErrBadHeader) {
		t.Errorf("missing header error = %v", err)
	}

	broken := append([]int32(nil), timings...)
	broken[11] = -800
	if _, err := Demodulate(remote.NewReceiveData(broken, 0)); !errors.Is(err, ErrBadBit) {
		t.Errorf("bad bit error = %v", err)
	}

	if _, err := Demodulate(remote.NewReceiveData(timings[:100], 0)); !errors.Is(err, ErrBadBit) {
		t.Errorf("truncated frame error = %v", err)
	}
}

func TestProtocol(t *testing.T) {
	in := state(climate.ModeDry, 27, climate.FanLow, climate.SwingHorizontal)
	data := Protocol{}.Transmit(in)

	got, ok := Protocol{}.Receive(remote.NewReceiveData(data.Timings, remote.DefaultTolerance))
	if !ok {
		t.Fatal("Receive() rejected own frame")
	}
	if got.Mode != in.Mode || got.TargetTemperature != 27 || got.FanMode != in.FanMode || got.SwingMode != in.SwingMode {
		t.Errorf("Receive() = %+v", got)
	}

	if _, ok := (Protocol{}).Receive(remote.NewReceiveData([]int32{9000, -4500}, 0)); ok {
		t.Error("Receive() accepted a foreign frame")
	}
}
