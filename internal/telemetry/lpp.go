// Package telemetry encodes and decodes Cayenne LPP sensor records: a flat
// sequence of (channel, type, payload) entries with fixed per-type payload sizes.
package telemetry

import "math"

// Type is a Cayenne LPP data type.
type Type uint8

const (
	TypeDigitalInput       Type = 0
	TypeDigitalOutput      Type = 1
	TypeAnalogInput        Type = 2
	TypeAnalogOutput       Type = 3
	TypeGenericSensor      Type = 100
	TypeLuminosity         Type = 101
	TypePresence           Type = 102
	TypeTemperature        Type = 103
	TypeRelativeHumidity   Type = 104
	TypeAccelerometer      Type = 113
	TypeBarometricPressure Type = 115
	TypeVoltage            Type = 116
	TypeCurrent            Type = 117
	TypeFrequency          Type = 118
	TypePercentage         Type = 120
	TypeAltitude           Type = 121
	TypeConcentration      Type = 125
	TypePower              Type = 128
	TypeDistance           Type = 130
	TypeEnergy             Type = 131
	TypeDirection          Type = 132
	TypeUnixTime           Type = 133
	TypeGyrometer          Type = 134
	TypeColour             Type = 135
	TypeGPS                Type = 136
	TypeSwitch             Type = 142
)

// ChannelSelf is the channel the node reports its own readings on.
const ChannelSelf uint8 = 1

const headerSize = 2

type layout struct {
	name   string
	width  int // bytes per value
	count  int // values per record
	scale  float64
	signed bool
}

func (l layout) size() int { return l.width * l.count }

//nolint:gochecknoglobals // immutable LPP type table.
var layouts = map[Type]layout{
	TypeDigitalInput:       {"digital_in", 1, 1, 1, false},
	TypeDigitalOutput:      {"digital_out", 1, 1, 1, false},
	TypeAnalogInput:        {"analog_in", 2, 1, 100, true},
	TypeAnalogOutput:       {"analog_out", 2, 1, 100, true},
	TypeGenericSensor:      {"generic", 4, 1, 1, false},
	TypeLuminosity:         {"luminosity", 2, 1, 1, false},
	TypePresence:           {"presence", 1, 1, 1, false},
	TypeTemperature:        {"temperature", 2, 1, 10, true},
	TypeRelativeHumidity:   {"humidity", 1, 1, 2, false},
	TypeAccelerometer:      {"accelerometer", 2, 3, 1000, true},
	TypeBarometricPressure: {"pressure", 2, 1, 10, false},
	TypeVoltage:            {"voltage", 2, 1, 100, false},
	TypeCurrent:            {"current", 2, 1, 1000, false},
	TypeFrequency:          {"frequency", 4, 1, 1, false},
	TypePercentage:         {"percentage", 1, 1, 1, false},
	TypeAltitude:           {"altitude", 2, 1, 1, true},
	TypeConcentration:      {"concentration", 2, 1, 1, false},
	TypePower:              {"power", 2, 1, 1, false},
	TypeDistance:           {"distance", 4, 1, 1000, false},
	TypeEnergy:             {"energy", 4, 1, 1000, false},
	TypeDirection:          {"direction", 2, 1, 1, false},
	TypeUnixTime:           {"unixtime", 4, 1, 1, false},
	TypeGyrometer:          {"gyrometer", 2, 3, 100, true},
	TypeColour:             {"colour", 1, 3, 1, false},
	TypeGPS:                {"gps", 3, 3, 10000, true},
	TypeSwitch:             {"switch", 1, 1, 1, false},
}

// Name returns the short label for t, or "unk" for types this package does not know.
func (t Type) Name() string {
	if l, ok := layouts[t]; ok {
		return l.name
	}
	return "unk"
}

// Size returns the payload size of t and whether t is known.
func (t Type) Size() (int, bool) {
	l, ok := layouts[t]
	return l.size(), ok
}

// ParseType looks a type up by its short label.
func ParseType(name string) (Type, bool) {
	for t, l := range layouts {
		if l.name == name {
			return t, true
		}
	}
	return 0, false
}

// Buffer accumulates records up to a fixed capacity.
type Buffer struct {
	buf []byte
	max int
}

// NewBuffer creates a buffer that holds at most capacity bytes.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity), max: capacity}
}

func (b *Buffer) Reset() { b.buf = b.buf[:0] }
func (b *Buffer) Bytes() []byte { return b.buf }
func (b *Buffer) Len() int { return len(b.buf) }

// Add appends a single-value record. It returns false when t is unknown,
// multi-valued, or the record would not fit.
func (b *Buffer) Add(channel uint8, t Type, v float64) bool {
	l, ok := layouts[t]
	if !ok || l.count != 1 {
		return false
	}
	return b.put(channel, t, l.width, []int64{scaled(v, l.scale)})
}

func (b *Buffer) AddVoltage(channel uint8, v float64) bool {
	return b.Add(channel, TypeVoltage, v)
}

func (b *Buffer) AddTemperature(channel uint8, v float64) bool {
	return b.Add(channel, TypeTemperature, v)
}

// AddGPS appends a location record: degrees with 4 decimals, altitude in metres with 2.
func (b *Buffer) AddGPS(channel uint8, lat, lon, alt float64) bool {
	return b.put(channel, TypeGPS, 3, []int64{
		scaled(lat, 10000),
		scaled(lon, 10000),
		scaled(alt, 100),
	})
}

func (b *Buffer) put(channel uint8, t Type, width int, values []int64) bool {
	need := headerSize + width*len(values)
	if len(b.buf)+need > b.max {
		return false
	}
	b.buf = append(b.buf, channel, byte(t))
	for _, v := range values {
		for i := width - 1; i >= 0; i-- {
			b.buf = append(b.buf, byte(v>>(8*uint(i))))
		}
	}
	return true
}

func scaled(v, scale float64) int64 {
	return int64(math.Round(v * scale))
}

// Reader walks a record sequence: ReadHeader, then either a typed read or SkipData.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Reset rewinds to the first record.
func (r *Reader) Reset() { r.pos = 0 }

// ReadHeader returns the next record's channel and type.
func (r *Reader) ReadHeader() (uint8, Type, bool) {
	if r.pos+headerSize > len(r.buf) {
		return 0, 0, false
	}
	ch, t := r.buf[r.pos], Type(r.buf[r.pos+1])
	r.pos += headerSize
	return ch, t, true
}

// SkipData moves past the payload of t. Unknown types cannot be skipped, so
// the reader is exhausted instead.
func (r *Reader) SkipData(t Type) bool {
	size, ok := t.Size()
	if !ok || r.pos+size > len(r.buf) {
		r.pos = len(r.buf)
		return false
	}
	r.pos += size
	return true
}

// ReadValue decodes the payload of t. Multi-axis types report their first axis;
// use ReadGPS for locations.
func (r *Reader) ReadValue(t Type) (float64, bool) {
	l, ok := layouts[t]
	if !ok || t == TypeGPS || r.pos+l.size() > len(r.buf) {
		r.pos = len(r.buf)
		return 0, false
	}
	raw := r.intAt(r.pos, l.width, l.signed)
	r.pos += l.size()
	return float64(raw) / l.scale, true
}

// ReadGPS decodes a location payload.
func (r *Reader) ReadGPS() (lat, lon, alt float64, ok bool) {
	if r.pos+9 > len(r.buf) {
		r.pos = len(r.buf)
		return 0, 0, 0, false
	}
	lat = float64(r.intAt(r.pos, 3, true)) / 10000
	lon = float64(r.intAt(r.pos+3, 3, true)) / 10000
	alt = float64(r.intAt(r.pos+6, 3, true)) / 100
	r.pos += 9
	return lat, lon, alt, true
}

func (r *Reader) intAt(pos, width int, signed bool) int64 {
	var v int64
	for i := 0; i < width; i++ {
		v = v<<8 | int64(r.buf[pos+i])
	}
	if signed && v&(1<<(8*uint(width)-1)) != 0 {
		v -= 1 << (8 * uint(width))
	}
	return v
}
