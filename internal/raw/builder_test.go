package raw

import (
	"bytes"
	"encoding/binary"
)

// builder assembles little-endian synthetic fixtures matching the field
// templates in versions.go, byte for byte, in the style of ch10gate's
// hand-rolled parser_test.go fixtures.
type builder struct {
	buf bytes.Buffer
}

func (b *builder) u32(v uint32) *builder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *builder) i32(v int32) *builder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *builder) f32(v float32) *builder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *builder) f64(v float64) *builder {
	binary.Write(&b.buf, binary.LittleEndian, v)
	return b
}

func (b *builder) ascii(s string) *builder {
	b.u32(uint32(len(s)))
	b.buf.WriteString(s)
	return b
}

func (b *builder) utf16(s string) *builder {
	runes := []rune(s)
	b.u32(uint32(len(runes)))
	for _, r := range runes {
		b.u16(uint16(r))
	}
	return b
}

// f32s/f64s write raw values with no length prefix: the count-driven array
// fields in versions.go (KindFloat32Array/KindFloat64Array) consume the
// count from a separate, already-written preceding UInt32 field.
func (b *builder) f32s(vals []float32) *builder {
	for _, v := range vals {
		b.f32(v)
	}
	return b
}

func (b *builder) f64s(vals []float64) *builder {
	for _, v := range vals {
		b.f64(v)
	}
	return b
}

func (b *builder) bytes() []byte { return b.buf.Bytes() }

func (b *builder) len() int { return b.buf.Len() }
