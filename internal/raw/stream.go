// Package raw implements the primitive stream decoder and scan-reconstruction
// engine for the Finnigan RAW container format: a self-describing, versioned,
// little-endian binary file produced by Thermo-family mass spectrometers.
package raw

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Kind identifies a primitive or composite field type understood by the
// stream decoder.
type Kind int

const (
	KindUint32 Kind = iota
	KindUint16
	KindInt32
	KindInt16
	KindFloat32
	KindFloat64
	KindASCIIString
	KindUTF16String
	// KindObject invokes a named sub-decoder once, per the field's Sub spec.
	KindObject
	// KindObjectArray consumes the UInt32 field immediately preceding it as a
	// count and decodes that many instances of Sub in sequence.
	KindObjectArray
	// KindFloat64Array consumes the UInt32 field immediately preceding it as a
	// count and reads that many raw 64-bit floats (used for calibration
	// coefficient lists, which are plain repeated primitives rather than
	// sub-records).
	KindFloat64Array
	// KindFloat32Array is the 32-bit analogue, used for profile chunk
	// intensity bins (§6: "Profile chunks pack intensities as 32-bit
	// floats").
	KindFloat32Array
)

// FieldSpec is one entry in a declarative field template: a name, a type
// code, and a human label. Object and ObjectArray fields carry a Sub record
// template describing the nested decode.
type FieldSpec struct {
	Name  string
	Kind  Kind
	Label string
	Sub   *RecordSpec
}

// RecordSpec is an ordered list of field templates, optionally keyed by
// (record, version) in versions.go.
type RecordSpec struct {
	Name   string
	Fields []FieldSpec
}

// Field is one decoded value together with its absolute offset and byte
// size in the source stream.
type Field struct {
	Name   string
	Offset int64
	Size   int
	Value  any
}

// Record is a decoded instance of a RecordSpec: an ordered field list keyed
// by name for convenient lookup.
type Record struct {
	Name   string
	Offset int64
	Fields []Field

	index map[string]int
}

func (r *Record) append(f Field) {
	if r.index == nil {
		r.index = make(map[string]int, 8)
	}
	r.index[f.Name] = len(r.Fields)
	r.Fields = append(r.Fields, f)
}

func (r Record) field(name string) (Field, bool) {
	i, ok := r.index[name]
	if !ok {
		return Field{}, false
	}
	return r.Fields[i], true
}

// Has reports whether the record carries a field of the given name.
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

func (r Record) Uint32(name string) uint32 {
	f, _ := r.field(name)
	v, _ := f.Value.(uint32)
	return v
}

func (r Record) Uint16(name string) uint16 {
	f, _ := r.field(name)
	v, _ := f.Value.(uint16)
	return v
}

func (r Record) Int32(name string) int32 {
	f, _ := r.field(name)
	v, _ := f.Value.(int32)
	return v
}

func (r Record) Int16(name string) int16 {
	f, _ := r.field(name)
	v, _ := f.Value.(int16)
	return v
}

func (r Record) Float32(name string) float32 {
	f, _ := r.field(name)
	v, _ := f.Value.(float32)
	return v
}

func (r Record) Float64(name string) float64 {
	f, _ := r.field(name)
	v, _ := f.Value.(float64)
	return v
}

func (r Record) String(name string) string {
	f, _ := r.field(name)
	v, _ := f.Value.(string)
	return v
}

// Object returns the decoded sub-record for a KindObject field.
func (r Record) Object(name string) Record {
	f, _ := r.field(name)
	v, _ := f.Value.(Record)
	return v
}

// Objects returns the decoded sub-record sequence for a KindObjectArray field.
func (r Record) Objects(name string) []Record {
	f, _ := r.field(name)
	v, _ := f.Value.([]Record)
	return v
}

// Float64Slice returns the decoded values for a KindFloat64Array field.
func (r Record) Float64Slice(name string) []float64 {
	f, _ := r.field(name)
	v, _ := f.Value.([]float64)
	return v
}

// Float32Slice returns the decoded values for a KindFloat32Array field.
func (r Record) Float32Slice(name string) []float32 {
	f, _ := r.field(name)
	v, _ := f.Value.([]float32)
	return v
}

// FieldOffset returns the absolute offset a named field was read from.
func (r Record) FieldOffset(name string) int64 {
	f, _ := r.field(name)
	return f.Offset
}

// StreamDecoder is a byte-accurate parser combinator over a seekable input,
// driven by declarative field templates (RecordSpec). It tracks the current
// absolute position so every decoded field can report where it came from.
type StreamDecoder struct {
	r   io.ReadSeeker
	pos int64
}

// NewStreamDecoder wraps a seekable byte source, starting at its current
// position.
func NewStreamDecoder(r io.ReadSeeker) (*StreamDecoder, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, &IoError{Err: err}
	}
	return &StreamDecoder{r: r, pos: pos}, nil
}

// Pos reports the decoder's current absolute offset.
func (d *StreamDecoder) Pos() int64 { return d.pos }

// SeekTo repositions the decoder to an absolute offset.
func (d *StreamDecoder) SeekTo(offset int64) error {
	p, err := d.r.Seek(offset, io.SeekStart)
	if err != nil {
		return &IoError{Offset: offset, Err: err}
	}
	d.pos = p
	return nil
}

func (d *StreamDecoder) readBytes(n int, field string) ([]byte, error) {
	if n < 0 {
		return nil, &FormatError{Field: field, Offset: d.pos, Reason: "negative length"}
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(d.r, buf)
	if err != nil {
		return nil, &IoError{Offset: d.pos, Field: field, Err: err}
	}
	d.pos += int64(read)
	return buf, nil
}

type numeric interface {
	constraints.Integer | constraints.Float
}

// readNumeric reads a fixed-size little-endian primitive of type T,
// returning its value and the absolute offset it was read from.
func readNumeric[T numeric](d *StreamDecoder, field string) (T, int64, error) {
	var v T
	size := binary.Size(v)
	offset := d.pos
	buf, err := d.readBytes(size, field)
	if err != nil {
		return v, offset, err
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &v); err != nil {
		return v, offset, &FormatError{Field: field, Offset: offset, Reason: err.Error()}
	}
	return v, offset, nil
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeUTF16LE decodes a UTF-16LE byte slice to a string, stripping
// embedded NUL runes per §4.1/§6.
func decodeUTF16LE(b []byte) (string, error) {
	out, _, err := transform.Bytes(utf16LE.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, string(out)), nil
}

// readASCIIString reads a 32-bit length prefix followed by that many ASCII
// bytes.
func (d *StreamDecoder) readASCIIString(field string) (string, int64, int, error) {
	offset := d.pos
	n, _, err := readNumeric[uint32](d, field+".length")
	if err != nil {
		return "", offset, 0, err
	}
	buf, err := d.readBytes(int(n), field)
	if err != nil {
		return "", offset, 0, err
	}
	return string(buf), offset, 4 + int(n), nil
}

// readUTF16String reads a 32-bit character-count prefix followed by 2*n
// bytes of UTF-16LE, NUL-stripped per §4.1/§6.
func (d *StreamDecoder) readUTF16String(field string) (string, int64, int, error) {
	offset := d.pos
	n, _, err := readNumeric[uint32](d, field+".length")
	if err != nil {
		return "", offset, 0, err
	}
	buf, err := d.readBytes(2*int(n), field)
	if err != nil {
		return "", offset, 0, err
	}
	s, err := decodeUTF16LE(buf)
	if err != nil {
		return "", offset, 0, &FormatError{Field: field, Offset: offset, Reason: err.Error()}
	}
	return s, offset, 4 + 2*int(n), nil
}

// Decode reads one instance of spec sequentially from the decoder's current
// position (the "positional read" mode of §4.1). KindObjectArray fields
// consume the UInt32 field immediately preceding them as their repeat count
// (the "iterate-object" mode); any other field in between is a FormatError.
func (d *StreamDecoder) Decode(spec RecordSpec) (Record, error) {
	rec := Record{Name: spec.Name, Offset: d.pos}
	var lastCount uint32
	haveCount := false

	for _, f := range spec.Fields {
		switch f.Kind {
		case KindUint32:
			v, off, err := readNumeric[uint32](d, f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: 4, Value: v})
			lastCount, haveCount = v, true
			continue
		case KindUint16:
			v, off, err := readNumeric[uint16](d, f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: 2, Value: v})
		case KindInt32:
			v, off, err := readNumeric[int32](d, f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: 4, Value: v})
		case KindInt16:
			v, off, err := readNumeric[int16](d, f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: 2, Value: v})
		case KindFloat32:
			v, off, err := readNumeric[float32](d, f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: 4, Value: v})
		case KindFloat64:
			v, off, err := readNumeric[float64](d, f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: 8, Value: v})
		case KindASCIIString:
			s, off, size, err := d.readASCIIString(f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: size, Value: s})
		case KindUTF16String:
			s, off, size, err := d.readUTF16String(f.Name)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: size, Value: s})
		case KindObject:
			if f.Sub == nil {
				return Record{}, &FormatError{Field: f.Name, Offset: d.pos, Reason: "object field missing sub-template"}
			}
			off := d.pos
			sub, err := d.Decode(*f.Sub)
			if err != nil {
				return Record{}, err
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: int(d.pos - off), Value: sub})
		case KindObjectArray:
			if f.Sub == nil {
				return Record{}, &FormatError{Field: f.Name, Offset: d.pos, Reason: "object array field missing sub-template"}
			}
			if !haveCount {
				return Record{}, &FormatError{Field: f.Name, Offset: d.pos, Reason: "object array with no preceding count field"}
			}
			off := d.pos
			items := make([]Record, 0, lastCount)
			for i := uint32(0); i < lastCount; i++ {
				sub, err := d.Decode(*f.Sub)
				if err != nil {
					return Record{}, err
				}
				items = append(items, sub)
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: int(d.pos - off), Value: items})
		case KindFloat64Array:
			if !haveCount {
				return Record{}, &FormatError{Field: f.Name, Offset: d.pos, Reason: "float array with no preceding count field"}
			}
			off := d.pos
			vals := make([]float64, 0, lastCount)
			for i := uint32(0); i < lastCount; i++ {
				v, _, err := readNumeric[float64](d, f.Name)
				if err != nil {
					return Record{}, err
				}
				vals = append(vals, v)
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: int(d.pos - off), Value: vals})
		case KindFloat32Array:
			if !haveCount {
				return Record{}, &FormatError{Field: f.Name, Offset: d.pos, Reason: "float array with no preceding count field"}
			}
			off := d.pos
			vals := make([]float32, 0, lastCount)
			for i := uint32(0); i < lastCount; i++ {
				v, _, err := readNumeric[float32](d, f.Name)
				if err != nil {
					return Record{}, err
				}
				vals = append(vals, v)
			}
			rec.append(Field{Name: f.Name, Offset: off, Size: int(d.pos - off), Value: vals})
		default:
			return Record{}, &FormatError{Field: f.Name, Offset: d.pos, Reason: "unknown field kind"}
		}
		haveCount = false
	}
	return rec, nil
}
