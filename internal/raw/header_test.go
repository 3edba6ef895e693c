package raw

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeRunHeaderAtIsIdempotent(t *testing.T) {
	// §8: decoding RunHeader, then seeking back to run_header_addr and
	// decoding again, must yield byte-identical field values.
	b := new(builder)
	b.u32(0).u32(0) // padding so addr != 0
	addr := int64(b.len())
	b.u32(1).u32(5).f64(123.0) // sample_info
	// data_addr, scan_index_addr, trailer_addr, params_addr, error_log_addr, ntrailer
	b.u32(0x8000).u32(0x3000).u32(0x4000).u32(0x6000).u32(0x5000).u32(7)

	spec := runHeaderSpecs[57]

	dec, err := NewStreamDecoder(bytes.NewReader(b.bytes()))
	if err != nil {
		t.Fatalf("NewStreamDecoder: %v", err)
	}

	first, end1, err := decodeRunHeaderAt(dec, addr, spec)
	if err != nil {
		t.Fatalf("first decodeRunHeaderAt: %v", err)
	}
	second, end2, err := decodeRunHeaderAt(dec, addr, spec)
	if err != nil {
		t.Fatalf("second decodeRunHeaderAt: %v", err)
	}
	if end1 != end2 {
		t.Errorf("end offset changed between decodes: %d != %d", end1, end2)
	}

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(Record{})); diff != "" {
		t.Errorf("RunHeader decode is not idempotent (-first +second):\n%s", diff)
	}
}
