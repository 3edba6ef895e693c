package raw

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testRunHeader0Addr = 0x1000
	testRunHeader1Addr = 0x2000
	testScanIndexAddr  = 0x3000
	testTrailerAddr    = 0x4000
	testErrorLogAddr   = 0x5000
	testParamsAddr     = 0x6000
	testDataAddr       = 0x8000
)

// buildSyntheticFile assembles a minimal, internally consistent schema-57
// file exercising §8 scenarios 1 (dual RunHeader selection), 2 (dependent
// range start), and 6 (error-log callback), in the manner of ch10gate's
// hand-built parser_test.go fixtures.
func buildSyntheticFile(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, 0x9000)

	fm := new(builder)
	fm.ascii("FRAW").u32(57)
	fm.utf16("Sample1").ascii("A1").f64(5.0).utf16("test")
	fm.utf16("AS").utf16("M1").utf16("1.0")
	fm.u32(testRunHeader0Addr).u32(testRunHeader1Addr).ascii("2024-01-01")
	fm.utf16("synthetic file")
	copy(buf, fm.bytes())

	rh0 := new(builder)
	rh0.u32(1).u32(5).f64(0)
	rh0.u32(testDataAddr).u32(testScanIndexAddr).u32(testTrailerAddr).u32(testParamsAddr).u32(testErrorLogAddr).u32(0)
	copy(buf[testRunHeader0Addr:], rh0.bytes())

	rh1 := new(builder)
	rh1.u32(1).u32(5).f64(0)
	rh1.u32(testDataAddr).u32(testScanIndexAddr).u32(testTrailerAddr).u32(testParamsAddr).u32(testErrorLogAddr).u32(5)
	copy(buf[testRunHeader1Addr:], rh1.bytes())
	instIDOffset := testRunHeader1Addr + rh1.len()

	inst := new(builder)
	inst.utf16("InstrumentX").utf16("SN123").utf16("v1.0")
	copy(buf[instIDOffset:], inst.bytes())

	idx := new(builder)
	for n := 0; n < 5; n++ {
		idx.u32(0).f64(float64(n)).f64(100).f64(200).f64(150).f32(1000).f64(5000)
	}
	copy(buf[testScanIndexAddr:], idx.bytes())

	tr := new(builder)
	tr.u32(5)
	dependentFlags := []uint16{0, 0, 1, 0, 0}
	for i := 0; i < 5; i++ {
		tr.u16(1).u16(dependentFlags[i]).u16(0).u16(0).u16(0).u16(0).u16(0)
		tr.u16(uint16(CalibIdentity))
		tr.u32(0) // coeff_count
		tr.ascii("filter")
		tr.f64(0).f64(0).ascii("") // reaction
	}
	copy(buf[testTrailerAddr:], tr.bytes())

	el := new(builder)
	el.u32(1)
	el.f64(1.23).utf16("foo")
	elEnd := testErrorLogAddr + el.len()
	copy(buf[testErrorLogAddr:], el.bytes())

	hier := new(builder)
	hier.u32(0)
	copy(buf[elEnd:], hier.bytes())
	hierEnd := elEnd + hier.len()

	gdh := new(builder)
	gdh.u32(1)
	gdh.ascii("charge_state").u16(ParamTypeInt32).ascii("Charge State")
	copy(buf[hierEnd:], gdh.bytes())

	params := new(builder)
	for _, c := range []int32{2, 2, 3, 0, 1} {
		params.i32(c)
	}
	copy(buf[testParamsAddr:], params.bytes())

	return buf
}

func openSyntheticFile(t *testing.T, opts Options) *Decoder {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "synthetic-*.raw")
	require.NoError(t, err)
	_, err = f.Write(buildSyntheticFile(t))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	dec, err := Open(f.Name(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { dec.Close() })
	return dec
}

func TestOpenSelectsAuthoritativeRunHeader(t *testing.T) {
	// §8 scenario 1: two RunHeaders with ntrailer=(0,5); the decoder must
	// select the second and load last_scan-first_scan+1 = 5 index entries.
	dec := openSyntheticFile(t, Options{})
	require.Equal(t, 57, dec.Version())

	first, last := dec.ScanRange()
	require.Equal(t, 1, first)
	require.Equal(t, 5, last)
	require.Len(t, dec.index.entries, 5)
}

func TestScansRangeErrorOnDependentStart(t *testing.T) {
	// §8 scenario 2: range [3,5] starts on a dependent scan.
	dec := openSyntheticFile(t, Options{})
	_, err := dec.Scans(3, 5)
	require.Error(t, err)
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestScansValidRangeSucceeds(t *testing.T) {
	dec := openSyntheticFile(t, Options{})
	it, err := dec.Scans(1, 2)
	require.NoError(t, err)

	var nums []int
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		nums = append(nums, h.Metadata().Num)
	}
	require.Equal(t, []int{1, 2}, nums)
}

func TestChargeStateExtractedFromParameters(t *testing.T) {
	dec := openSyntheticFile(t, Options{})
	it, err := dec.Scans(1, 1)
	require.NoError(t, err)
	h, ok := it.Next()
	require.True(t, ok)
	require.NotNil(t, h.Metadata().ChargeState)
	require.Equal(t, int32(2), *h.Metadata().ChargeState)
}

func TestPeaksEmptyWhenNeitherSectionPresent(t *testing.T) {
	// §8 testable property 1: profile_size == 0 ∧ peak_list_size == 0 is a
	// valid state yielding an empty sequence, not NoProfileError.
	dec := openSyntheticFile(t, Options{})
	it, err := dec.Scans(1, 1)
	require.NoError(t, err)
	h, ok := it.Next()
	require.True(t, ok)

	peaks, err := h.Peaks()
	require.NoError(t, err)
	require.Empty(t, peaks)
}

func TestPeaksProfileOnlyFailsWhenProfileAbsent(t *testing.T) {
	// §4.4/§7: profile-only mode requested but scan has none is fatal to
	// that scan.
	dec := openSyntheticFile(t, Options{ProfileOnly: true})
	it, err := dec.Scans(1, 1)
	require.NoError(t, err)
	h, ok := it.Next()
	require.True(t, ok)

	_, err = h.Peaks()
	require.Error(t, err)
	var noProfile *NoProfileError
	require.ErrorAs(t, err, &noProfile)
}

func TestErrorLogCallbackInvokedExactlyOnce(t *testing.T) {
	// §8 scenario 6: one error-log entry, suppression callback returning
	// false; callback invoked exactly once and decode continues.
	var calls []InstrumentError
	dec := openSyntheticFile(t, Options{
		ErrorLog: func(entry InstrumentError) bool {
			calls = append(calls, entry)
			return false
		},
	})
	_ = dec

	require.Len(t, calls, 1)
	require.InDelta(t, 1.23, calls[0].Time, 1e-9)
	require.Equal(t, "foo", calls[0].Message)
}
