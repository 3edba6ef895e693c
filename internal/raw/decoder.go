package raw

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Options configures a decode session. Zero value is valid: bookend width
// and peak tolerance fall back to their §4.5/§4.6 defaults.
type Options struct {
	// BookendWidth overrides DefaultBookendWidth (§4.5).
	BookendWidth int
	// PeakTolerance overrides DefaultPeakTolerance (§4.6).
	PeakTolerance float64
	// PreferCentroids requests centroids over profile bins when both are
	// present (§4.4). If centroids are requested but absent, rendering
	// falls back to the profile. Ignored when ProfileOnly is set.
	PreferCentroids bool
	// ProfileOnly requests profile bins strictly: centroids are never
	// substituted, and a scan with no profile section fails with
	// NoProfileError (§4.4, §7 "NoProfile — profile-only mode requested
	// but scan has none").
	ProfileOnly bool
	// ErrorLog receives each instrument error-log entry as it is decoded
	// at Open (§4.3, §7, §8 scenario 6).
	ErrorLog ErrorLogCallback
}

// Decoder is the top-level entry point described in §6: Open performs the
// header-chain traversal (§4.2) and the full index-table decode (§4.3)
// eagerly; Scans then serves ranges against the already-populated tables,
// rendering each scan's peaks lazily on request.
type Decoder struct {
	SessionID string

	opts   Options
	file   *os.File
	stream *StreamDecoder
	chain  *headerChain

	index   *scanIndex
	events  map[int]scanEvent
	charges map[int]*int32

	// streamMu serializes access to the shared seekable stream (§5): the
	// core is single-threaded by design, but RenderParallel (concurrent.go)
	// allows post-decode rendering from multiple goroutines guarded by
	// this mutex rather than giving each one a cloned file descriptor.
	streamMu sync.Mutex
	parent   *ParentScan
}

// Open opens path, decodes its header chain and the full set of index
// tables for [first_scan, last_scan], and returns a ready Decoder.
func Open(path string, opts Options) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Err: err}
	}

	stream, err := NewStreamDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	chain, err := decodeHeaderChain(stream)
	if err != nil {
		f.Close()
		return nil, err
	}

	d := &Decoder{
		SessionID: uuid.NewString(),
		opts:      opts,
		file:      f,
		stream:    stream,
		chain:     chain,
	}

	if err := d.loadIndexTables(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// Close releases the underlying file descriptor. The decoder must not be
// used afterward (§5 "released deterministically when the decoder is
// dropped/closed").
func (d *Decoder) Close() error {
	return d.file.Close()
}

// Version returns the file's schema version, learned from FileHeader.
func (d *Decoder) Version() int { return d.chain.Version }

// ScanRange returns the file's [first_scan, last_scan], inclusive, 1-based.
func (d *Decoder) ScanRange() (first, last int) {
	return d.chain.FirstScan, d.chain.LastScan
}

func (d *Decoder) loadIndexTables() error {
	first, last := d.chain.FirstScan, d.chain.LastScan

	index, err := loadScanIndex(d.stream, d.chain.ScanIndexAddr, first, last)
	if err != nil {
		return err
	}
	if err := index.LoadRange(d.stream, first, last); err != nil {
		return err
	}
	d.index = index

	events, err := loadTrailer(d.stream, d.chain.TrailerAddr, d.chain.Version, first, last)
	if err != nil {
		return err
	}
	d.events = events

	if err := loadErrorLog(d.stream, d.chain.ErrorLogAddr, d.opts.ErrorLog); err != nil {
		return err
	}
	if err := skipHierarchy(d.stream); err != nil {
		return err
	}

	charges, err := decodeParameters(d.stream, d.chain.ParamsAddr, first, last, first, last)
	if err != nil {
		return err
	}
	d.charges = charges
	return nil
}

// ScanHandle is one scan pulled from a ScanIterator: its metadata is
// already populated; its peaks are rendered lazily on request (§6).
type ScanHandle struct {
	d        *Decoder
	num      int
	metadata ScanMetadata
}

func (h *ScanHandle) Metadata() ScanMetadata { return h.metadata }

// Peaks renders this scan's (m/z, intensity) sequence, selecting centroids
// or profile bins per §4.4, and — if this scan is a non-dependent MS¹ —
// updates the decoder's parent-scan slot for subsequent PrecursorIntensity
// lookups (§4.6, §9).
func (h *ScanHandle) Peaks() ([]Peak, error) {
	return h.d.renderScan(h.num)
}

func (d *Decoder) renderScan(num int) ([]Peak, error) {
	d.streamMu.Lock()
	defer d.streamMu.Unlock()

	entry, ok := d.index.Get(num)
	if !ok {
		return nil, &RangeError{Reason: fmt.Sprintf("scan %d not present in loaded index", num)}
	}
	ev, ok := d.events[num]
	if !ok {
		return nil, &RangeError{Reason: fmt.Sprintf("scan %d not present in loaded trailer", num)}
	}

	scan, err := decodeScan(d.stream, num, d.chain.DataAddr, entry, ev.Calibration)
	if err != nil {
		return nil, err
	}

	// Per §4.4: ProfileOnly never substitutes centroids and is the sole
	// source of NoProfileError. PreferCentroids falls back to the profile
	// when centroids are requested but absent. A scan with neither section
	// (profile_size == 0 ∧ peak_list_size == 0) is a valid empty result
	// (§8 testable property 1), not an error.
	var peaks []Peak
	switch {
	case d.opts.ProfileOnly:
		if scan.Profile == nil {
			return nil, &NoProfileError{Scan: num}
		}
		peaks = scan.Profile.Render(d.opts.BookendWidth)
	case d.opts.PreferCentroids && len(scan.Centroids) > 0:
		peaks = scan.Centroids
	case scan.Profile != nil:
		peaks = scan.Profile.Render(d.opts.BookendWidth)
	case len(scan.Centroids) > 0:
		peaks = scan.Centroids
	}

	if !ev.Dependent {
		d.parent = &ParentScan{Num: num, Peaks: peaks}
	}
	return peaks, nil
}

// ParentScan returns the most recently read non-dependent MS¹ scan's
// rendered peaks, or nil if none has been read yet (§9).
func (d *Decoder) ParentScan() *ParentScan { return d.parent }

// PrecursorIntensity looks up the intensity of the given precursor m/z
// within the current parent scan's peaks, per §4.6. Returns 0 if there is
// no parent scan yet or nothing falls within tolerance.
func (d *Decoder) PrecursorIntensity(precursorMz float64) float32 {
	if d.parent == nil {
		return 0
	}
	return FindPeakIntensity(d.parent.Peaks, precursorMz, d.opts.PeakTolerance)
}

// ScanIterator yields ScanHandles in ascending scan-number order (§6).
type ScanIterator struct {
	d    *Decoder
	nums []int
	pos  int
}

// Next returns the next scan handle, or ok=false when exhausted.
func (it *ScanIterator) Next() (handle *ScanHandle, ok bool) {
	if it.pos >= len(it.nums) {
		return nil, false
	}
	n := it.nums[it.pos]
	it.pos++

	ev := it.d.events[n]
	entry, _ := it.d.index.Get(n)
	return &ScanHandle{d: it.d, num: n, metadata: it.d.metadataFor(n, ev, entry)}, true
}

func (d *Decoder) metadataFor(num int, ev scanEvent, entry scanIndexEntry) ScanMetadata {
	meta := ScanMetadata{
		Num:                  num,
		MSLevel:              ev.MSPower,
		Polarity:             ev.Polarity,
		ScanType:             ev.ScanType,
		FilterLine:           ev.FilterLine,
		RetentionTimeSeconds: entry.StartTime,
		LowMz:                entry.LowMz,
		HighMz:               entry.HighMz,
		BasePeakMz:           entry.BaseMz,
		BasePeakIntensity:    entry.BaseIntensity,
		TotalIonCurrent:      entry.TotalCurrent,
	}
	if c, ok := d.charges[num]; ok {
		meta.ChargeState = c
	}
	if ev.Reaction != nil {
		precursor := ev.Reaction.Precursor
		energy := ev.Reaction.Energy
		meta.PrecursorMz = &precursor
		meta.CollisionEnergy = &energy
		meta.ActivationMethod = ev.Reaction.ActivationMethod
		intensity := d.PrecursorIntensity(precursor)
		meta.PrecursorIntensity = &intensity
	}
	return meta
}

// Scans returns an iterator over scans [from, to] (1-based, inclusive),
// validated against the loaded range and the dependent-start rule (§4.3,
// §7 RangeError, §8 scenario 2).
func (d *Decoder) Scans(from, to int) (*ScanIterator, error) {
	if from > to {
		return nil, &RangeError{Reason: fmt.Sprintf("from %d > to %d", from, to)}
	}
	if from < d.chain.FirstScan || to > d.chain.LastScan {
		return nil, &RangeError{Reason: fmt.Sprintf("range [%d,%d] exceeds file range [%d,%d]", from, to, d.chain.FirstScan, d.chain.LastScan)}
	}
	firstEv, ok := d.events[from]
	if !ok {
		return nil, &RangeError{Reason: fmt.Sprintf("no trailer event loaded for scan %d", from)}
	}
	if firstEv.Dependent {
		return nil, &RangeError{Reason: fmt.Sprintf("cannot form valid output starting with dependent scan %d", from)}
	}

	nums := make([]int, 0, to-from+1)
	for n := from; n <= to; n++ {
		nums = append(nums, n)
	}
	return &ScanIterator{d: d, nums: nums}, nil
}
