package raw

import "fmt"

// ErrorLogCallback receives each instrument error log entry as it is read
// from the file's own error log (§4.3, §7 InstrumentError, §8 scenario 6).
// It never aborts the decode. Its return value reports whether the caller
// suppressed the entry; the decoder does not act on it and passes every
// entry to the callback.
type ErrorLogCallback func(entry InstrumentError) (suppress bool)

var countSpec = RecordSpec{Name: "Count", Fields: []FieldSpec{{Name: "count", Kind: KindUint32}}}

// scanIndex is the in-memory table of per-scan directory entries loaded
// from the ScanIndex region (§3, §4.3). The assumption that entries are
// physically sequential (rather than following stored link fields) is
// documented, not verified, per §9.
type scanIndex struct {
	addr       int64
	recordSize int
	firstScan  int
	lastScan   int
	entries    map[int]scanIndexEntry // keyed by 1-based scan number
}

// loadScanIndex probes a single entry at addr to learn its byte size, then
// returns a table ready to have ranges loaded into it.
func loadScanIndex(dec *StreamDecoder, addr int64, firstScan, lastScan int) (*scanIndex, error) {
	if err := dec.SeekTo(addr); err != nil {
		return nil, err
	}
	before := dec.Pos()
	if _, err := dec.Decode(scanIndexEntrySpec); err != nil {
		return nil, err
	}
	recordSize := int(dec.Pos() - before)
	return &scanIndex{
		addr:       addr,
		recordSize: recordSize,
		firstScan:  firstScan,
		lastScan:   lastScan,
		entries:    make(map[int]scanIndexEntry),
	}, nil
}

// LoadRange decodes entries for 1-based scan numbers [from, to], clamped to
// [firstScan, lastScan] (§4.3).
func (si *scanIndex) LoadRange(dec *StreamDecoder, from, to int) error {
	if from < si.firstScan {
		from = si.firstScan
	}
	if to > si.lastScan {
		to = si.lastScan
	}
	if from > to {
		return &RangeError{Reason: fmt.Sprintf("scan range [%d,%d] is empty after clamping to [%d,%d]", from, to, si.firstScan, si.lastScan)}
	}
	offset := si.addr + int64(from-si.firstScan)*int64(si.recordSize)
	if err := dec.SeekTo(offset); err != nil {
		return err
	}
	for n := from; n <= to; n++ {
		rec, err := dec.Decode(scanIndexEntrySpec)
		if err != nil {
			return err
		}
		si.entries[n] = scanIndexEntryFromRecord(rec)
	}
	return nil
}

func (si *scanIndex) Get(scanNum int) (scanIndexEntry, bool) {
	e, ok := si.entries[scanNum]
	return e, ok
}

// loadTrailer reads the UInt32 count at trailerAddr, then that many
// ScanEvent records sequentially, retaining scan numbers >= from and
// stopping once scan number == to (§4.3). The first retained event must
// not be dependent.
func loadTrailer(dec *StreamDecoder, trailerAddr int64, version, from, to int) (map[int]scanEvent, error) {
	if err := dec.SeekTo(trailerAddr); err != nil {
		return nil, err
	}
	countRec, err := dec.Decode(countSpec)
	if err != nil {
		return nil, err
	}
	count := countRec.Uint32("count")

	evSpec, err := specFor(scanEventSpecs, version)
	if err != nil {
		return nil, err
	}

	events := make(map[int]scanEvent)
	firstRetained := true
	for n := 1; n <= int(count); n++ {
		rec, err := dec.Decode(evSpec)
		if err != nil {
			return nil, err
		}
		if n < from {
			continue
		}
		ev := scanEventFromRecord(n, rec)
		if firstRetained {
			if ev.Dependent {
				return nil, &RangeError{Reason: fmt.Sprintf("cannot form valid output starting with dependent scan %d", n)}
			}
			firstRetained = false
		}
		events[n] = ev
		if n == to {
			break
		}
	}
	return events, nil
}

// loadErrorLog reads the UInt32-counted list of (time, message) entries and
// surfaces each through cb (§4.3). Never returns an error derived from the
// log's contents: the log is informational, per the InstrumentError
// taxonomy entry in §7.
func loadErrorLog(dec *StreamDecoder, addr int64, cb ErrorLogCallback) error {
	if err := dec.SeekTo(addr); err != nil {
		return err
	}
	countRec, err := dec.Decode(countSpec)
	if err != nil {
		return err
	}
	count := countRec.Uint32("count")
	for i := uint32(0); i < count; i++ {
		rec, err := dec.Decode(errorLogEntrySpec)
		if err != nil {
			return err
		}
		if cb != nil {
			cb(InstrumentError{Time: rec.Float64("time"), Message: rec.String("message")})
		}
	}
	return nil
}

// skipHierarchy reads the scan-event hierarchy (segment count, then per
// segment a template count and that many ScanEventTemplate records) purely
// to advance the stream to the GenericDataHeader (§4.3).
func skipHierarchy(dec *StreamDecoder) error {
	segRec, err := dec.Decode(RecordSpec{Name: "HierarchySegments", Fields: []FieldSpec{{Name: "nsegs", Kind: KindUint32}}})
	if err != nil {
		return err
	}
	nsegs := segRec.Uint32("nsegs")
	for s := uint32(0); s < nsegs; s++ {
		tmplRec, err := dec.Decode(RecordSpec{Name: "HierarchyTemplates", Fields: []FieldSpec{{Name: "ntemplates", Kind: KindUint32}}})
		if err != nil {
			return err
		}
		ntemplates := tmplRec.Uint32("ntemplates")
		for t := uint32(0); t < ntemplates; t++ {
			if _, err := dec.Decode(scanEventTemplateSpec); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeGenericDataHeader reads the self-describing field-template list
// that governs how ScanParameters records are decoded (§3, §9).
func decodeGenericDataHeader(dec *StreamDecoder) ([]genericDataField, error) {
	countRec, err := dec.Decode(countSpec)
	if err != nil {
		return nil, err
	}
	count := countRec.Uint32("count")
	fields := make([]genericDataField, 0, count)
	for i := uint32(0); i < count; i++ {
		rec, err := dec.Decode(genericDataFieldSpec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, genericDataField{
			Name:     rec.String("name"),
			TypeCode: rec.Uint16("type_code"),
			Label:    rec.String("label"),
		})
	}
	return fields, nil
}

// scanParametersSpecFor builds a RecordSpec at runtime from a decoded
// GenericDataHeader, per §9 ("implement ScanParameters as a decoder that
// accepts a field-template list at construction rather than as a fixed
// record").
func scanParametersSpecFor(fields []genericDataField) RecordSpec {
	fs := make([]FieldSpec, 0, len(fields))
	for _, f := range fields {
		kind := KindFloat64
		switch f.TypeCode {
		case ParamTypeFloat64:
			kind = KindFloat64
		case ParamTypeFloat32:
			kind = KindFloat32
		case ParamTypeInt32:
			kind = KindInt32
		case ParamTypeString:
			kind = KindASCIIString
		}
		fs = append(fs, FieldSpec{Name: f.Name, Kind: kind, Label: f.Label})
	}
	return RecordSpec{Name: "ScanParameters", Fields: fs}
}

// decodeParameters reads GenericDataHeader at the decoder's current
// position, seeks to paramsAddr, then decodes one ScanParameters record per
// scan from firstScan up to and including to (parameters are not
// random-accessible, so records before from are read and discarded),
// extracting charge_state for scans in [from, to] (§4.3).
func decodeParameters(dec *StreamDecoder, paramsAddr int64, firstScan, lastScan, from, to int) (map[int]*int32, error) {
	fields, err := decodeGenericDataHeader(dec)
	if err != nil {
		return nil, err
	}
	spec := scanParametersSpecFor(fields)

	if err := dec.SeekTo(paramsAddr); err != nil {
		return nil, err
	}

	charges := make(map[int]*int32)
	for i := firstScan; i <= lastScan; i++ {
		rec, err := dec.Decode(spec)
		if err != nil {
			return nil, err
		}
		if i >= from {
			if rec.Has("charge_state") {
				v := rec.Int32("charge_state")
				charges[i] = &v
			}
		}
		if i == to {
			break
		}
	}
	return charges, nil
}
