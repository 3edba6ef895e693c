package raw

// headerChain is the decoded front matter of a RAW file: the version,
// SeqRow/ASInfo/RawFileInfo records, the authoritative RunHeader and its
// address, InstID, and the absolute region addresses downstream decoders
// need (§3, §4.2).
type headerChain struct {
	Version int

	SeqRow      Record
	ASInfo      Record
	RawFileInfo Record
	RunHeader   Record
	InstID      Record

	RunHeaderAddr int64
	DataAddr      int64
	ScanIndexAddr int64
	TrailerAddr   int64
	ParamsAddr    int64
	ErrorLogAddr  int64

	FirstScan int
	LastScan  int
}

// decodeHeaderChain walks FileHeader -> SeqRow -> ASInfo -> RawFileInfo ->
// RunHeader(s) -> InstID (§4.2), resolving which RunHeader is authoritative
// by its ntrailer count.
func decodeHeaderChain(dec *StreamDecoder) (*headerChain, error) {
	fileHeader, err := dec.Decode(fileHeaderSpec)
	if err != nil {
		return nil, err
	}
	version := int(fileHeader.Uint32("version"))

	seqSpec, err := specFor(seqRowSpecs, version)
	if err != nil {
		return nil, err
	}
	seqRow, err := dec.Decode(seqSpec)
	if err != nil {
		return nil, err
	}

	asSpec, err := specFor(asInfoSpecs, version)
	if err != nil {
		return nil, err
	}
	asInfo, err := dec.Decode(asSpec)
	if err != nil {
		return nil, err
	}

	rfiSpec, err := specFor(rawFileInfoSpecs, version)
	if err != nil {
		return nil, err
	}
	rawFileInfo, err := dec.Decode(rfiSpec)
	if err != nil {
		return nil, err
	}

	preamble := rawFileInfo.Object("preamble")
	addr0 := int64(preamble.Uint32("run_header_addr_0"))
	addr1 := int64(preamble.Uint32("run_header_addr_1"))

	runHeaderSpec, err := specFor(runHeaderSpecs, version)
	if err != nil {
		return nil, err
	}

	var rh0, rh1 Record
	var end0, end1 int64
	var have0, have1 bool
	if addr0 != 0 {
		rh0, end0, err = decodeRunHeaderAt(dec, addr0, runHeaderSpec)
		if err != nil {
			return nil, err
		}
		have0 = true
	}
	if addr1 != 0 {
		rh1, end1, err = decodeRunHeaderAt(dec, addr1, runHeaderSpec)
		if err != nil {
			return nil, err
		}
		have1 = true
	}

	var nt0, nt1 uint32
	if have0 {
		nt0 = rh0.Uint32("ntrailer")
	}
	if have1 {
		nt1 = rh1.Uint32("ntrailer")
	}

	var chosen Record
	var chosenAddr, chosenEnd int64
	switch {
	case nt0 > 0 && nt1 > 0:
		return nil, &AmbiguousRunHeaderError{NTrailer0: nt0, NTrailer1: nt1}
	case nt0 == 0 && nt1 == 0:
		return nil, &MissingRunHeaderError{NTrailer0: nt0, NTrailer1: nt1}
	case nt0 > 0:
		chosen, chosenAddr, chosenEnd = rh0, addr0, end0
	default:
		chosen, chosenAddr, chosenEnd = rh1, addr1, end1
	}

	// InstID is decoded immediately after the authoritative RunHeader
	// (§4.2), not necessarily after whichever RunHeader happened to be
	// decoded last.
	if err := dec.SeekTo(chosenEnd); err != nil {
		return nil, err
	}

	instSpec, err := specFor(instIDSpecs, version)
	if err != nil {
		return nil, err
	}
	instID, err := dec.Decode(instSpec)
	if err != nil {
		return nil, err
	}

	sampleInfo := chosen.Object("sample_info")

	return &headerChain{
		Version:       version,
		SeqRow:        seqRow,
		ASInfo:        asInfo,
		RawFileInfo:   rawFileInfo,
		RunHeader:     chosen,
		InstID:        instID,
		RunHeaderAddr: chosenAddr,
		DataAddr:      int64(chosen.Uint32("data_addr")),
		ScanIndexAddr: int64(chosen.Uint32("scan_index_addr")),
		TrailerAddr:   int64(chosen.Uint32("trailer_addr")),
		ParamsAddr:    int64(chosen.Uint32("params_addr")),
		ErrorLogAddr:  int64(chosen.Uint32("error_log_addr")),
		FirstScan:     int(sampleInfo.Uint32("first_scan")),
		LastScan:      int(sampleInfo.Uint32("last_scan")),
	}, nil
}

// decodeRunHeaderAt seeks to addr, decodes one RunHeader, and reports the
// offset immediately following it. Lowercase (internal package) so tests
// can exercise the round-trip invariant in §8 by calling it twice against
// the same address.
func decodeRunHeaderAt(dec *StreamDecoder, addr int64, spec RecordSpec) (Record, int64, error) {
	if err := dec.SeekTo(addr); err != nil {
		return Record{}, 0, err
	}
	rec, err := dec.Decode(spec)
	if err != nil {
		return Record{}, 0, err
	}
	return rec, dec.Pos(), nil
}
