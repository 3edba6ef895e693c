package raw

// scanHeaderInfo is the fixed-size header immediately preceding a scan's
// optional profile and centroid sections (§3, §4.4).
type scanHeaderInfo struct {
	ProfileSize  uint32
	PeakListSize uint32
}

// Scan is one decoded scan payload: its header plus whichever of profile /
// centroid sections are present.
type Scan struct {
	Num       int
	Header    scanHeaderInfo
	Profile   *Profile
	Centroids []Peak
}

// decodeScan seeks to dataAddr+entry.Offset, decodes the ScanHeader, and
// then the profile and/or centroid sections it declares (§4.4). cal is the
// calibration attached from the scan's ScanEvent.
func decodeScan(dec *StreamDecoder, num int, dataAddr int64, entry scanIndexEntry, cal Calibration) (*Scan, error) {
	if err := dec.SeekTo(dataAddr + int64(entry.Offset)); err != nil {
		return nil, err
	}
	hdrRec, err := dec.Decode(scanHeaderSpec)
	if err != nil {
		return nil, err
	}
	hdr := scanHeaderInfo{
		ProfileSize:  hdrRec.Uint32("profile_size"),
		PeakListSize: hdrRec.Uint32("peak_list_size"),
	}
	scan := &Scan{Num: num, Header: hdr}

	if hdr.ProfileSize > 0 {
		profRec, err := dec.Decode(profileSpec)
		if err != nil {
			return nil, err
		}
		scan.Profile = newProfile(profRec, cal)
	}
	if hdr.PeakListSize > 0 {
		centRec, err := dec.Decode(centroidListSpec)
		if err != nil {
			return nil, err
		}
		scan.Centroids = centroidsFromRecord(centRec)
	}
	return scan, nil
}

func centroidsFromRecord(rec Record) []Peak {
	entries := rec.Objects("peaks")
	peaks := make([]Peak, 0, len(entries))
	for _, e := range entries {
		peaks = append(peaks, Peak{Mz: e.Float64("mz"), Intensity: e.Float32("intensity")})
	}
	return peaks
}
