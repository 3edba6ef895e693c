package raw

import "fmt"

// Record templates are kept in tables keyed by schema version rather than
// scattered behind conditionals, per the layout described for RunHeader and
// ScanEvent. specFor resolves a version to the highest known template at or
// below it.
func specFor(table map[int]RecordSpec, version int) (RecordSpec, error) {
	if s, ok := table[version]; ok {
		return s, nil
	}
	best := -1
	for k := range table {
		if k <= version && k > best {
			best = k
		}
	}
	if best < 0 {
		return RecordSpec{}, &FormatError{Reason: fmt.Sprintf("no record template known for schema version %d", version)}
	}
	return table[best], nil
}

var fileHeaderSpec = RecordSpec{
	Name: "FileHeader",
	Fields: []FieldSpec{
		{Name: "signature", Kind: KindASCIIString, Label: "Format signature"},
		{Name: "version", Kind: KindUint32, Label: "Schema version"},
	},
}

var seqRowSpecs = map[int]RecordSpec{
	57: {
		Name: "SeqRow",
		Fields: []FieldSpec{
			{Name: "sample_name", Kind: KindUTF16String, Label: "Sample name"},
			{Name: "vial", Kind: KindASCIIString, Label: "Vial"},
			{Name: "injection_volume", Kind: KindFloat64, Label: "Injection volume"},
			{Name: "comment", Kind: KindUTF16String, Label: "Comment"},
		},
	},
	66: {
		Name: "SeqRow",
		Fields: []FieldSpec{
			{Name: "row_number", Kind: KindUint32, Label: "Row number"},
			{Name: "sample_name", Kind: KindUTF16String, Label: "Sample name"},
			{Name: "vial", Kind: KindASCIIString, Label: "Vial"},
			{Name: "injection_volume", Kind: KindFloat64, Label: "Injection volume"},
			{Name: "comment", Kind: KindUTF16String, Label: "Comment"},
		},
	},
}

var asInfoSpecs = map[int]RecordSpec{
	57: {
		Name: "ASInfo",
		Fields: []FieldSpec{
			{Name: "name", Kind: KindUTF16String, Label: "Autosampler name"},
			{Name: "model", Kind: KindUTF16String, Label: "Model"},
			{Name: "version", Kind: KindUTF16String, Label: "Firmware version"},
		},
	},
}

var rawFileInfoPreambleSpec = RecordSpec{
	Name: "RawFileInfoPreamble",
	Fields: []FieldSpec{
		{Name: "run_header_addr_0", Kind: KindUint32, Label: "First RunHeader address"},
		{Name: "run_header_addr_1", Kind: KindUint32, Label: "Second RunHeader address"},
		{Name: "creation_date", Kind: KindASCIIString, Label: "Creation date"},
	},
}

var rawFileInfoSpecs = map[int]RecordSpec{
	57: {
		Name: "RawFileInfo",
		Fields: []FieldSpec{
			{Name: "preamble", Kind: KindObject, Sub: &rawFileInfoPreambleSpec},
			{Name: "file_description", Kind: KindUTF16String, Label: "File description"},
		},
	},
}

var sampleInfoSpec = RecordSpec{
	Name: "SampleInfo",
	Fields: []FieldSpec{
		{Name: "first_scan", Kind: KindUint32, Label: "First scan"},
		{Name: "last_scan", Kind: KindUint32, Label: "Last scan"},
		{Name: "max_intensity", Kind: KindFloat64, Label: "Max intensity"},
	},
}

var runHeaderSpecs = map[int]RecordSpec{
	57: {
		Name: "RunHeader",
		Fields: []FieldSpec{
			{Name: "sample_info", Kind: KindObject, Sub: &sampleInfoSpec},
			{Name: "data_addr", Kind: KindUint32, Label: "Scan data address"},
			{Name: "scan_index_addr", Kind: KindUint32, Label: "Scan index address"},
			{Name: "trailer_addr", Kind: KindUint32, Label: "Trailer (scan event) address"},
			{Name: "params_addr", Kind: KindUint32, Label: "Parameters stream address"},
			{Name: "error_log_addr", Kind: KindUint32, Label: "Error log address"},
			{Name: "ntrailer", Kind: KindUint32, Label: "Trailer record count"},
		},
	},
	66: {
		Name: "RunHeader",
		Fields: []FieldSpec{
			{Name: "sample_info", Kind: KindObject, Sub: &sampleInfoSpec},
			{Name: "data_addr", Kind: KindUint32, Label: "Scan data address"},
			{Name: "scan_index_addr", Kind: KindUint32, Label: "Scan index address"},
			{Name: "trailer_addr", Kind: KindUint32, Label: "Trailer (scan event) address"},
			{Name: "params_addr", Kind: KindUint32, Label: "Parameters stream address"},
			{Name: "error_log_addr", Kind: KindUint32, Label: "Error log address"},
			{Name: "ntrailer", Kind: KindUint32, Label: "Trailer record count"},
			{Name: "in_acquisition", Kind: KindUint16, Label: "Acquisition still in progress"},
		},
	},
}

var instIDSpecs = map[int]RecordSpec{
	57: {
		Name: "InstID",
		Fields: []FieldSpec{
			{Name: "model", Kind: KindUTF16String, Label: "Instrument model"},
			{Name: "serial_number", Kind: KindUTF16String, Label: "Serial number"},
			{Name: "software_version", Kind: KindUTF16String, Label: "Software version"},
		},
	},
}

// scanEventPreambleSpec decodes the leading portion of a ScanEvent shared
// across versions: ms_power (1 or 2), dependent flag, polarity,
// ionization/analyzer/detector/scan_type tags, and the calibration kind tag
// plus its counted coefficient list feeding calibration.go.
var scanEventPreambleSpec = RecordSpec{
	Name: "ScanEventPreamble",
	Fields: []FieldSpec{
		{Name: "ms_power", Kind: KindUint16, Label: "MS power"},
		{Name: "dependent", Kind: KindUint16, Label: "Dependent scan flag"},
		{Name: "polarity", Kind: KindUint16, Label: "Polarity"},
		{Name: "ionization", Kind: KindUint16, Label: "Ionization mode"},
		{Name: "analyzer", Kind: KindUint16, Label: "Mass analyzer"},
		{Name: "detector", Kind: KindUint16, Label: "Detector"},
		{Name: "scan_type", Kind: KindUint16, Label: "Scan type"},
		{Name: "calibration_kind", Kind: KindUint16, Label: "Calibration kind tag"},
		{Name: "coeff_count", Kind: KindUint32, Label: "Calibration coefficient count"},
		{Name: "coefficients", Kind: KindFloat64Array, Label: "Calibration coefficients"},
	},
}

var reactionSpec = RecordSpec{
	Name: "Reaction",
	Fields: []FieldSpec{
		{Name: "precursor", Kind: KindFloat64, Label: "Precursor m/z"},
		{Name: "energy", Kind: KindFloat64, Label: "Collision energy"},
		{Name: "activation_method", Kind: KindASCIIString, Label: "Activation method"},
	},
}

// reaction is decoded unconditionally (its values are simply unused for
// ms_power==1 scans) since the stream decoder's field templates cannot
// branch on a value decoded earlier in the same record.
var scanEventSpecs = map[int]RecordSpec{
	57: {
		Name: "ScanEvent",
		Fields: []FieldSpec{
			{Name: "preamble", Kind: KindObject, Sub: &scanEventPreambleSpec},
			{Name: "filter_line", Kind: KindASCIIString, Label: "Filter line"},
			{Name: "reaction", Kind: KindObject, Sub: &reactionSpec},
		},
	},
}

// scanEventTemplateSpec is the minimal per-segment hierarchy record read
// purely to advance the stream to the parameters header (§4.3 "Hierarchy").
var scanEventTemplateSpec = RecordSpec{
	Name: "ScanEventTemplate",
	Fields: []FieldSpec{
		{Name: "label", Kind: KindASCIIString, Label: "Template label"},
		{Name: "reserved", Kind: KindUint32, Label: "Reserved"},
	},
}

var errorLogEntrySpec = RecordSpec{
	Name: "ErrorLogEntry",
	Fields: []FieldSpec{
		{Name: "time", Kind: KindFloat64, Label: "Elapsed time"},
		{Name: "message", Kind: KindUTF16String, Label: "Message"},
	},
}

var genericDataFieldSpec = RecordSpec{
	Name: "GenericDataField",
	Fields: []FieldSpec{
		{Name: "name", Kind: KindASCIIString, Label: "Field name"},
		{Name: "type_code", Kind: KindUint16, Label: "Field type code"},
		{Name: "label", Kind: KindASCIIString, Label: "Field label"},
	},
}

var scanHeaderSpec = RecordSpec{
	Name: "ScanHeader",
	Fields: []FieldSpec{
		{Name: "profile_size", Kind: KindUint32, Label: "Profile section size"},
		{Name: "peak_list_size", Kind: KindUint32, Label: "Centroid list size"},
	},
}

var profileChunkSpec = RecordSpec{
	Name: "ProfileChunk",
	Fields: []FieldSpec{
		{Name: "first_bin", Kind: KindUint32, Label: "First bin index"},
		{Name: "fudge", Kind: KindFloat32, Label: "Chunk fudge baseline"},
		{Name: "nbins", Kind: KindUint32, Label: "Bin count"},
		{Name: "bins", Kind: KindFloat32Array, Label: "Intensities"},
	},
}

// Field order follows the decoder's adjacency rule for iterate-object mode
// (the repeat count must be the field immediately preceding the array): the
// chunk array is read right after nchunks, with the informational
// nbins/fudge trailer fields following.
var profileSpec = RecordSpec{
	Name: "Profile",
	Fields: []FieldSpec{
		{Name: "first_value", Kind: KindFloat64, Label: "First value"},
		{Name: "nchunks", Kind: KindUint32, Label: "Chunk count"},
		{Name: "chunks", Kind: KindObjectArray, Sub: &profileChunkSpec},
		{Name: "nbins", Kind: KindUint32, Label: "Total bin count"},
		{Name: "fudge", Kind: KindFloat32, Label: "Profile-level fudge"},
	},
}

// scanIndexEntrySpec is fixed-size by construction (no variable-length
// fields); loadScanIndex probes one instance to learn its byte size rather
// than hardcoding it, per §4.3.
var scanIndexEntrySpec = RecordSpec{
	Name: "ScanIndexEntry",
	Fields: []FieldSpec{
		{Name: "offset", Kind: KindUint32, Label: "Offset relative to data_addr"},
		{Name: "start_time", Kind: KindFloat64, Label: "Start time"},
		{Name: "low_mz", Kind: KindFloat64, Label: "Low m/z"},
		{Name: "high_mz", Kind: KindFloat64, Label: "High m/z"},
		{Name: "base_mz", Kind: KindFloat64, Label: "Base peak m/z"},
		{Name: "base_intensity", Kind: KindFloat32, Label: "Base peak intensity"},
		{Name: "total_current", Kind: KindFloat64, Label: "Total ion current"},
	},
}

var centroidEntrySpec = RecordSpec{
	Name: "CentroidEntry",
	Fields: []FieldSpec{
		{Name: "mz", Kind: KindFloat64, Label: "m/z"},
		{Name: "intensity", Kind: KindFloat32, Label: "Intensity"},
	},
}

var centroidListSpec = RecordSpec{
	Name: "CentroidList",
	Fields: []FieldSpec{
		{Name: "count", Kind: KindUint32, Label: "Peak count"},
		{Name: "peaks", Kind: KindObjectArray, Sub: &centroidEntrySpec},
	},
}
