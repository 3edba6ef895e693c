package raw

// Polarity is the ion-mode tag exposed on scan metadata (§6).
type Polarity int

const (
	PolarityPositive Polarity = iota
	PolarityNegative
	PolarityAny
)

func (p Polarity) String() string {
	switch p {
	case PolarityPositive:
		return "+"
	case PolarityNegative:
		return "-"
	default:
		return "any"
	}
}

// Peak is a single rendered (m/z, intensity) measurement, from either a
// profile bin or a centroid entry.
type Peak struct {
	Mz        float64
	Intensity float32
}

// ScanMetadata is the structured view of one scan's front matter, per the
// external interface in §6.
type ScanMetadata struct {
	Num                   int
	MSLevel               int
	Polarity              Polarity
	ScanType              uint16
	FilterLine            string
	RetentionTimeSeconds  float64
	LowMz                 float64
	HighMz                float64
	BasePeakMz            float64
	BasePeakIntensity     float32
	TotalIonCurrent       float64
	ChargeState           *int32
	CollisionEnergy       *float64
	PrecursorMz           *float64
	PrecursorIntensity    *float32
	ActivationMethod      string
}

// scanIndexEntry is the fixed-size per-scan directory entry decoded from
// the ScanIndex region (§3, §4.3).
type scanIndexEntry struct {
	Offset        uint32
	StartTime     float64
	LowMz         float64
	HighMz        float64
	BaseMz        float64
	BaseIntensity float32
	TotalCurrent  float64
}

func scanIndexEntryFromRecord(rec Record) scanIndexEntry {
	return scanIndexEntry{
		Offset:        rec.Uint32("offset"),
		StartTime:     rec.Float64("start_time"),
		LowMz:         rec.Float64("low_mz"),
		HighMz:        rec.Float64("high_mz"),
		BaseMz:        rec.Float64("base_mz"),
		BaseIntensity: rec.Float32("base_intensity"),
		TotalCurrent:  rec.Float64("total_current"),
	}
}

// scanEvent is the decoded, version-resolved view of one ScanEvent trailer
// record (§3). Calibration transforms are modeled as a tagged variant
// (calibration.go) rather than embedded closures, per §9.
type scanEvent struct {
	Num         int
	MSPower     int
	Dependent   bool
	Polarity    Polarity
	Ionization  uint16
	Analyzer    uint16
	Detector    uint16
	ScanType    uint16
	FilterLine  string
	Calibration Calibration
	Reaction    *reaction
}

type reaction struct {
	Precursor        float64
	Energy           float64
	ActivationMethod string
}

func scanEventFromRecord(num int, rec Record) scanEvent {
	pre := rec.Object("preamble")
	ev := scanEvent{
		Num:         num,
		MSPower:     int(pre.Uint16("ms_power")),
		Dependent:   pre.Uint16("dependent") != 0,
		Polarity:    polarityFromCode(pre.Uint16("polarity")),
		Ionization:  pre.Uint16("ionization"),
		Analyzer:    pre.Uint16("analyzer"),
		Detector:    pre.Uint16("detector"),
		ScanType:    pre.Uint16("scan_type"),
		FilterLine:  rec.String("filter_line"),
		Calibration: calibrationFromRecord(pre),
	}
	if ev.MSPower >= 2 {
		reactionRec := rec.Object("reaction")
		ev.Reaction = &reaction{
			Precursor:        reactionRec.Float64("precursor"),
			Energy:           reactionRec.Float64("energy"),
			ActivationMethod: reactionRec.String("activation_method"),
		}
	}
	return ev
}

func polarityFromCode(code uint16) Polarity {
	switch code {
	case 0:
		return PolarityPositive
	case 1:
		return PolarityNegative
	default:
		return PolarityAny
	}
}

// genericDataField is one entry of a GenericDataHeader self-describing
// schema (§3, §9).
type genericDataField struct {
	Name     string
	TypeCode uint16
	Label    string
}

// ScanParameterType codes used within the self-describing GenericDataHeader
// schema. These are independent of the StreamDecoder's structural Kind
// codes: they describe scalar value shapes within a flat parameters
// record, not nested/composite structure.
const (
	ParamTypeFloat64 uint16 = iota
	ParamTypeFloat32
	ParamTypeInt32
	ParamTypeString
)
