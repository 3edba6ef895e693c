package raw

import (
	"github.com/goccy/go-json"
)

// indexSummary is a JSON-friendly projection of one scan's index/trailer
// data, used only for debugging/log output — not the mzXML/mzML emitter,
// which stays out of scope (§1).
type indexSummary struct {
	Scan         int     `json:"scan"`
	MSLevel      int     `json:"ms_level"`
	Dependent    bool    `json:"dependent"`
	StartTime    float64 `json:"start_time"`
	LowMz        float64 `json:"low_mz"`
	HighMz       float64 `json:"high_mz"`
	TotalCurrent float64 `json:"total_current"`
}

// DumpIndexJSON renders a compact JSON summary of the loaded index/trailer
// tables for [from, to], using goccy/go-json as a faster drop-in for
// encoding/json. Intended for debug logging, matching the JSON-emission
// style ch10gate uses for its manifest and acceptance report, but scoped
// here to diagnostics rather than any external file-format emitter.
func (d *Decoder) DumpIndexJSON(from, to int) ([]byte, error) {
	if from < d.chain.FirstScan {
		from = d.chain.FirstScan
	}
	if to > d.chain.LastScan {
		to = d.chain.LastScan
	}
	summaries := make([]indexSummary, 0, to-from+1)
	for n := from; n <= to; n++ {
		entry, ok := d.index.Get(n)
		if !ok {
			continue
		}
		ev, ok := d.events[n]
		if !ok {
			continue
		}
		summaries = append(summaries, indexSummary{
			Scan:         n,
			MSLevel:      ev.MSPower,
			Dependent:    ev.Dependent,
			StartTime:    entry.StartTime,
			LowMz:        entry.LowMz,
			HighMz:       entry.HighMz,
			TotalCurrent: entry.TotalCurrent,
		})
	}
	return json.MarshalIndent(summaries, "", "  ")
}
