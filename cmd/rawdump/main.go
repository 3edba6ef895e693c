// Command rawdump opens a Finnigan RAW file and prints scan metadata (and,
// optionally, peak data) for a requested scan range. It is a thin
// demonstration of the decoder library, not a replacement for the
// mzXML/mzML emitter or CLI argument handling described as out of scope in
// the core (§1) — this program exists only to exercise internal/raw end to
// end.
package main

import (
	"flag"
	"fmt"
	"os"

	"example.com/finniganraw/internal/common"
	"example.com/finniganraw/internal/raw"
)

func main() {
	path := flag.String("file", "", "path to a Finnigan RAW file")
	from := flag.Int("from", 1, "first scan number")
	to := flag.Int("to", 1, "last scan number")
	config := flag.String("config", "", "optional YAML config file")
	dumpPeaks := flag.Bool("peaks", false, "print peak counts for each scan")
	flag.Parse()

	if *path == "" {
		common.Fatalf("usage: rawdump -file <path> [-from N] [-to N] [-config path.yaml] [-peaks]")
	}

	cfg, err := common.LoadConfig(*config)
	if err != nil {
		common.Fatalf("loading config: %v", err)
	}
	closer := common.ConfigureRotation(cfg.Logs)
	defer closer.Close()

	dec, err := raw.Open(*path, raw.Options{
		BookendWidth:    cfg.BookendWidth,
		PeakTolerance:   cfg.PeakTolerance,
		PreferCentroids: cfg.PreferCentroids,
		ProfileOnly:     cfg.ProfileOnly,
		ErrorLog: func(entry raw.InstrumentError) bool {
			common.Logf("instrument error log: %v", entry)
			return false
		},
	})
	if err != nil {
		common.Fatalf("opening %s: %v", *path, err)
	}
	defer dec.Close()

	common.Logf("session %s opened %s (schema version %d)", dec.SessionID, *path, dec.Version())

	it, err := dec.Scans(*from, *to)
	if err != nil {
		common.Fatalf("requesting scans [%d,%d]: %v", *from, *to, err)
	}

	for {
		scan, ok := it.Next()
		if !ok {
			break
		}
		meta := scan.Metadata()
		fmt.Printf("scan %d: ms%d rt=%.3fs polarity=%s tic=%.1f\n",
			meta.Num, meta.MSLevel, meta.RetentionTimeSeconds, meta.Polarity, meta.TotalIonCurrent)
		if *dumpPeaks {
			peaks, err := scan.Peaks()
			if err != nil {
				common.Logf("scan %d: %v", meta.Num, err)
				continue
			}
			fmt.Printf("  %d peaks\n", len(peaks))
		}
	}

	if os.Getenv("RAWDUMP_DEBUG_JSON") != "" {
		dump, err := dec.DumpIndexJSON(*from, *to)
		if err == nil {
			fmt.Println(string(dump))
		}
	}
}
