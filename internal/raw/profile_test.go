package raw

import "testing"

func TestProfileSingleChunkIdentityConverter(t *testing.T) {
	// §8 scenario 3: 10 bins, converter f(k)=100+k, stored intensities in order.
	bins := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	p := &Profile{
		NBins:       10,
		Calibration: Calibration{Kind: CalibLinear, Coeffs: []float64{100, 1}},
		Chunks:      []chunk{{FirstBin: 0, Bins: bins}},
	}
	peaks := p.Render(4)
	if len(peaks) != 10 {
		t.Fatalf("len(peaks) = %d, want 10", len(peaks))
	}
	for k, peak := range peaks {
		wantMz := float64(100 + k)
		if peak.Mz != wantMz {
			t.Errorf("peaks[%d].Mz = %v, want %v", k, peak.Mz, wantMz)
		}
		if peak.Intensity != bins[k] {
			t.Errorf("peaks[%d].Intensity = %v, want %v", k, peak.Intensity, bins[k])
		}
	}
}

func TestProfileMultiChunkBookends(t *testing.T) {
	// §8 scenario 4: chunk1 at bins [20..23], chunk2 at bins [30..32], width 4.
	// Expect rendered bins [16..27] then [26..36].
	p := &Profile{
		NBins:       1000,
		Calibration: Calibration{Kind: CalibIdentity},
		Chunks: []chunk{
			{FirstBin: 20, Bins: []float32{1, 2, 3, 4}},
			{FirstBin: 30, Bins: []float32{5, 6, 7}},
		},
	}
	peaks := p.Render(4)

	var gotBins []int
	for _, peak := range peaks {
		gotBins = append(gotBins, int(peak.Mz))
	}

	var wantBins []int
	for b := 16; b <= 27; b++ {
		wantBins = append(wantBins, b)
	}
	for b := 26; b <= 36; b++ {
		wantBins = append(wantBins, b)
	}

	if len(gotBins) != len(wantBins) {
		t.Fatalf("len(gotBins) = %d, want %d (%v)", len(gotBins), len(wantBins), gotBins)
	}
	for i := range wantBins {
		if gotBins[i] != wantBins[i] {
			t.Errorf("bin[%d] = %d, want %d", i, gotBins[i], wantBins[i])
		}
	}

	// Non-bookend bins keep their stored intensity; bookend bins are 0.
	for i, peak := range peaks {
		bin := gotBins[i]
		switch {
		case bin >= 20 && bin <= 23:
			want := float32(bin - 20 + 1)
			if peak.Intensity != want {
				t.Errorf("bin %d intensity = %v, want %v", bin, peak.Intensity, want)
			}
		case bin >= 30 && bin <= 32:
			want := float32(bin - 30 + 5)
			if peak.Intensity != want {
				t.Errorf("bin %d intensity = %v, want %v", bin, peak.Intensity, want)
			}
		default:
			if peak.Intensity != 0 {
				t.Errorf("bookend bin %d intensity = %v, want 0", bin, peak.Intensity)
			}
		}
	}
}

func TestProfileMzStrictlyIncreasingWithinChunk(t *testing.T) {
	p := &Profile{
		Calibration: Calibration{Kind: CalibLinear, Coeffs: []float64{0, 0.5}},
		Chunks:      []chunk{{FirstBin: 5, Bins: []float32{1, 1, 1, 1}}},
	}
	peaks := p.Render(4)
	for i := 1; i < len(peaks); i++ {
		if peaks[i].Mz <= peaks[i-1].Mz {
			t.Errorf("m/z not strictly increasing at %d: %v <= %v", i, peaks[i].Mz, peaks[i-1].Mz)
		}
	}
}
