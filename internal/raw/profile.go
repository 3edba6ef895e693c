package raw

// DefaultBookendWidth is NBINS from §4.5: the number of synthetic
// zero-intensity bins prepended/appended at each chunk boundary when
// rendering a multi-chunk profile.
const DefaultBookendWidth = 4

// chunk is one decoded profile chunk: intensities for bins
// [FirstBin, FirstBin+len(Bins)) (§3).
type chunk struct {
	FirstBin int
	Fudge    float32
	Bins     []float32
}

// Profile is a reconstructed, gap-compressed m/z spectrum (§3, §4.5). Its
// calibration is attached from the owning ScanEvent rather than carried as
// an embedded closure, per §9.
type Profile struct {
	FirstValue  float64
	NBins       int
	Fudge       float32
	Chunks      []chunk
	Calibration Calibration
}

func newProfile(rec Record, cal Calibration) *Profile {
	chunkRecs := rec.Objects("chunks")
	chunks := make([]chunk, 0, len(chunkRecs))
	for _, cr := range chunkRecs {
		chunks = append(chunks, chunk{
			FirstBin: int(cr.Uint32("first_bin")),
			Fudge:    cr.Float32("fudge"),
			Bins:     cr.Float32Slice("bins"),
		})
	}
	return &Profile{
		FirstValue:  rec.Float64("first_value"),
		NBins:       int(rec.Uint32("nbins")),
		Fudge:       rec.Float32("fudge"),
		Chunks:      chunks,
		Calibration: cal,
	}
}

// Render produces the (m/z, intensity) sequence for this profile, per
// §4.5's two rendering modes: a single-chunk profile yields one pair per
// stored bin; a multi-chunk profile gets zero-intensity bookends of the
// given width at each chunk boundary, clipped against neighboring chunks
// and the profile's valid bin range.
func (p *Profile) Render(bookendWidth int) []Peak {
	if bookendWidth <= 0 {
		bookendWidth = DefaultBookendWidth
	}
	if len(p.Chunks) <= 1 {
		return p.renderSingleChunk()
	}
	return p.renderWithBookends(bookendWidth)
}

func (p *Profile) renderSingleChunk() []Peak {
	if len(p.Chunks) == 0 {
		return nil
	}
	c := p.Chunks[0]
	peaks := make([]Peak, 0, len(c.Bins))
	for k, intensity := range c.Bins {
		bin := c.FirstBin + k
		peaks = append(peaks, Peak{Mz: p.Calibration.Forward(float64(bin)), Intensity: intensity})
	}
	return peaks
}

func (p *Profile) renderWithBookends(w int) []Peak {
	var peaks []Peak
	for i, c := range p.Chunks {
		lo := c.FirstBin - w
		hi := c.FirstBin + len(c.Bins) - 1 + w

		if i > 0 {
			prev := p.Chunks[i-1]
			prevEnd := prev.FirstBin + len(prev.Bins) - 1
			if lo <= prevEnd {
				lo = prevEnd + 1
			}
		}
		if lo < 0 {
			lo = 0
		}

		if i+1 < len(p.Chunks) {
			next := p.Chunks[i+1]
			if hi >= next.FirstBin {
				hi = next.FirstBin - 1
			}
		}
		if p.NBins > 0 && hi > p.NBins-1 {
			hi = p.NBins - 1
		}

		for bin := lo; bin < c.FirstBin; bin++ {
			peaks = append(peaks, Peak{Mz: p.Calibration.Forward(float64(bin)), Intensity: 0})
		}
		for k, intensity := range c.Bins {
			bin := c.FirstBin + k
			peaks = append(peaks, Peak{Mz: p.Calibration.Forward(float64(bin)), Intensity: intensity})
		}
		for bin := c.FirstBin + len(c.Bins); bin <= hi; bin++ {
			peaks = append(peaks, Peak{Mz: p.Calibration.Forward(float64(bin)), Intensity: 0})
		}
	}
	return peaks
}
