package raw

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// RenderParallel renders peaks for each of nums concurrently. This is the
// "post-decode work" parallelism §5 explicitly permits but never requires:
// peak rendering for independent scans is farmed out across goroutines,
// with the shared input stream guarded by mutual exclusion rather than
// cloned per worker.
//
// Concurrent rendering races on the decoder's parent-scan slot (§9):
// callers that need correct §4.6 precursor lookups for dependent MS²
// scans must render MS¹ parents sequentially first, or avoid mixing
// RenderParallel with PrecursorIntensity.
func (d *Decoder) RenderParallel(nums []int) (map[int][]Peak, error) {
	results := make(map[int][]Peak, len(nums))
	var resultsMu sync.Mutex

	var g errgroup.Group
	for _, n := range nums {
		n := n
		g.Go(func() error {
			peaks, err := d.renderScan(n)
			if err != nil {
				return err
			}
			resultsMu.Lock()
			results[n] = peaks
			resultsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
