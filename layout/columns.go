package layout

import (
	"math"

	"github.com/wudi/pdfedit/extract"
)

// DetectColumnSplit looks for a vertical whitespace gutter separating two
// text columns and returns its midpoint X in screen space. Bucket scores
// count distinct vertical bands rather than raw runs so that a single wide
// centered element, a title for instance, cannot bridge two real columns.
func DetectColumnSplit(runs []extract.Run, pageWidth float64, cfg Config) (float64, bool) {
	if len(runs) == 0 || pageWidth <= 0 || cfg.ColumnBuckets <= 0 {
		return 0, false
	}

	bw := pageWidth / float64(cfg.ColumnBuckets)
	bands := make([]map[int]struct{}, cfg.ColumnBuckets)
	for i := range bands {
		bands[i] = make(map[int]struct{})
	}
	bandOf := func(top float64) int {
		return int(math.Round(top / cfg.LineTolerance))
	}
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i >= cfg.ColumnBuckets {
			return cfg.ColumnBuckets - 1
		}
		return i
	}
	for _, run := range runs {
		first := clamp(int(run.ScreenLeft / bw))
		last := clamp(int(math.Ceil((run.ScreenLeft+run.ScreenWidth)/bw)) - 1)
		if last < first {
			last = first
		}
		b := bandOf(run.ScreenTop)
		for i := first; i <= last; i++ {
			bands[i][b] = struct{}{}
		}
	}

	maxScore := 0
	for _, set := range bands {
		if len(set) > maxScore {
			maxScore = len(set)
		}
	}
	if maxScore == 0 {
		return 0, false
	}
	threshold := float64(maxScore) * cfg.GapScoreRatio

	lo := int(cfg.SearchLow * float64(cfg.ColumnBuckets))
	hi := int(cfg.SearchHigh * float64(cfg.ColumnBuckets))
	if hi >= cfg.ColumnBuckets {
		hi = cfg.ColumnBuckets - 1
	}

	bestStart, bestLen := -1, 0
	runStart := -1
	for i := lo; i <= hi+1; i++ {
		empty := i <= hi && float64(len(bands[i])) <= threshold
		if empty {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			if n := i - runStart; n > bestLen {
				bestStart, bestLen = runStart, n
			}
			runStart = -1
		}
	}

	if bestStart < 0 {
		return 0, false
	}
	gapStart := float64(bestStart) * bw
	gapEnd := float64(bestStart+bestLen) * bw
	if gapEnd-gapStart < cfg.MinGapFraction*pageWidth {
		return 0, false
	}
	if !sideHasContent(runs, cfg, 0, gapStart) || !sideHasContent(runs, cfg, gapEnd, pageWidth) {
		return 0, false
	}
	return (gapStart + gapEnd) / 2, true
}

// sideHasContent requires enough distinct vertical bands between x0 and x1
// for that side to count as a real column.
func sideHasContent(runs []extract.Run, cfg Config, x0, x1 float64) bool {
	bands := make(map[int]struct{})
	for _, run := range runs {
		center := run.ScreenLeft + run.ScreenWidth/2
		if center < x0 || center > x1 {
			continue
		}
		bands[int(math.Round(run.ScreenTop/cfg.LineTolerance))] = struct{}{}
		if len(bands) >= cfg.MinSideBands {
			return true
		}
	}
	return false
}
