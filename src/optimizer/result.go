package optimizer

import (
	"imgoptimizer/src/common"
)

// Stage marks how far a run has progressed
type Stage int

const (
	StageStart Stage = iota
	StageDirsReady
	StageProductsDone
	StageLogosDone
	StageManifestWritten
	StageEnd
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageDirsReady:
		return "dirs-ready"
	case StageProductsDone:
		return "products-done"
	case StageLogosDone:
		return "logos-done"
	case StageManifestWritten:
		return "manifest-written"
	case StageEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ItemResult is the outcome of converting one descriptor. Err is set when
// the item failed; the size fields are then only partially filled.
type ItemResult struct {
	Descriptor     common.FileDescriptor
	InputPath      string
	OutputPath     string
	OriginalKB     float64
	OptimizedKB    float64
	OptimizedBytes int64
	Savings        float64
	Err            error
}

// OK reports whether the item was converted
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// GroupSummary collects the results of one image class. Totals only
// include items that were converted.
type GroupSummary struct {
	Group            string
	Items            []ItemResult
	TotalOriginalKB  float64
	TotalOptimizedKB float64
}

func (g *GroupSummary) add(r ItemResult) {
	g.Items = append(g.Items, r)
	if r.OK() {
		g.TotalOriginalKB += r.OriginalKB
		g.TotalOptimizedKB += r.OptimizedKB
	}
}

// Succeeded returns the number of converted items
func (g GroupSummary) Succeeded() int {
	n := 0
	for _, r := range g.Items {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of items that could not be converted
func (g GroupSummary) Failed() int {
	return len(g.Items) - g.Succeeded()
}

// Savings returns the aggregate savings percentage over converted items
func (g GroupSummary) Savings() float64 {
	return common.Savings(g.TotalOriginalKB, g.TotalOptimizedKB)
}

// Report is what a completed run hands back to the caller
type Report struct {
	Products     GroupSummary
	Logos        GroupSummary
	ManifestPath string
	Deployed     bool
}
