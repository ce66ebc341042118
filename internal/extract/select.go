// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/fl-aggregator/pkg/types"
)

// PreferredPaths lists path fragments that name model weights, highest
// priority first.
var PreferredPaths = []string{
	".weights",
	".weights_delta",
	".params",
	".w",
	".theta",
	".coef",
	".coefficients",
	".payload.update",
	".model.weights",
	".update",
}

// Select picks one candidate. For each entry of PreferredPaths in order it
// returns the first candidate, in scan order, whose path contains the
// fragment (a suffix match is a substring match too). Without any match it
// returns the longest candidate, the earliest one on ties. It reports false
// only for an empty list.
func Select(cands []types.Candidate) (types.Candidate, bool) {
	if len(cands) == 0 {
		return types.Candidate{}, false
	}
	for _, frag := range PreferredPaths {
		for _, c := range cands {
			if strings.Contains(c.Path, frag) {
				return c, true
			}
		}
	}

	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Len() > cands[best].Len() {
			best = i
		}
	}
	return cands[best], true
}
