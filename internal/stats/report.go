// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/charlm/internal/model"
	"github.com/verte-zerg/charlm/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Runs     []model.RunAggregate
	CharAggs []model.CharAggregate
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	charAggs, err := st.ListCharAggregatesForRuns(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	return Report{
		Runs:     runs,
		CharAggs: charAggs,
	}, nil
}

func runIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}
