package adapters

import (
	"sort"

	"github.com/rtao-god/solsignal-reports/pkg/models/api"
	"github.com/rtao-god/solsignal-reports/pkg/models/store"
)

func MapStoreRefreshStateToAPI(s *store.RefreshState) api.RefreshState {
	return api.RefreshState{
		Kind:          s.Kind,
		LastAttemptAt: s.LastAttemptAt,
		LastSuccessAt: s.LastSuccessAt,
		LastError:     s.LastError,
	}
}

// MapRefreshOutcomeToAPI splits the refreshed kinds into successes and failures.
func MapRefreshOutcomeToAPI(kinds []string, failures map[string]error) api.RefreshResult {
	result := api.RefreshResult{
		Refreshed: []string{},
		Failed:    make(map[string]string, len(failures)),
	}
	for _, k := range kinds {
		if err, failed := failures[k]; failed {
			result.Failed[k] = err.Error()
			continue
		}
		result.Refreshed = append(result.Refreshed, k)
	}
	sort.Strings(result.Refreshed)
	return result
}
