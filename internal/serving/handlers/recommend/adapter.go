package recommend

import (
	"strings"

	"github.com/myshop/affinity/internal/repositories/vector"
)

// adaptMatches converts index matches to API results. The store prefix on
// entity ids is an internal detail and never leaves the service.
func adaptMatches(matches []vector.Match) []Result {
	results := make([]Result, 0, len(matches))
	for _, match := range matches {
		id := match.EntityId
		if idx := strings.Index(id, ":"); idx >= 0 {
			id = id[idx+1:]
		}
		results = append(results, Result{Id: id, Score: match.Score})
	}
	return results
}
