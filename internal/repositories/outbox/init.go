package outbox

import (
	"sync"

	"github.com/myshop/affinity/pkg/ds"
)

var (
	queryCache     *ds.SyncMap[string, string]
	eventLog       Repository
	once           sync.Once
	DefaultVersion = 1
)

func NewRepository(version int) Repository {
	switch version {
	case DefaultVersion:
		return initScyllaLog()
	default:
		return nil
	}
}

func SetInstance(provider Repository) {
	eventLog = provider
	once.Do(func() {}) // Marking the sync once as done
}
