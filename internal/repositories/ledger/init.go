package ledger

import (
	"sync"

	"github.com/myshop/affinity/pkg/ds"
)

var (
	queryCache     *ds.SyncMap[string, string]
	dedupeLedger   Ledger
	once           sync.Once
	DefaultVersion = 1
)

func NewRepository(version int) Ledger {
	switch version {
	case DefaultVersion:
		return initScyllaLedger()
	default:
		return nil
	}
}

func SetInstance(provider Ledger) {
	dedupeLedger = provider
	once.Do(func() {}) // Marking the sync once as done
}
