package vector

import (
	"sync"
)

var (
	vectorDb       Database
	syncOnce       sync.Once
	DefaultVersion = 1
)

func NewRepository(version int) Database {
	switch version {
	case DefaultVersion:
		return initQdrantInstance()
	default:
		return nil
	}
}

func SetInstance(provider Database) {
	vectorDb = provider
	syncOnce.Do(func() {}) // Marking the sync once as done
}
