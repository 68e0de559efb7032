package inmemorycache

import (
	"runtime/debug"
	"time"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/myshop/affinity/pkg/metric"
)

const (
	metricUpdateInterval = 1 * time.Minute
	infiniteExpiry       = -1
)

type V1 struct {
	inMemCache *freecache.Cache
}

func newV1InMemoryCache() InMemoryCache {
	if !viper.IsSet(inMemoryCacheSizeInBytes) {
		log.Panic().Msgf("env::IN_MEMORY_CACHE_SIZE_IN_BYTES is not set !!")
	}
	sizeInBytes := viper.GetInt(inMemoryCacheSizeInBytes)

	if !viper.IsSet(appGCPercentage) {
		log.Warn().Msgf("env::APP_GC_PERCENTAGE is not set")
	} else {
		debug.SetGCPercent(viper.GetInt(appGCPercentage))
	}
	v1InMemoryCache := &V1{
		inMemCache: freecache.NewCache(sizeInBytes),
	}
	go v1InMemoryCache.publishMetric()
	return v1InMemoryCache
}

func (imc *V1) Get(key []byte) ([]byte, error) {
	return imc.inMemCache.Get(key)
}

func (imc *V1) Set(key, value []byte) error {
	return imc.inMemCache.Set(key, value, infiniteExpiry)
}

func (imc *V1) SetEx(key, value []byte, expiryInSec int) error {
	return imc.inMemCache.Set(key, value, expiryInSec)
}

func (imc *V1) Delete(key []byte) bool {
	return imc.inMemCache.Del(key)
}

// publishMetric publishes the in-memory-cache metrics every 1 min, configured by metricUpdateInterval
func (imc *V1) publishMetric() {
	ticker := time.NewTicker(metricUpdateInterval)
	defer ticker.Stop()
	for range ticker.C {
		metric.Gauge(HitRate, imc.inMemCache.HitRate(), nil)
		metric.Gauge(ItemCount, float64(imc.inMemCache.EntryCount()), nil)
		metric.Gauge(EvacuateCount, float64(imc.inMemCache.EvacuateCount()), nil)
		metric.Gauge(ExpiryCount, float64(imc.inMemCache.ExpiredCount()), nil)
	}
}
