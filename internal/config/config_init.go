package config

import (
	"log"

	"github.com/spf13/viper"

	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/pkg/config"
)

func InitConfig(appConfig *structs.AppConfig) {
	config.InitEnv()
	staticConfig := appConfig.GetStaticConfig()
	cfg, ok := staticConfig.(*structs.Configs)
	if !ok {
		log.Fatal("Failed to cast static config to *Configs")
	}
	bindEnvVars()
	if err := viper.Unmarshal(cfg); err != nil {
		log.Fatalf("Failed to unmarshal config from environment: %v", err)
	}
}

func bindEnvVars() {
	viper.BindEnv("app_name", "APP_NAME")
	viper.BindEnv("app_env", "APP_ENV")
	viper.BindEnv("auth_tokens", "AUTH_TOKENS")
	viper.BindEnv("port", "PORT")
	viper.BindEnv("interaction_consumer_kafka_ids", "INTERACTION_CONSUMER_KAFKA_IDS")
	viper.BindEnv("interaction_producer_kafka_id", "INTERACTION_PRODUCER_KAFKA_ID")
	viper.BindEnv("dead_letter_producer_kafka_id", "DEAD_LETTER_PRODUCER_KAFKA_ID")
	viper.BindEnv("embedding_dimension", "EMBEDDING_DIMENSION")
	viper.BindEnv("decay_mode", "DECAY_MODE")
	viper.BindEnv("decay_half_life_in_sec", "DECAY_HALF_LIFE_IN_SEC")
	viper.BindEnv("decay_floor", "DECAY_FLOOR")
	viper.BindEnv("update_max_retries", "UPDATE_MAX_RETRIES")
	viper.BindEnv("similarity_default_limit", "SIMILARITY_DEFAULT_LIMIT")
	viper.BindEnv("dedupe_ledger_ttl_in_sec", "DEDUPE_LEDGER_TTL_IN_SEC")
	viper.BindEnv("stale_embedding_after_days", "STALE_EMBEDDING_AFTER_DAYS")
	viper.BindEnv("replay_rate_per_second", "REPLAY_RATE_PER_SECOND")
	viper.BindEnv("embedder_enabled", "EMBEDDER_ENABLED")
	viper.BindEnv("storage_embedding_store_count", "STORAGE_EMBEDDING_STORE_COUNT")
}
