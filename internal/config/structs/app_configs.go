package structs

var (
	appConfig AppConfig
)

type AppConfig struct {
	Configs Configs
}

func (cfg *AppConfig) GetStaticConfig() interface{} {
	return &cfg.Configs
}

func GetAppConfig() *AppConfig {
	return &appConfig
}

type Configs struct {
	AppName                    string  `mapstructure:"app_name"`
	AppEnv                     string  `mapstructure:"app_env"`
	AuthTokens                 string  `mapstructure:"auth_tokens"`
	Port                       int     `mapstructure:"port"`
	InteractionConsumerIds     string  `mapstructure:"interaction_consumer_kafka_ids"`
	InteractionProducerId      int     `mapstructure:"interaction_producer_kafka_id"`
	DeadLetterProducerId       int     `mapstructure:"dead_letter_producer_kafka_id"`
	EmbeddingDimension         int     `mapstructure:"embedding_dimension"`
	DecayMode                  string  `mapstructure:"decay_mode"`
	DecayHalfLifeInSec         int     `mapstructure:"decay_half_life_in_sec"`
	DecayFloor                 float64 `mapstructure:"decay_floor"`
	UpdateMaxRetries           int     `mapstructure:"update_max_retries"`
	SimilarityDefaultLimit     int     `mapstructure:"similarity_default_limit"`
	DedupeLedgerTtlInSec       int     `mapstructure:"dedupe_ledger_ttl_in_sec"`
	StaleEmbeddingAfterDays    int     `mapstructure:"stale_embedding_after_days"`
	ReplayRatePerSecond        int     `mapstructure:"replay_rate_per_second"`
	EmbedderEnabled            bool    `mapstructure:"embedder_enabled"`
	StorageEmbeddingStoreCount int     `mapstructure:"storage_embedding_store_count"`
}
