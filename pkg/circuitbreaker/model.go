package circuitbreaker

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config defines the configuration for a circuit breaker: thresholds for
// failures and successes, state transition delays, and windowing periods
// for threshold calculations.
type Config struct {
	// Enabled determines whether the circuit breaker is active.
	// When set to false, the circuit breaker logic is bypassed, and all requests pass through.
	Enabled bool

	// Name is a unique identifier for the circuit breaker, used in logging and monitoring.
	Name string

	// Version specifies the circuit breaker implementation version.
	Version int

	// FailureCountThreshold is the numerator in the ratio of failures to total
	// executions that must be met or exceeded to trip the circuit into OpenState.
	// Example: FailureCountThreshold 5 with FailureCountWindow 10 means the circuit
	// opens if 5 out of the last 10 executions fail.
	FailureCountThreshold int

	// FailureCountWindow is the total number of recent executions considered when
	// evaluating FailureCountThreshold.
	FailureCountWindow int

	// FailureRateThreshold is the percentage of failures (1 to 100) required for
	// time-based failure thresholding. The circuit trips into OpenState if the
	// failure rate exceeds this threshold within FailureRateWindowInMs, provided
	// that executions exceed FailureRateMinimumWindow.
	FailureRateThreshold int

	// FailureRateMinimumWindow sets the minimum number of executions required before
	// evaluating the failure rate threshold. This prevents premature circuit tripping
	// in low-traffic scenarios.
	FailureRateMinimumWindow int

	// FailureRateWindowInMs defines the rolling time window (in milliseconds) over
	// which failures and successes are measured.
	FailureRateWindowInMs int

	// SuccessCountThreshold specifies the success ratio used for recovery in
	// HalfOpenState. The circuit transitions back to ClosedState if the success
	// ratio during the recovery period meets or exceeds this threshold.
	SuccessCountThreshold int

	// SuccessCountWindow sets the total number of executions considered when
	// evaluating the success ratio in HalfOpenState.
	SuccessCountWindow int

	// WithDelayInMS specifies the delay (in milliseconds) before state transitions,
	// such as moving to HalfOpenState, to allow for system stabilization.
	WithDelayInMS int
}

func BuildConfig(serviceName string) *Config {
	cbConfig := Config{
		Enabled: false,
	}

	// Check if circuit breaker is enabled
	if viper.IsSet(serviceName+CBEnabled) && viper.GetBool(serviceName+CBEnabled) {
		cbConfig.Enabled = true
		validateConfigs(serviceName)
		// Load configuration properties
		cbConfig.Name = viper.GetString(serviceName + CBName)
		cbConfig.FailureRateThreshold = viper.GetInt(serviceName + CBFailureRateThreshold)
		cbConfig.FailureRateMinimumWindow = viper.GetInt(serviceName + CBFailureRateMinimumWindow)
		cbConfig.FailureRateWindowInMs = viper.GetInt(serviceName + CBFailureRateWindowInMs)
		cbConfig.FailureCountThreshold = viper.GetInt(serviceName + CBFailureCountThreshold)
		cbConfig.FailureCountWindow = viper.GetInt(serviceName + CBFailureCountWindow)
		cbConfig.SuccessCountThreshold = viper.GetInt(serviceName + CBSuccessCountThreshold)
		cbConfig.SuccessCountWindow = viper.GetInt(serviceName + CBSuccessCountWindow)
		cbConfig.WithDelayInMS = viper.GetInt(serviceName + CBWithDelayInMS)
		cbConfig.Version = viper.GetInt(serviceName + CBVersion)
		// Validation: Ensure either time-based or count-based failure threshold is set
		if (cbConfig.FailureRateThreshold == 0 || cbConfig.FailureRateMinimumWindow == 0 || cbConfig.FailureRateWindowInMs == 0) &&
			(cbConfig.FailureCountThreshold == 0 || cbConfig.FailureCountWindow == 0) {
			log.Panic().Msgf("%s: Configuration invalid, neither time-based nor count-based failure thresholds are fully defined", serviceName)
		}
	}

	return &cbConfig
}

func validateConfigs(serviceName string) {
	// Mandatory configuration checks
	if !viper.IsSet(serviceName + CBName) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBName)
	}
	if !viper.IsSet(serviceName+CBFailureRateThreshold) && !viper.IsSet(serviceName+CBFailureCountThreshold) {
		log.Panic().Msgf("%s: Neither time-based nor count-based failure thresholds are set", serviceName)
	}
	if !viper.IsSet(serviceName+CBFailureRateMinimumWindow) && viper.IsSet(serviceName+CBFailureRateThreshold) {
		log.Panic().Msgf("%s-%s not set, required for time-based failure thresholding", serviceName, CBFailureRateMinimumWindow)
	}
	if !viper.IsSet(serviceName+CBFailureRateWindowInMs) && viper.IsSet(serviceName+CBFailureRateThreshold) {
		log.Panic().Msgf("%s-%s not set, required for time-based failure thresholding", serviceName, CBFailureRateWindowInMs)
	}
	if !viper.IsSet(serviceName + CBSuccessCountThreshold) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBSuccessCountThreshold)
	}
	if !viper.IsSet(serviceName + CBSuccessCountWindow) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBSuccessCountWindow)
	}
	if !viper.IsSet(serviceName + CBVersion) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBVersion)
	}
	if !viper.IsSet(serviceName + CBWithDelayInMS) {
		log.Panic().Msgf("%s-%s not set", serviceName, CBWithDelayInMS)
	}
}
