package tracing

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// setup configures viper and env for tests and returns a cleanup function.
func setup() func() {
	viper.Set(enabledKey, true)
	viper.Set("APP_NAME", "test-app")
	viper.SetDefault(samplerArgEnv, 0.1)
	os.Setenv(endpointEnv, "localhost:4317")

	return func() {
		if tp != nil {
			tp.Shutdown(context.Background())
		}
		tp = nil
		once = sync.Once{}
		initialized = false
		os.Unsetenv(endpointEnv)
		viper.Reset()
	}
}

func TestInit(t *testing.T) {
	t.Run("should initialize tracer provider successfully", func(t *testing.T) {
		cleanup := setup()
		defer cleanup()

		assert.Nil(t, tp)

		Init()

		assert.NotNil(t, tp)
		assert.IsType(t, &trace.TracerProvider{}, tp)
		assert.Equal(t, tp, otel.GetTracerProvider())
	})

	t.Run("should stay uninitialized when disabled", func(t *testing.T) {
		cleanup := setup()
		defer cleanup()
		viper.Set(enabledKey, false)

		Init()

		assert.Nil(t, tp)
		assert.False(t, initialized)
	})
}

func TestTracerInstance(t *testing.T) {
	t.Run("should return a working tracer after Init", func(t *testing.T) {
		cleanup := setup()
		defer cleanup()

		Init()
		tracer := GetTracer("test-app")
		assert.NotNil(t, tracer)

		spanCtx, span := tracer.Start(context.Background(), "test-span")
		assert.NotNil(t, spanCtx)
		assert.NotNil(t, span)
		span.End()
	})

	t.Run("should return a noop tracer before Init", func(t *testing.T) {
		cleanup := setup()
		defer cleanup()
		tp = nil

		tracer := GetTracer("test-app")
		assert.IsType(t, noop.Tracer{}, tracer)
	})
}

func TestShutdownTracer(t *testing.T) {
	t.Run("should not panic when tracer provider is nil", func(t *testing.T) {
		cleanup := setup()
		defer cleanup()
		tp = nil

		assert.NotPanics(t, ShutdownTracer)
	})

	t.Run("should shutdown the tracer provider", func(t *testing.T) {
		cleanup := setup()
		defer cleanup()

		Init()
		assert.NotNil(t, tp)

		assert.NotPanics(t, ShutdownTracer)
	})
}
