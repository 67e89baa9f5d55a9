package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_NilContext(t *testing.T) {
	//lint:ignore SA1012 exercising the nil guard
	_, err := Init(nil, Config{Enabled: true}) //nolint:staticcheck
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_ExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{Enabled: true, ServiceName: "algoscope-test", Writer: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(context.Background(), "probe-span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "probe-span")
	assert.Contains(t, buf.String(), "algoscope-test")
}
