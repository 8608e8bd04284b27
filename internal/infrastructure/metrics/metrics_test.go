package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(ImagesTotal.WithLabelValues("nai-diffusion-3"))

	RecordGeneration("nai-diffusion-3", "success", 1.5, 2)
	RecordGeneration("", "validation", 0, 0)

	assert.Equal(t, before+2, testutil.ToFloat64(ImagesTotal.WithLabelValues("nai-diffusion-3")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(GenerationsTotal.WithLabelValues("unknown", "validation")), 1.0)
}

func TestRecordUpstreamAndFrames(t *testing.T) {
	before := testutil.ToFloat64(UpstreamResponsesTotal.WithLabelValues("402"))
	truncated := testutil.ToFloat64(TruncatedStreamsTotal)

	RecordUpstreamStatus(402)
	RecordFrame("")
	RecordTruncatedStream()

	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamResponsesTotal.WithLabelValues("402")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(StreamFramesTotal.WithLabelValues("unknown")), 1.0)
	assert.Equal(t, truncated+1, testutil.ToFloat64(TruncatedStreamsTotal))
}

func TestRecordRequest(t *testing.T) {
	RecordRequest("GET", "/healthz", 200, 0.01)

	assert.GreaterOrEqual(t, testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/healthz", "200")), 1.0)
}
