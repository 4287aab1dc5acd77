package camunda

import (
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"renovation-matching/internal/common/metrics"
)

func TestInstrument_TracksActiveJobs(t *testing.T) {
	const taskType = "instrument-test"
	var during float64

	h := Instrument(taskType, func(worker.JobClient, entities.Job) {
		during = testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType))
	}, nil)
	h(nil, entities.Job{})

	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
}
