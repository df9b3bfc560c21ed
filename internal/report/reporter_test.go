package report

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pipewright/internal/logstore"
	"github.com/specialistvlad/pipewright/internal/result"
)

func succeeded(index int, label string) *result.InstanceResult {
	return &result.InstanceResult{
		Index:   index,
		JobName: label,
		Label:   label,
		Status:  result.InstanceSucceeded,
		Steps:   []result.StepResult{{Name: "test", Status: result.StepSucceeded}},
	}
}

func TestVerdict(t *testing.T) {
	t.Run("all succeeded", func(t *testing.T) {
		results := []*result.InstanceResult{succeeded(0, "a"), succeeded(1, "b")}
		assert.Equal(t, result.PipelineSucceeded, Verdict(results))
	})

	t.Run("empty run is a successful no-op", func(t *testing.T) {
		assert.Equal(t, result.PipelineSucceeded, Verdict(nil))
	})

	t.Run("any failed instance fails the pipeline", func(t *testing.T) {
		results := []*result.InstanceResult{
			succeeded(0, "a"),
			{Index: 1, Label: "b", Status: result.InstanceFailed},
		}
		assert.Equal(t, result.PipelineFailed, Verdict(results))
	})

	t.Run("a timed-out instance fails the pipeline", func(t *testing.T) {
		results := []*result.InstanceResult{
			{Index: 0, Label: "a", Status: result.InstanceTimedOut},
		}
		assert.Equal(t, result.PipelineFailed, Verdict(results))
	})
}

func TestExitCode(t *testing.T) {
	t.Run("success is zero", func(t *testing.T) {
		assert.Equal(t, ExitSuccess, ExitCode([]*result.InstanceResult{succeeded(0, "a")}))
	})

	t.Run("step failure is one", func(t *testing.T) {
		results := []*result.InstanceResult{
			{Index: 0, Label: "a", Status: result.InstanceFailed, Err: fmt.Errorf("%w: boom", result.ErrStepFailure)},
		}
		assert.Equal(t, ExitFailure, ExitCode(results))
	})

	t.Run("infrastructure error wins over step failure", func(t *testing.T) {
		results := []*result.InstanceResult{
			{Index: 0, Label: "a", Status: result.InstanceFailed, Err: fmt.Errorf("%w: boom", result.ErrStepFailure)},
			{Index: 1, Label: "b", Status: result.InstanceFailed, Err: fmt.Errorf("%w: agent gone", result.ErrInfrastructure)},
		}
		assert.Equal(t, ExitInfrastructure, ExitCode(results))
	})
}

func TestWrite(t *testing.T) {
	t.Run("summary lists instances in expansion order", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, nil).Write([]*result.InstanceResult{
			succeeded(0, "test (v=1)"),
			succeeded(1, "test (v=2)"),
		})

		out := buf.String()
		assert.Less(t, bytes.Index(buf.Bytes(), []byte("test (v=1)")), bytes.Index(buf.Bytes(), []byte("test (v=2)")))
		assert.Contains(t, out, "pipeline succeeded")
	})

	t.Run("failure names the first failing step and exit code", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, nil).Write([]*result.InstanceResult{{
			Index:  0,
			Label:  "test",
			Status: result.InstanceFailed,
			Err:    fmt.Errorf("%w: test exited", result.ErrStepFailure),
			Steps: []result.StepResult{
				{Name: "checkout", Status: result.StepSucceeded},
				{Name: "test", Status: result.StepFailed, ExitCode: 101},
				{Name: "package", Status: result.StepSkipped},
			},
		}})

		out := buf.String()
		assert.Contains(t, out, "first failing step: test (exit code 101)")
		assert.Contains(t, out, "pipeline failed")
	})

	t.Run("instance that failed before any step ran reports its error", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, nil).Write([]*result.InstanceResult{{
			Index:  0,
			Label:  "test",
			Status: result.InstanceFailed,
			Err:    fmt.Errorf("%w: axis %q has no values", result.ErrInvalidStrategy, "os"),
		}})

		out := buf.String()
		assert.Contains(t, out, `error: invalid strategy: axis "os" has no values`)
		assert.Contains(t, out, "pipeline failed")
	})

	t.Run("retained log lines are attached to failures", func(t *testing.T) {
		logs, err := logstore.New(4, 1024)
		require.NoError(t, err)
		logs.Put("test", "test", []byte("thread 'main' panicked\n"))

		var buf bytes.Buffer
		New(&buf, logs).Write([]*result.InstanceResult{{
			Index:  0,
			Label:  "test",
			Status: result.InstanceFailed,
			Steps:  []result.StepResult{{Name: "test", Status: result.StepFailed, ExitCode: 101}},
		}})

		assert.Contains(t, buf.String(), "| thread 'main' panicked")
	})
}
