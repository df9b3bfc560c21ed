package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/pipewright/internal/hcl"
	"github.com/specialistvlad/pipewright/internal/report"
	"github.com/specialistvlad/pipewright/internal/result"
	"github.com/specialistvlad/pipewright/internal/testutil"
)

// runResult is everything a system test needs to assert on one full run.
type runResult struct {
	Code   int
	Err    error
	Output string
}

// runPipeline writes the given files to a temp dir, wires a full App around
// the scripted executor, and performs one run end to end. The pipeline
// document must be named pipeline.hcl and the event event.yaml.
func runPipeline(t *testing.T, files map[string]string, exec *testutil.ScriptedExecutor) runResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	appConfig, err := NewConfig(Config{
		PipelinePath: filepath.Join(dir, "pipeline.hcl"),
		EventPath:    filepath.Join(dir, "event.yaml"),
		WorkDir:      dir,
		LogLevel:     "debug",
	})
	require.NoError(t, err)

	outW := &testutil.SafeBuffer{}
	testApp := NewApp(outW, appConfig, hcl.NewLoader(), exec)

	t.Cleanup(func() {
		if os.Getenv("PW_TEST_LOGS") == "true" {
			t.Logf("--- Full Output for %s ---\n%s", t.Name(), outW.String())
		}
	})

	code, runErr := testApp.Run(context.Background())
	return runResult{Code: code, Err: runErr, Output: outW.String()}
}

const basicPipeline = `
pipeline "ci" {
  on {
    push {
      branches = ["master"]
    }
  }

  job "build" {
    step "checkout" {
      uses = "checkout"
    }
    step "test" {
      run = "go test ./..."
    }
  }
}
`

const pushMasterEvent = `
kind: push
branch: master
`

func TestRun_PushEvent_AllStepsSucceed(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"pipeline.hcl": basicPipeline,
		"event.yaml":   pushMasterEvent,
	}
	exec := testutil.NewScriptedExecutor()

	res := runPipeline(t, files, exec)

	require.NoError(t, res.Err)
	assert.Equal(t, report.ExitSuccess, res.Code)
	assert.Contains(t, res.Output, "pipeline succeeded")
	assert.Contains(t, res.Output, "build")
	require.Len(t, exec.Invocations(), 2, "checkout and test should each run once")
}

func TestRun_FailingStep_ExitsOne(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"pipeline.hcl": basicPipeline,
		"event.yaml":   pushMasterEvent,
	}
	exec := testutil.NewScriptedExecutor().
		Script("go test ./...", testutil.Response{ExitCode: 101, Output: "thread 'main' panicked\n"})

	res := runPipeline(t, files, exec)

	require.NoError(t, res.Err)
	assert.Equal(t, report.ExitFailure, res.Code)
	assert.Contains(t, res.Output, "first failing step: test (exit code 101)")
	assert.Contains(t, res.Output, "| thread 'main' panicked", "retained step log should be attached")
	assert.Contains(t, res.Output, "pipeline failed")
}

func TestRun_FailedCheckout_SkipsLaterSteps(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"pipeline.hcl": basicPipeline,
		"event.yaml":   pushMasterEvent,
	}
	exec := testutil.NewScriptedExecutor().
		Script("git rev-parse --is-inside-work-tree", testutil.Response{ExitCode: 128})

	res := runPipeline(t, files, exec)

	require.NoError(t, res.Err)
	assert.Equal(t, report.ExitFailure, res.Code)
	assert.Contains(t, res.Output, "first failing step: checkout (exit code 128)")
	require.Len(t, exec.Invocations(), 1, "the test step must not run after checkout failed")
}

func TestRun_NonMatchingBranch_IsNoOp(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"pipeline.hcl": basicPipeline,
		"event.yaml":   "kind: push\nbranch: feature/lru\n",
	}
	exec := testutil.NewScriptedExecutor()

	res := runPipeline(t, files, exec)

	require.NoError(t, res.Err)
	assert.Equal(t, report.ExitSuccess, res.Code)
	assert.Contains(t, res.Output, "pipeline succeeded")
	assert.Empty(t, exec.Invocations(), "no step should run for a suppressed event")
}

func TestRun_PathsIgnore_SuppressesDocOnlyPush(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
pipeline "ci" {
  on {
    push {
      branches     = ["master"]
      paths_ignore = ["**.md", "docs/**"]
    }
  }

  job "build" {
    step "test" {
      run = "go test ./..."
    }
  }
}
`
	t.Run("every changed path ignored suppresses the run", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": pipelineHCL,
			"event.yaml":   "kind: push\nbranch: master\nchanged_paths:\n  - README.md\n  - docs/design/cache.md\n",
		}
		exec := testutil.NewScriptedExecutor()

		res := runPipeline(t, files, exec)

		require.NoError(t, res.Err)
		assert.Equal(t, report.ExitSuccess, res.Code)
		assert.Empty(t, exec.Invocations())
	})

	t.Run("one non-ignored path keeps the run", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": pipelineHCL,
			"event.yaml":   "kind: push\nbranch: master\nchanged_paths:\n  - README.md\n  - src/lib.rs\n",
		}
		exec := testutil.NewScriptedExecutor()

		res := runPipeline(t, files, exec)

		require.NoError(t, res.Err)
		assert.Equal(t, report.ExitSuccess, res.Code)
		require.Len(t, exec.Invocations(), 1)
	})
}

func TestRun_WorkflowDispatch(t *testing.T) {
	t.Parallel()
	dispatchEvent := "kind: workflow_dispatch\n"

	t.Run("declared dispatch trigger runs unconditionally", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": `
pipeline "ci" {
  on {
    push {
      branches = ["master"]
    }
    workflow_dispatch {}
  }

  job "build" {
    step "test" {
      run = "go test ./..."
    }
  }
}
`,
			"event.yaml": dispatchEvent,
		}
		exec := testutil.NewScriptedExecutor()

		res := runPipeline(t, files, exec)

		require.NoError(t, res.Err)
		assert.Equal(t, report.ExitSuccess, res.Code)
		require.Len(t, exec.Invocations(), 1)
	})

	t.Run("undeclared dispatch is a no-op", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": basicPipeline,
			"event.yaml":   dispatchEvent,
		}
		exec := testutil.NewScriptedExecutor()

		res := runPipeline(t, files, exec)

		require.NoError(t, res.Err)
		assert.Equal(t, report.ExitSuccess, res.Code)
		assert.Empty(t, exec.Invocations())
	})
}

func TestRun_MatrixJob_ReportsEachInstanceInOrder(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"pipeline.hcl": `
pipeline "ci" {
  on {
    push {}
  }

  env = {
    CARGO_TERM_COLOR = "always"
  }

  job "test" {
    strategy {
      matrix = {
        toolchain = ["stable", "beta"]
      }
    }
    step "test" {
      run = "cargo test"
    }
  }
}
`,
		"event.yaml": pushMasterEvent,
	}
	exec := testutil.NewScriptedExecutor()

	res := runPipeline(t, files, exec)

	require.NoError(t, res.Err)
	assert.Equal(t, report.ExitSuccess, res.Code)

	first := strings.Index(res.Output, "test (toolchain=stable)")
	second := strings.Index(res.Output, "test (toolchain=beta)")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second, "instances must report in declaration order")

	require.Len(t, exec.Invocations(), 2)
	var envs []string
	for _, inv := range exec.Invocations() {
		envs = append(envs, strings.Join(inv.Env, " "))
	}
	joined := strings.Join(envs, "\n")
	assert.Contains(t, joined, "MATRIX_TOOLCHAIN=stable")
	assert.Contains(t, joined, "MATRIX_TOOLCHAIN=beta")
	assert.Contains(t, joined, "CARGO_TERM_COLOR=always")
}

func TestRun_InvalidStrategy_FailsThatJobOnly(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"pipeline.hcl": `
pipeline "ci" {
  on {
    push {}
  }

  job "broken" {
    strategy {
      matrix = {
        os = []
      }
    }
    step "test" {
      run = "cargo test"
    }
  }

  job "lint" {
    step "fmt" {
      run = "cargo fmt --check"
    }
  }
}
`,
		"event.yaml": pushMasterEvent,
	}
	exec := testutil.NewScriptedExecutor()

	res := runPipeline(t, files, exec)

	require.NoError(t, res.Err)
	assert.Equal(t, report.ExitFailure, res.Code)
	assert.Contains(t, res.Output, "invalid strategy")
	assert.Contains(t, res.Output, "succeeded  lint", "the sibling job must still run")
	require.Len(t, exec.Invocations(), 1, "only the lint step should reach the executor")
}

func TestRun_InfrastructureError_ExitsTwo(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"pipeline.hcl": basicPipeline,
		"event.yaml":   pushMasterEvent,
	}
	exec := testutil.NewScriptedExecutor().
		Script("go test ./...", testutil.Response{Err: errors.New("runner agent unreachable")})

	res := runPipeline(t, files, exec)

	require.NoError(t, res.Err)
	assert.Equal(t, report.ExitInfrastructure, res.Code)
	assert.Contains(t, res.Output, "infrastructure:")
}

func TestRun_InvalidDocument_ReturnsError(t *testing.T) {
	t.Parallel()

	t.Run("step with both uses and run", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": `
pipeline "ci" {
  on {
    push {}
  }

  job "build" {
    step "test" {
      uses = "checkout"
      run  = "go test ./..."
    }
  }
}
`,
			"event.yaml": pushMasterEvent,
		}

		res := runPipeline(t, files, testutil.NewScriptedExecutor())

		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, result.ErrInvalidDocument)
		assert.Equal(t, report.ExitInfrastructure, res.Code)
	})

	t.Run("document without triggers", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": `
pipeline "ci" {
  job "build" {
    step "test" {
      run = "go test ./..."
    }
  }
}
`,
			"event.yaml": pushMasterEvent,
		}

		res := runPipeline(t, files, testutil.NewScriptedExecutor())

		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, result.ErrInvalidDocument)
		assert.Equal(t, report.ExitInfrastructure, res.Code)
	})

	t.Run("unknown action reference", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": `
pipeline "ci" {
  on {
    push {}
  }

  job "build" {
    step "setup" {
      uses = "actions/does-not-exist"
    }
  }
}
`,
			"event.yaml": pushMasterEvent,
		}

		res := runPipeline(t, files, testutil.NewScriptedExecutor())

		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, result.ErrInvalidDocument)
		assert.Equal(t, report.ExitInfrastructure, res.Code)
	})

	t.Run("unknown event kind", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipeline.hcl": basicPipeline,
			"event.yaml":   "kind: cron\n",
		}

		res := runPipeline(t, files, testutil.NewScriptedExecutor())

		require.Error(t, res.Err)
		assert.ErrorIs(t, res.Err, result.ErrInvalidDocument)
		assert.Equal(t, report.ExitInfrastructure, res.Code)
	})
}
