package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/catnav/internal/config"
	"github.com/danielpatrickdp/catnav/internal/telemetry"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)

func testConfig(t *testing.T) config.Validation {
	t.Helper()
	cfg := config.DefaultValidation()
	cfg.OutputDir = t.TempDir()
	cfg.KuramotoN = 10
	return cfg
}

func TestKindNames(t *testing.T) {
	for _, k := range All() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	k, err := ParseKind(" Kuramoto ")
	require.NoError(t, err)
	assert.Equal(t, Kuramoto, k)

	_, err = ParseKind("graph")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestResultCounts(t *testing.T) {
	var empty Result
	assert.Zero(t, empty.SuccessRate())
	assert.True(t, empty.OK())

	r := newResult("x", fixedNow)
	r.claim("a", nil, true)
	r.claim("b", nil, false)
	r.claim("c", nil, true)
	assert.Equal(t, 2, r.Passed())
	assert.Equal(t, 3, r.Total())
	assert.InDelta(t, 2.0/3, r.SuccessRate(), 1e-12)
	assert.False(t, r.OK())
	assert.Equal(t, "2026-01-02 03:04:05", r.Timestamp)
}

func TestDeterministicValidatorsPass(t *testing.T) {
	cfg := testConfig(t)
	for _, k := range []Kind{Partition, Consciousness, Ternary, Completion} {
		t.Run(k.String(), func(t *testing.T) {
			res, err := k.Run(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, k.String(), res.Validator)
			assert.NotZero(t, res.Total())
			for claim, ok := range res.ClaimsValidated {
				assert.True(t, ok, "claim %s", claim)
				assert.Contains(t, res.Results, claim)
			}
		})
	}
}

func TestKuramotoValidatorShape(t *testing.T) {
	res, err := Kuramoto.Run(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.True(t, res.ClaimsValidated["phase_coherence_bounded"])
	assert.Contains(t, res.ClaimsValidated, "sync_above_critical")
	assert.Contains(t, res.ClaimsValidated, "order_param_converges")
	assert.Equal(t, 10, res.Parameters["n_oscillators"])
}

func TestValidatorIsSeeded(t *testing.T) {
	cfg := testConfig(t)
	a, err := Consciousness.Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Consciousness.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Results["bounds_correct"], b.Results["bounds_correct"])
}

func TestSuiteIsolatesFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	suite := NewSuite(testConfig(t), WithKinds(Partition, Kind(42)), WithMetrics(m))

	report, err := suite.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	bad := report.Results["Kind(42)"]
	assert.Contains(t, bad.Err, "unknown validator")

	good := report.Results["partition"]
	assert.Empty(t, good.Err)
	assert.True(t, good.Result.OK())

	validated, total := report.Claims()
	assert.Equal(t, 4, validated)
	assert.Equal(t, 4, total)
	assert.Equal(t, StatusExcellent, report.Status())
	assert.Equal(t, SuiteVersion, report.Metadata.Version)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Claims.WithLabelValues("partition", "passed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Claims.WithLabelValues("partition", "failed")))
}

func TestSuiteSkipAndParallel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Skip = []string{"kuramoto", "completion"}
	cfg.Parallel = true

	report, err := NewSuite(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Results, 3)
	assert.NotContains(t, report.Results, "kuramoto")
	assert.NotContains(t, report.Results, "completion")
}

func TestSuiteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSuite(testConfig(t), WithKinds(Partition)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveAndLoad(t *testing.T) {
	cfg := testConfig(t)
	report, err := NewSuite(cfg, WithKinds(Ternary, Kind(7))).Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, Save(cfg.OutputDir, report))
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "ternary", "ternary_results.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutputDir, "Kind(7)"))
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadReport(filepath.Join(cfg.OutputDir, AggregateFile))
	require.NoError(t, err)
	assert.Equal(t, report.Metadata, loaded.Metadata)
	assert.Equal(t, report.Results["Kind(7)"].Err, loaded.Results["Kind(7)"].Err)
	assert.Equal(t, report.Results["ternary"].Result.ClaimsValidated, loaded.Results["ternary"].Result.ClaimsValidated)
}

func TestStatusBands(t *testing.T) {
	cases := []struct {
		passed, total int
		want          Status
	}{
		{9, 10, StatusExcellent},
		{8, 10, StatusGood},
		{7, 10, StatusAcceptable},
		{6, 10, StatusNeedsWork},
		{0, 0, StatusNeedsWork},
	}
	for _, c := range cases {
		r := newResult("x", fixedNow)
		for i := 0; i < c.total; i++ {
			r.claim(string(rune('a'+i)), nil, i < c.passed)
		}
		report := Report{Results: map[string]Outcome{"x": {Result: r}}}
		assert.Equal(t, c.want, report.Status(), "%d/%d", c.passed, c.total)
	}
}
