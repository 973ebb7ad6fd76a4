package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chosenoffset/dicebag/pkg/dicebag"
	"github.com/chosenoffset/dicebag/pkg/dicebag/parser"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRollCmdReplaysRolls(t *testing.T) {
	out, err := execute(t, "roll", "3d6+2", "--rolls", "4,1,6")
	require.NoError(t, err)
	assert.Equal(t, "3d6+2: [4, 1, 6] + 2 = 13\n", out)
}

func TestRollCmdTimes(t *testing.T) {
	out, err := execute(t, "roll", "1d20", "2d4kh1", "--times", "2", "--rolls", "7,12,1,3,4,2")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"1d20: 7 = 7",
		"1d20: 12 = 12",
		"2d4kh1: [1, 3] = 3",
		"2d4kh1: [4, 2] = 4",
	}, "\n")+"\n", out)
}

func TestRollCmdErrors(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		_, err := execute(t, "roll", "abc")
		var parseErr *parser.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("limit error", func(t *testing.T) {
		_, err := execute(t, "roll", "5000d6")
		assert.True(t, dicebag.IsLimitError(err))
	})

	t.Run("bad times", func(t *testing.T) {
		_, err := execute(t, "roll", "1d6", "--times", "0")
		assert.ErrorContains(t, err, "--times")
	})

	t.Run("no notation", func(t *testing.T) {
		_, err := execute(t, "roll")
		assert.Error(t, err)
	})
}

func TestLimitsFromEnv(t *testing.T) {
	t.Setenv("DICEBAG_LIMIT_QUANTITY", "2")
	_, err := execute(t, "roll", "3d6")
	assert.True(t, dicebag.IsLimitError(err))
}

func TestEvalCmdIsDeterministicWithSeed(t *testing.T) {
	first, err := execute(t, "eval", "10d6", "--seed", "42")
	require.NoError(t, err)
	second, err := execute(t, "eval", "10d6", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	out, err := execute(t, "eval", "5-3")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestParseCmd(t *testing.T) {
	out, err := execute(t, "parse", "4D6KH3 - 1d4")
	require.NoError(t, err)
	assert.Equal(t, "notation: 4d6kh3-1d4\n"+
		"nodes:    3\n"+
		"min:      -1\n"+
		"max:      17\n", out)
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "parse", "1d6", "--log-level", "loud")
	assert.ErrorContains(t, err, "parse log level")
}

func TestDashboardWiring(t *testing.T) {
	a := &app{}
	require.NoError(t, a.setup(newRootCmd()))
	a.cfg.MaxClients = 1

	server, engine, err := a.newDashboard()
	require.NoError(t, err)
	defer server.Shutdown(context.Background())

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/roll?notation=2d6%2B1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record dicebag.RollRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, "2d6+1", record.Notation)
	assert.Len(t, record.Results, 1)
	assert.Equal(t, int64(1), engine.Collector().Snapshot().Rolls)
}

func TestRunServerStopsOnCancel(t *testing.T) {
	a := &app{}
	require.NoError(t, a.setup(newRootCmd()))
	a.cfg.Addr = "127.0.0.1:0"

	server, _, err := a.newDashboard()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, runServer(ctx, server, a.logger))
}

func TestPlanLoadMixesScenarios(t *testing.T) {
	requests := planLoad(rand.New(rand.NewSource(1)), 200)
	require.Len(t, requests, 200)

	var hostile int
	for _, req := range requests {
		assert.NotEmpty(t, req.notation)
		if req.hostile {
			hostile++
		}
	}
	assert.Greater(t, hostile, 0)
	assert.Less(t, hostile, 100)
}

func TestRunLoadAgainstDashboard(t *testing.T) {
	a := &app{}
	require.NoError(t, a.setup(newRootCmd()))

	server, engine, err := a.newDashboard()
	require.NoError(t, err)
	defer server.Shutdown(context.Background())

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	requests := planLoad(rand.New(rand.NewSource(7)), 60)
	report, err := runLoad(context.Background(), ts.Client(), ts.URL, requests, 4, a.logger)
	require.NoError(t, err)

	assert.Equal(t, int64(60), report.Sent)
	assert.Zero(t, report.Unexpected)
	assert.Equal(t, int64(60), report.Rolled+report.Rejected)

	stats := engine.Collector().Snapshot()
	assert.Equal(t, report.Rolled, stats.Rolls)
	assert.Equal(t, report.Rejected, stats.Rejected)

	var out bytes.Buffer
	printReport(&out, report)
	assert.Contains(t, out.String(), "unexpected: 0")
}

func TestRunLoadUnreachableTarget(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	requests := []loadRequest{{scenario: "character", notation: "1d6"}}
	_, err := runLoad(context.Background(), http.DefaultClient, url, requests, 1, zap.NewNop())
	assert.Error(t, err)
}
