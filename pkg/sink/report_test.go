package sink_test

import (
	"bytes"
	"testing"

	"github.com/herohde/ccmatch/pkg/sink"
	"github.com/herohde/ccmatch/pkg/stats"
	"github.com/stretchr/testify/assert"
)

func TestCuteChessReporterPrintInterval(t *testing.T) {
	sb := stats.NewScoreBoard()
	sb.RecordGame("engineA", "engineB", 1)
	sb.RecordGame("engineA", "engineB", 0.5)

	var buf bytes.Buffer
	r := sink.NewCuteChessReporter(&buf, nil)
	r.PrintInterval(sb, 2, 10)

	out := buf.String()
	assert.Contains(t, out, "Score of engineA vs engineB: 1 - 0 - 1")
	assert.Contains(t, out, "Games played: 2 of 10")
}

func TestNativeReporterPrintResultWithSPRT(t *testing.T) {
	sb := stats.NewScoreBoard()
	sb.RecordGame("engineA", "engineB", 1)
	sb.RecordGame("engineA", "engineB", 1)

	cfg := stats.SPRTConfig{Elo0: 0, Elo1: 5, Alpha: 0.05, Beta: 0.05}
	var buf bytes.Buffer
	r := sink.NewNativeReporter(&buf, &cfg)

	key, e := sb.Pair("engineA", "engineB")
	r.PrintResult(key, *e)

	out := buf.String()
	assert.Contains(t, out, "engineA vs engineB")
	assert.Contains(t, out, "sprt llr:")
}
