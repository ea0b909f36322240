package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordSession(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	log := NewJsonLinesLogRecorder(&buf)
	session := log.NewSession()

	events := []LogType{
		&LoginAttempt{Result: OperationResultSuccess, Username: "administrator", Password: "Winter2021!", RemoteAddr: "10.0.0.99:51234"},
		&RunPipeline{Line: "Get-ADComputer -Filter * | ft", Commands: []string{"Get-ADComputer", "Format-Table"}, Records: 3},
		&PipelineError{Line: "Get-Foo", Kind: "not_found", Stage: 1, Command: "Get-Foo", Message: "The term 'Get-Foo' is not recognized"},
		&PipelineError{Line: "Get-NetRoute -ComputerName WS99", Kind: "unhandled", Stage: 1, Command: "Get-NetRoute", Message: "The RPC server is unavailable."},
		&Panic{Context: "Sort-Object"},
	}
	for _, event := range events {
		require.NoError(t, session.Record(event))
	}
	require.NoError(t, log.Sessionless().Record(&LoginAttempt{Result: OperationResultFailure, Username: "root", Password: "toor"}))

	return &buf, session.SessionID()
}

func TestNewJsonLinesLogRecorder(t *testing.T) {
	buf, sessionID := recordSession(t)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, sessionID, first["session_id"])
	assert.Contains(t, first, "timestamp_micros")
	assert.Contains(t, first, "login_attempt")
	assert.NotContains(t, first, "run_pipeline")

	assert.NotContains(t, lines[5], "session_id")
}

func TestReadJSONLinesLog(t *testing.T) {
	buf, sessionID := recordSession(t)

	var entries []*LogEntry
	require.NoError(t, ReadJSONLinesLog(buf, func(le *LogEntry) {
		entries = append(entries, le)
	}))
	require.Len(t, entries, 6)

	assert.Equal(t, sessionID, entries[1].SessionID)
	rp, ok := entries[1].GetLogType().(*RunPipeline)
	require.True(t, ok)
	assert.Equal(t, []string{"Get-ADComputer", "Format-Table"}, rp.Commands)
	assert.Equal(t, 3, rp.Records)

	assert.Nil(t, (&LogEntry{}).GetLogType())

	err := ReadJSONLinesLog(strings.NewReader("{not json"), func(*LogEntry) {})
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	buf, _ := recordSession(t)

	report := &Report{}
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	assert.Equal(t, 6, report.LogEntries)
	assert.Equal(t, map[string]int{"SUCCESS": 1, "FAILURE": 1}, report.LoginAttempt.Results.internal)
	assert.Equal(t, map[string]int{"administrator": 1, "root": 1}, report.LoginAttempt.Usernames.internal)
	assert.Equal(t, 1, report.RunPipeline.Count)
	assert.Equal(t, map[string]int{"Get-ADComputer": 1, "Format-Table": 1}, report.RunPipeline.CommandNames.internal)
	assert.Equal(t, map[string]int{"2": 1}, report.RunPipeline.Lengths.internal)
	assert.Equal(t, map[string]int{"not_found": 1, "unhandled": 1}, report.PipelineError.Kinds.internal)
	assert.Equal(t, []string{"Sort-Object"}, report.Panic.Contexts)

	out, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"run_pipeline_report"`)
	assert.NotContains(t, string(out), `"unknown_log_entries":{`)
}

func TestReport_invalidEntries(t *testing.T) {
	report := &Report{}
	report.Update(&LogEntry{})

	assert.Equal(t, map[string]int{"<nil>": 1}, report.InvalidEntries.internal)
}

func TestBugReport(t *testing.T) {
	buf, _ := recordSession(t)

	report := NewBugReport()
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	assert.Len(t, report.Panics, 1)
	assert.Equal(t, map[string]int{toKey("Get-Foo"): 1}, report.UnknownCommands.internal)
	assert.Equal(t, map[string]int{toKey("Get-NetRoute", "The RPC server is unavailable."): 1}, report.UnhandledErrors.internal)
}

func TestInteractionReport(t *testing.T) {
	buf, sessionID := recordSession(t)

	report := &InteractionReport{}
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	session := report.Session(sessionID)
	require.NotNil(t, session)
	assert.Equal(t, "administrator", session.Login.Username)
	assert.Equal(t, "10.0.0.99:51234", session.Login.RemoteAddr)
	assert.Equal(t, 5, session.LogEntries)
	assert.Equal(t, []string{
		"Get-ADComputer -Filter * | ft",
		"Get-Foo",
		"Get-NetRoute -ComputerName WS99",
	}, session.Lines)
	assert.Len(t, session.Errors, 2)

	assert.Nil(t, report.Session("missing"))

	out, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), sessionID)
}

func TestPathCounter(t *testing.T) {
	ctr := NewPathCounter("command", "error")
	ctr.Increment("a", "x")
	ctr.Increment("b", "y")
	ctr.Increment("b", "y")

	out, err := json.Marshal(ctr)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"count": 2, "event": {"command": "b", "error": "y"}},
		{"count": 1, "event": {"command": "a", "error": "x"}}
	]`, string(out))

	assert.Panics(t, func() { ctr.Increment("only-one") })
}
