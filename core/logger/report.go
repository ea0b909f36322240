package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

func NewBugReport() *BugReport {
	return &BugReport{
		UnhandledErrors: NewPathCounter("command", "error"),
		UnknownCommands: NewPathCounter("command"),
	}
}

// BugReport pulls events that are likely bugs in the interpreter or
// commands that attackers expected to exist.
type BugReport struct {
	LogEntries int

	UnhandledErrors *PathCounter `json:"unhandled_errors"`
	UnknownCommands *PathCounter `json:"unknown_commands"`
	Panics          []*Panic     `json:"panics"`
}

func (r *BugReport) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *Panic:
		r.Panics = append(r.Panics, event)
	case *PipelineError:
		switch event.Kind {
		case "not_found":
			r.UnknownCommands.Increment(event.Command)
		case "unhandled":
			r.UnhandledErrors.Increment(event.Command, event.Message)
		}
	}
}

type InteractionReport struct {
	// Map of sessionID -> interactions
	interactions map[string]*InteractiveSession
}

type InteractiveSession struct {
	Login struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		PublicKey  []byte `json:"public_key,omitempty"`
		RemoteAddr string `json:"remote_addr,omitempty"`
	} `json:"login"`
	LogEntries int `json:"log_entries"`

	Lines  []string `json:"lines"`
	Errors []string `json:"errors"`
}

func (i *InteractiveSession) Update(le *LogEntry) {
	i.LogEntries++

	switch event := le.GetLogType().(type) {
	case *LoginAttempt:
		i.Login.Password = event.Password
		i.Login.Username = event.Username
		i.Login.PublicKey = event.PublicKey
		i.Login.RemoteAddr = event.RemoteAddr
	case *RunPipeline:
		i.Lines = append(i.Lines, event.Line)
	case *PipelineError:
		i.Lines = append(i.Lines, event.Line)
		i.Errors = append(i.Errors, event.Message)
	}
}

func (i *InteractionReport) init() {
	if i.interactions == nil {
		i.interactions = make(map[string]*InteractiveSession)
	}
}

// MarshalJSON implemnts custom JSON marshaler.
func (i *InteractionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.interactions)
}

// Session returns the interactions of a single session, nil if the session
// wasn't seen.
func (i *InteractionReport) Session(sessionID string) *InteractiveSession {
	i.init()

	return i.interactions[sessionID]
}

func (i *InteractionReport) Update(le *LogEntry) {
	i.init()

	sessionID := le.SessionID
	if sessionID == "" {
		return
	}
	report, ok := i.interactions[sessionID]
	if !ok {
		report = &InteractiveSession{}
		i.interactions[sessionID] = report
	}

	report.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	LoginAttempt  LoginAttemptReport  `json:"login_attempt_report"`
	RunPipeline   RunPipelineReport   `json:"run_pipeline_report"`
	PipelineError PipelineErrorReport `json:"pipeline_error_report"`
	Panic         PanicReport         `json:"panic_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.GetLogType().(type) {
	case *LoginAttempt:
		r.LoginAttempt.update(event)
	case *RunPipeline:
		r.RunPipeline.update(event)
	case *PipelineError:
		r.PipelineError.update(event)
	case *Panic:
		r.Panic.update(event)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type LoginAttemptReport struct {
	// List of passwords and their counts.
	Passwords StrCounter `json:"passwords"`
	// List of usernames and their counts.
	Usernames StrCounter `json:"usernames"`
	// List of login attempt results and their counts.
	Results StrCounter `json:"results"`
}

func (r *LoginAttemptReport) update(la *LoginAttempt) {
	r.Passwords.Increment(la.Password)
	r.Usernames.Increment(la.Username)
	r.Results.Increment(string(la.Result))
}

type RunPipelineReport struct {
	Count int `json:"count"`
	// Canonical names of the commands in each stage.
	CommandNames StrCounter `json:"command_names"`
	// Number of stages per pipeline.
	Lengths StrCounter `json:"lengths"`
}

func (r *RunPipelineReport) update(rp *RunPipeline) {
	r.Count++
	for _, name := range rp.Commands {
		r.CommandNames.Increment(name)
	}
	r.Lengths.Increment(fmt.Sprintf("%d", len(rp.Commands)))
}

type PipelineErrorReport struct {
	Kinds        StrCounter `json:"kinds"`
	CommandNames StrCounter `json:"command_names"`
}

func (r *PipelineErrorReport) update(pe *PipelineError) {
	r.Kinds.Increment(pe.Kind)
	if pe.Command != "" {
		r.CommandNames.Increment(pe.Command)
	}
}

type PanicReport struct {
	Contexts []string `json:"contexts"`
}

func (r *PanicReport) update(p *Panic) {
	r.Contexts = append(r.Contexts, p.Context)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the number of times key was seen.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of strings seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
