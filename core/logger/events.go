package logger

// OperationResult is the outcome of an operation like a login.
type OperationResult string

const (
	OperationResultSuccess OperationResult = "SUCCESS"
	OperationResultFailure OperationResult = "FAILURE"
)

// LogEntry is a single recorded event. Exactly one of the event fields is
// set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	LoginAttempt  *LoginAttempt  `json:"login_attempt,omitempty"`
	RunPipeline   *RunPipeline   `json:"run_pipeline,omitempty"`
	PipelineError *PipelineError `json:"pipeline_error,omitempty"`
	Panic         *Panic         `json:"panic,omitempty"`
}

// LogType is implemented by every event that can be stored in a LogEntry.
type LogType interface {
	setOn(le *LogEntry)
}

// GetLogType returns the event held by the entry or nil.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.LoginAttempt != nil:
		return le.LoginAttempt
	case le.RunPipeline != nil:
		return le.RunPipeline
	case le.PipelineError != nil:
		return le.PipelineError
	case le.Panic != nil:
		return le.Panic
	default:
		return nil
	}
}

// LoginAttempt is recorded for every SSH authentication attempt.
type LoginAttempt struct {
	Result     OperationResult `json:"result"`
	Username   string          `json:"username"`
	Password   string          `json:"password,omitempty"`
	PublicKey  []byte          `json:"public_key,omitempty"`
	RemoteAddr string          `json:"remote_addr,omitempty"`
	RawCommand string          `json:"raw_command,omitempty"`
}

func (e *LoginAttempt) setOn(le *LogEntry) { le.LoginAttempt = e }

// RunPipeline is recorded when a pipeline ran to completion.
type RunPipeline struct {
	Line     string   `json:"line"`
	Commands []string `json:"commands"`
	Records  int      `json:"records"`
}

func (e *RunPipeline) setOn(le *LogEntry) { le.RunPipeline = e }

// PipelineError is recorded when a line failed to parse, bind or run.
type PipelineError struct {
	Line    string `json:"line"`
	Kind    string `json:"kind"`
	Stage   int    `json:"stage,omitempty"`
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
}

func (e *PipelineError) setOn(le *LogEntry) { le.PipelineError = e }

// Panic is recorded when a command panicked.
type Panic struct {
	Context    string `json:"context"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

func (e *Panic) setOn(le *LogEntry) { le.Panic = e }
