package publish

import (
	"encoding/json"
	"fmt"

	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// Result is returned by every orchestrator operation. Err is set only for
// failures that aborted the whole request; per-document failures show up
// as Success=false with the reason in Log.
type Result struct {
	Success bool
	Log     []string
	Err     error
}

// Logf appends a formatted log line.
func (r *Result) Logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Fail marks the result as aborted by err.
func (r *Result) Fail(err error) *Result {
	r.Success = false
	r.Err = err
	r.Log = append(r.Log, "error: "+derrors.Describe(err))
	return r
}

type resultJSON struct {
	Success bool     `json:"success"`
	Log     []string `json:"log"`
	Error   string   `json:"error,omitempty"`
}

// MarshalJSON renders {success, log, error}.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Success: r.Success, Log: r.Log}
	if out.Log == nil {
		out.Log = []string{}
	}
	if r.Err != nil {
		out.Error = derrors.Describe(r.Err)
	}
	return json.Marshal(out)
}
