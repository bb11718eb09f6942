// Package logfields defines canonical slog attribute keys shared by all packages.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyDocumentID = "document_id"
	KeyPath       = "path"
	KeyTarget     = "target"
	KeyBucket     = "bucket"
	KeyKey        = "key"
	KeyStage      = "stage"
	KeyMode       = "mode"
	KeyLayout     = "layout"
	KeyFragment   = "fragment"
	KeyField      = "field"
	KeyFeed       = "feed"
	KeySubject    = "subject"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"

	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRequestID  = "request_id"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func DocumentID(id string) slog.Attr   { return slog.String(KeyDocumentID, id) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Target(name string) slog.Attr     { return slog.String(KeyTarget, name) }
func Bucket(b string) slog.Attr        { return slog.String(KeyBucket, b) }
func Key(k string) slog.Attr           { return slog.String(KeyKey, k) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func Layout(ref string) slog.Attr      { return slog.String(KeyLayout, ref) }
func Fragment(id string) slog.Attr     { return slog.String(KeyFragment, id) }
func Field(name string) slog.Attr      { return slog.String(KeyField, name) }
func Feed(name string) slog.Attr       { return slog.String(KeyFeed, name) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
