package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyRuleset    = "ruleset"
	KeyGuideline  = "guideline"
	KeyCategory   = "category"
	KeyPath       = "path"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Ruleset(name string) slog.Attr    { return slog.String(KeyRuleset, name) }
func Guideline(id string) slog.Attr    { return slog.String(KeyGuideline, id) }
func Category(name string) slog.Attr   { return slog.String(KeyCategory, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Page(p string) slog.Attr          { return slog.String(KeyPage, p) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
