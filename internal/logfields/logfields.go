package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build.id"
	KeyDocument   = "document"
	KeyLink       = "link"
	KeyKind       = "kind"
	KeySeries     = "series"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Document(path string) slog.Attr  { return slog.String(KeyDocument, path) }
func Link(link string) slog.Attr      { return slog.String(KeyLink, link) }
func Kind(kind string) slog.Attr      { return slog.String(KeyKind, kind) }
func Series(title string) slog.Attr   { return slog.String(KeySeries, title) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
