// Package build reports which build of the dispenser is running. Release
// builds inject a JSON blob through -ldflags; other builds fall back to the
// module information the Go toolchain embeds.
package build

import (
	"encoding/json"
	"log/slog"
	"runtime/debug"
)

// Info describes one build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"` //nolint:tagliatelle
	GitDate   string `json:"git_date"`   //nolint:tagliatelle
	Dirty     bool   `json:"dirty"`
	GoVersion string `json:"go_version"` //nolint:tagliatelle
}

// Parse deserializes injected build info. It returns false if js is empty,
// "{}", or not valid JSON.
func Parse(js string) (Info, bool) {
	if js == "" || js == "{}" {
		return Info{}, false
	}

	var info Info

	if err := json.Unmarshal([]byte(js), &info); err != nil {
		slog.Warn("Failed to parse build info from JSON", "data", js, "error", err)

		return Info{}, false
	}

	return info, true
}

// FromModule extracts build info from the toolchain's embedded data.
func FromModule(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   bi.Main.Version,
		GoVersion: bi.GoVersion,
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.GitCommit = setting.Value
		case "vcs.time":
			info.GitDate = setting.Value
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}

	return info
}

// Current prefers injected info and falls back to the embedded module info.
func Current(injected string) Info {
	if info, ok := Parse(injected); ok {
		return info
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		return FromModule(bi)
	}

	return Info{Version: "unknown"}
}

// LogValue groups the non-empty fields for structured logs.
func (i Info) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 5) //nolint:mnd

	for _, kv := range []struct{ key, val string }{
		{"version", i.Version},
		{"git_commit", i.GitCommit},
		{"git_date", i.GitDate},
		{"go_version", i.GoVersion},
	} {
		if kv.val != "" {
			attrs = append(attrs, slog.String(kv.key, kv.val))
		}
	}

	if i.Dirty {
		attrs = append(attrs, slog.Bool("dirty", true))
	}

	return slog.GroupValue(attrs...)
}
