package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jqian-ml/agent-finie/internal/finiedir"
)

// Emit writes a single JSON line to events.jsonl under the data dir when
// FINIE_OBSERVE_JSON=1. It augments fields with RFC3339Nano time and the
// event name. Failures are reported on stderr and never abort the caller.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	path, err := finiedir.EventsPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: resolve events path: %v\n", err)
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
		return
	}
}

// ObserveEnabled reports whether JSONL emission is enabled. Checked per call
// so tests can toggle it with t.Setenv.
func ObserveEnabled() bool {
	return os.Getenv("FINIE_OBSERVE_JSON") == "1"
}
