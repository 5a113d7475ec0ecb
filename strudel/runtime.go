package strudel

import "github.com/lichin-lin/sound-machine/debug"

// LogRuntime satisfies sequencer.Runtime by recording control traffic
// in the debug log and otherwise doing nothing. It stands in until a
// real REPL transport is attached; the runtime is opaque either way -
// this system never parses the runtime's own execution errors.
type LogRuntime struct{}

func NewLogRuntime() *LogRuntime { return &LogRuntime{} }

func (r *LogRuntime) Evaluate(code string) error {
	debug.Log("strudel", "evaluate %d bytes", len(code))
	return nil
}

func (r *LogRuntime) Play() error {
	debug.Log("strudel", "play")
	return nil
}

func (r *LogRuntime) Stop() error {
	debug.Log("strudel", "stop")
	return nil
}
