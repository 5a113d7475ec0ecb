// Package audio is the boundary to the external synthesis engine.
// The engine is fire-and-forget: failures are logged and swallowed,
// never propagated to break the sequencing state machines.
package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// Engine plays individual notes, used for live keyboard echo and the
// recording countdown cues.
type Engine interface {
	// PlayNote triggers a note by name ("C4", "f#3") for the given
	// duration in milliseconds, on the given timbre.
	PlayNote(note string, durationMS int, timbre string) error
	// SetTheme switches the engine's instrument timbre.
	SetTheme(timbre string)
}

var semitones = map[string]int{
	"c": 0, "c#": 1, "db": 1,
	"d": 2, "d#": 3, "eb": 3,
	"e": 4,
	"f": 5, "f#": 6, "gb": 6,
	"g": 7, "g#": 8, "ab": 8,
	"a": 9, "a#": 10, "bb": 10,
	"b": 11,
}

// NoteNumber parses a note name like "C4" or "f#3" into its MIDI note
// number (C4 = 60). Case-insensitive.
func NoteNumber(name string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid note %q", name)
	}

	split := 1
	if len(s) > 2 && (s[1] == '#' || s[1] == 'b') {
		split = 2
	}
	semi, ok := semitones[s[:split]]
	if !ok {
		return 0, fmt.Errorf("invalid note %q", name)
	}
	octave, err := strconv.Atoi(s[split:])
	if err != nil {
		return 0, fmt.Errorf("invalid note %q", name)
	}

	n := (octave+1)*12 + semi
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("note %q out of MIDI range", name)
	}
	return uint8(n), nil
}

// NoteName converts a MIDI note number to a readable name ("C4", "F#3")
func NoteName(note uint8) string {
	names := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return fmt.Sprintf("%s%d", names[note%12], int(note)/12-1)
}

// Nop is the engine used when no MIDI output is available: every call
// succeeds silently.
type Nop struct{}

func (Nop) PlayNote(string, int, string) error { return nil }
func (Nop) SetTheme(string)                    {}
