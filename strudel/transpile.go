// Package strudel turns sequencer state into Strudel live-coding
// source text and holds the boundary to the external Strudel runtime.
package strudel

import (
	"fmt"
	"strings"

	"github.com/lichin-lin/sound-machine/sequencer"
)

// timbreTranspose holds instrument-specific octave corrections for
// timbres whose samples sit below concert pitch. A lookup, not a rule.
var timbreTranspose = map[sequencer.PianoTheme]int{
	sequencer.ThemePsaltery: 12,
	sequencer.ThemePiano:    24,
}

// Transpile renders a store snapshot as Strudel source. It is a total,
// deterministic, side-effect-free function of the snapshot: equal
// inputs always yield byte-identical output, which is what makes
// regenerate-on-every-change cheap.
func Transpile(snap sequencer.Snapshot) string {
	var lines []string

	if code := strings.TrimSpace(snap.BackgroundCode); code != "" {
		lines = append(lines, "// Hydra Visual", code, "")
	}

	lines = append(lines, fmt.Sprintf("setcpm(%d/4)", snap.Tempo), "")

	hasContent := false
	for i := range snap.Tracks {
		if snap.Tracks[i].HasContent() {
			hasContent = true
			break
		}
	}
	if !hasContent {
		lines = append(lines, "// No tracks with content")
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}

	for i := range snap.Tracks {
		track := &snap.Tracks[i]
		var statement string
		switch track.Type {
		case sequencer.TrackTypeDrum:
			statement = drumStatement(track)
		case sequencer.TrackTypePiano:
			statement = pianoStatement(track)
		default:
			continue
		}
		header := fmt.Sprintf("// Track %d (%s)", i+1, track.Type)
		if track.Active {
			header += " [SELECTED]"
		}
		lines = append(lines, header, statement, "")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// drumStatement renders one drum lane: the 16-slot mini-notation plus
// bank, room, transpose and gain clauses.
func drumStatement(track *sequencer.Track) string {
	slots := make([]string, sequencer.NumSlots)
	for i, sounds := range track.Drum.Pattern {
		switch len(sounds) {
		case 0:
			slots[i] = "~"
		case 1:
			slots[i] = string(sounds[0])
		default:
			tags := make([]string, len(sounds))
			for j, s := range sounds {
				tags[j] = string(s)
			}
			slots[i] = "[" + strings.Join(tags, ",") + "]"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `$: s("%s")`, strings.Join(slots, " "))
	if track.Drum.Theme != sequencer.NoDrumTheme {
		fmt.Fprintf(&b, `.bank("%s")`, track.Drum.Theme)
	}
	if track.Drum.Room > 0 {
		fmt.Fprintf(&b, ".room(%.2f)", track.Drum.Room)
	}
	if track.Drum.Pitch != 0 {
		fmt.Fprintf(&b, ".transpose(%d)", track.Drum.Pitch)
	}
	fmt.Fprintf(&b, ".gain(%.2f)", track.Volume)
	return b.String()
}

// pianoStatement renders one piano lane: the normalized 16-slot note
// pattern plus timbre, any fixed octave correction, and gain.
func pianoStatement(track *sequencer.Track) string {
	pattern := track.Piano.SlotPattern()
	slots := make([]string, sequencer.NumSlots)
	for i, notes := range pattern {
		switch len(notes) {
		case 0:
			slots[i] = "~"
		case 1:
			slots[i] = notes[0]
		default:
			slots[i] = "[" + strings.Join(notes, ", ") + "]"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `$: note("%s")`, strings.Join(slots, " "))
	fmt.Fprintf(&b, `.sound("%s")`, track.Piano.Theme)
	if semitones, ok := timbreTranspose[track.Piano.Theme]; ok {
		fmt.Fprintf(&b, ".transpose(%d)", semitones)
	}
	fmt.Fprintf(&b, ".gain(%.2f)", track.Volume)
	return b.String()
}
