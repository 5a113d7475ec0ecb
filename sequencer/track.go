package sequencer

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NumTracks is the fixed number of pattern lanes.
const NumTracks = 4

// NumSlots is the cycle length: 16 sixteenth-note slots = one 4-beat bar.
// Every pattern array, recording cursor and playhead index shares it.
const NumSlots = 16

// TrackType identifies which variant a track's data holds
type TrackType string

const (
	TrackTypeDrum  TrackType = "drum"
	TrackTypePiano TrackType = "piano"
)

// DrumSound is one of the 11 drum hit tags understood by the Strudel engine
type DrumSound string

const (
	Kick    DrumSound = "bd"
	Snare   DrumSound = "sd"
	Rimshot DrumSound = "rim"
	HiHat   DrumSound = "hh"
	OpenHat DrumSound = "oh"
	Clap    DrumSound = "cp"
	LowTom  DrumSound = "lt"
	MidTom  DrumSound = "mt"
	HighTom DrumSound = "ht"
	Ride    DrumSound = "rd"
	Crash   DrumSound = "cr"
)

// DrumSounds lists all sounds in the order the UI stacks them
var DrumSounds = []DrumSound{
	Kick, Snare, Rimshot, HiHat, OpenHat, Clap,
	LowTom, MidTom, HighTom, Ride, Crash,
}

// DrumTheme selects a sample bank. Empty string means no bank clause
// is emitted and the engine falls back to its default samples.
type DrumTheme string

const (
	NoDrumTheme    DrumTheme = ""
	RolandTR909    DrumTheme = "RolandTR909"
	RolandTR808    DrumTheme = "RolandTR808"
	RolandTR707    DrumTheme = "RolandTR707"
	AkaiLinn       DrumTheme = "AkaiLinn"
	RhythmAce      DrumTheme = "RhythmAce"
	ViscoSpaceDrum DrumTheme = "ViscoSpaceDrum"
)

// DrumThemes lists the selectable sample banks
var DrumThemes = []DrumTheme{
	RolandTR909, RolandTR808, RolandTR707, AkaiLinn, RhythmAce, ViscoSpaceDrum,
}

// PianoTheme selects the instrument timbre for a piano track
type PianoTheme string

const (
	ThemePiano     PianoTheme = "piano"
	ThemeCello     PianoTheme = "gm_cello"
	ThemePsaltery  PianoTheme = "psaltery_pluck"
	ThemeKawai     PianoTheme = "kawai"
	ThemeBotella   PianoTheme = "botella"
	ThemeXylophone PianoTheme = "gm_xylophone"
)

// PianoThemes lists the selectable timbres
var PianoThemes = []PianoTheme{
	ThemePiano, ThemeCello, ThemePsaltery, ThemeKawai, ThemeBotella, ThemeXylophone,
}

// DrumTrackData holds one drum lane: 16 slots, each a set of sounds.
// Set semantics - a sound appears at most once per slot.
type DrumTrackData struct {
	Pattern [NumSlots][]DrumSound `json:"pattern" yaml:"pattern"`
	Theme   DrumTheme             `json:"theme,omitempty" yaml:"theme,omitempty"`
	Room    float64               `json:"room" yaml:"room"`
	Pitch   int                   `json:"pitch" yaml:"pitch"`
}

// NewDrumTrackData returns a drum variant with defaults: empty pattern,
// no bank, room 0.5, no transpose.
func NewDrumTrackData() *DrumTrackData {
	return &DrumTrackData{Room: 0.5}
}

// Clone returns a deep copy
func (d *DrumTrackData) Clone() *DrumTrackData {
	c := &DrumTrackData{Theme: d.Theme, Room: d.Room, Pitch: d.Pitch}
	for i, slot := range d.Pattern {
		if len(slot) > 0 {
			c.Pattern[i] = append([]DrumSound(nil), slot...)
		}
	}
	return c
}

// HasContent reports whether any slot holds at least one sound
func (d *DrumTrackData) HasContent() bool {
	for _, slot := range d.Pattern {
		if len(slot) > 0 {
			return true
		}
	}
	return false
}

// NoteGroup is the note field of a PianoNote: a single note name or a
// chord. Serialized forms accept both a bare scalar ("C4") and a list
// (["C4","E4","G4"]); a single note marshals back to the scalar form.
type NoteGroup []string

func (g NoteGroup) MarshalJSON() ([]byte, error) {
	if len(g) == 1 {
		return json.Marshal(g[0])
	}
	return json.Marshal([]string(g))
}

func (g *NoteGroup) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*g = NoteGroup{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("note group: %w", err)
	}
	*g = NoteGroup(many)
	return nil
}

func (g NoteGroup) MarshalYAML() (any, error) {
	if len(g) == 1 {
		return g[0], nil
	}
	return []string(g), nil
}

func (g *NoteGroup) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*g = NoteGroup{value.Value}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return fmt.Errorf("note group: %w", err)
	}
	*g = NoteGroup(many)
	return nil
}

// PianoNote is one recorded entry: a note (or chord) at a slot position
type PianoNote struct {
	Note     NoteGroup `json:"note" yaml:"note"`
	Position int       `json:"position" yaml:"position"`
}

// PianoBaseOctave is the octave of the keyboard's leftmost C.
// Legal values are 2 through 5.
type PianoBaseOctave int

const (
	MinBaseOctave PianoBaseOctave = 2
	MaxBaseOctave PianoBaseOctave = 5
)

// PianoTrackData holds one piano lane: an unordered note collection
// plus keyboard range and timbre.
type PianoTrackData struct {
	Notes      []PianoNote     `json:"notes" yaml:"notes"`
	BaseOctave PianoBaseOctave `json:"baseOctave" yaml:"baseOctave"`
	Theme      PianoTheme      `json:"theme" yaml:"theme"`
}

// NewPianoTrackData returns a piano variant with defaults: no notes,
// base octave 4, plain piano timbre.
func NewPianoTrackData() *PianoTrackData {
	return &PianoTrackData{BaseOctave: 4, Theme: ThemePiano}
}

// Clone returns a deep copy
func (p *PianoTrackData) Clone() *PianoTrackData {
	c := &PianoTrackData{BaseOctave: p.BaseOctave, Theme: p.Theme}
	for _, n := range p.Notes {
		c.Notes = append(c.Notes, PianoNote{
			Note:     append(NoteGroup(nil), n.Note...),
			Position: n.Position,
		})
	}
	return c
}

// SlotPattern normalizes Notes into a 16-slot array of note names:
// chord-array entries are flattened into their slot, names lower-cased,
// positions taken modulo the cycle, duplicates within a slot dropped.
func (p *PianoTrackData) SlotPattern() [NumSlots][]string {
	var pattern [NumSlots][]string
	for _, n := range p.Notes {
		pos := ((n.Position % NumSlots) + NumSlots) % NumSlots
		for _, name := range n.Note {
			name = strings.ToLower(name)
			dup := false
			for _, have := range pattern[pos] {
				if have == name {
					dup = true
					break
				}
			}
			if !dup {
				pattern[pos] = append(pattern[pos], name)
			}
		}
	}
	return pattern
}

// Track is one of the 4 pattern lanes. Exactly one of Drum/Piano is
// populated, selected by Type.
type Track struct {
	ID     int       `json:"id" yaml:"id"`
	Active bool      `json:"active" yaml:"active"`
	Volume float64   `json:"volume" yaml:"volume"`
	Type   TrackType `json:"type" yaml:"type"`

	Drum  *DrumTrackData  `json:"drum,omitempty" yaml:"drum,omitempty"`
	Piano *PianoTrackData `json:"piano,omitempty" yaml:"piano,omitempty"`
}

// Clone returns a deep copy of the track
func (t *Track) Clone() *Track {
	c := &Track{ID: t.ID, Active: t.Active, Volume: t.Volume, Type: t.Type}
	if t.Drum != nil {
		c.Drum = t.Drum.Clone()
	}
	if t.Piano != nil {
		c.Piano = t.Piano.Clone()
	}
	return c
}

// HasContent reports whether the track contributes any sound
func (t *Track) HasContent() bool {
	switch t.Type {
	case TrackTypeDrum:
		return t.Drum != nil && t.Drum.HasContent()
	case TrackTypePiano:
		return t.Piano != nil && len(t.Piano.Notes) > 0
	}
	return false
}

// Valid reports whether the track's variant matches its type tag
func (t *Track) Valid() bool {
	switch t.Type {
	case TrackTypeDrum:
		return t.Drum != nil && t.Piano == nil
	case TrackTypePiano:
		return t.Piano != nil && t.Drum == nil
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
