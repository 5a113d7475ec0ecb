package sequencer

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetData []byte

// ErrPresetNotFound rejects a load for an unknown preset id
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a complete, self-contained snapshot: loading one replaces
// the whole store.
type Preset struct {
	ID     string
	Name   string
	Tempo  int
	Hydra  string
	Tracks [NumTracks]*Track
}

// shorthandSounds maps pattern letters to drum sounds, in scan order
var shorthandSounds = []struct {
	letter byte
	sound  DrumSound
}{
	{'k', Kick},
	{'s', Snare},
	{'h', HiHat},
	{'o', OpenHat},
	{'c', Clap},
	{'r', Rimshot},
	{'l', LowTom},
	{'m', MidTom},
	{'t', HighTom},
}

// ParseDrumShorthand expands a letter-coded beat ("k", "sh", ...) into
// its drum sound set. Unknown letters are ignored.
func ParseDrumShorthand(beat string) []DrumSound {
	var sounds []DrumSound
	for _, entry := range shorthandSounds {
		if strings.IndexByte(beat, entry.letter) >= 0 {
			sounds = append(sounds, entry.sound)
		}
	}
	return sounds
}

// DrumPattern is a named 16-slot beat applied to one drum track,
// replacing its whole pattern.
type DrumPattern struct {
	Name    string
	Pattern [NumSlots][]DrumSound
}

// DrumPatterns is the built-in beat catalog, one sound per slot
var DrumPatterns = []DrumPattern{
	{Name: "Asia", Pattern: [NumSlots][]DrumSound{
		{Kick}, {HiHat}, {Kick}, {HiHat}, {Kick}, {HiHat}, {Kick}, {HiHat},
		{Kick}, {HiHat}, {Kick}, {HiHat}, {Kick}, {HiHat}, {Kick}, {HiHat},
	}},
	{Name: "Rock Basic", Pattern: [NumSlots][]DrumSound{
		{Kick}, nil, {Snare}, nil, {Kick}, nil, {Snare}, nil,
		{Kick}, nil, {Snare}, nil, {Kick}, nil, {Snare}, nil,
	}},
	{Name: "Hip Hop", Pattern: [NumSlots][]DrumSound{
		{Kick}, nil, nil, {Kick}, {Snare}, nil, nil, {Kick},
		{Kick}, nil, nil, {Kick}, {Snare}, nil, nil, nil,
	}},
	{Name: "House", Pattern: [NumSlots][]DrumSound{
		{Kick}, nil, nil, nil, {Kick}, nil, nil, nil,
		{Kick}, nil, nil, nil, {Kick}, nil, nil, nil,
	}},
	{Name: "Techno", Pattern: [NumSlots][]DrumSound{
		{Kick}, {HiHat}, {HiHat}, {HiHat}, {Snare}, {HiHat}, {HiHat}, {HiHat},
		{Kick}, {HiHat}, {HiHat}, {HiHat}, {Snare}, {HiHat}, {HiHat}, {HiHat},
	}},
	{Name: "Breakbeat", Pattern: [NumSlots][]DrumSound{
		{Kick}, nil, {Snare}, {Kick}, nil, {Kick}, {Snare}, nil,
		{Kick}, nil, {Snare}, {Kick}, nil, {Kick}, {Snare}, nil,
	}},
}

type presetDrumYAML struct {
	Beats [NumSlots]string `yaml:"beats"`
	Theme DrumTheme        `yaml:"theme"`
	Room  float64          `yaml:"room"`
	Pitch int              `yaml:"pitch"`
}

type presetTrackYAML struct {
	Type   TrackType       `yaml:"type"`
	Volume float64         `yaml:"volume"`
	Drum   *presetDrumYAML `yaml:"drum"`
	Piano  *PianoTrackData `yaml:"piano"`
}

type presetYAML struct {
	ID     string            `yaml:"id"`
	Name   string            `yaml:"name"`
	Tempo  int               `yaml:"tempo"`
	Hydra  string            `yaml:"hydra"`
	Tracks []presetTrackYAML `yaml:"tracks"`
}

type presetFileYAML struct {
	Presets []presetYAML `yaml:"presets"`
}

var (
	catalogOnce sync.Once
	catalog     []Preset
	catalogErr  error
)

// Presets returns the built-in preset catalog. The catalog is parsed
// from the embedded YAML once; a parse failure is a build defect and
// panics at first use.
func Presets() []Preset {
	catalogOnce.Do(loadCatalog)
	if catalogErr != nil {
		panic(catalogErr)
	}
	return catalog
}

// FindPreset looks a preset up by id
func FindPreset(id string) (*Preset, bool) {
	for i := range Presets() {
		if catalog[i].ID == id {
			return &catalog[i], true
		}
	}
	return nil, false
}

func loadCatalog() {
	var file presetFileYAML
	if err := yaml.Unmarshal(presetData, &file); err != nil {
		catalogErr = fmt.Errorf("preset catalog: %w", err)
		return
	}

	for _, p := range file.Presets {
		if len(p.Tracks) != NumTracks {
			catalogErr = fmt.Errorf("preset %s: want %d tracks, got %d", p.ID, NumTracks, len(p.Tracks))
			return
		}
		preset := Preset{ID: p.ID, Name: p.Name, Tempo: p.Tempo, Hydra: p.Hydra}
		for i, pt := range p.Tracks {
			track := &Track{ID: i, Active: i == 0, Volume: pt.Volume, Type: pt.Type}
			switch pt.Type {
			case TrackTypeDrum:
				if pt.Drum == nil {
					catalogErr = fmt.Errorf("preset %s track %d: missing drum data", p.ID, i)
					return
				}
				drum := &DrumTrackData{Theme: pt.Drum.Theme, Room: pt.Drum.Room, Pitch: pt.Drum.Pitch}
				for slot, beat := range pt.Drum.Beats {
					drum.Pattern[slot] = ParseDrumShorthand(beat)
				}
				track.Drum = drum
			case TrackTypePiano:
				if pt.Piano == nil {
					catalogErr = fmt.Errorf("preset %s track %d: missing piano data", p.ID, i)
					return
				}
				track.Piano = pt.Piano.Clone()
			default:
				catalogErr = fmt.Errorf("preset %s track %d: unknown type %q", p.ID, i, pt.Type)
				return
			}
			preset.Tracks[i] = track
		}
		catalog = append(catalog, preset)
	}
}
