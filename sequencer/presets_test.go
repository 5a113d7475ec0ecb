package sequencer

import (
	"testing"
)

func TestParseDrumShorthand(t *testing.T) {
	tests := []struct {
		beat string
		want []DrumSound
	}{
		{"", nil},
		{"k", []DrumSound{Kick}},
		{"s", []DrumSound{Snare}},
		{"h", []DrumSound{HiHat}},
		{"o", []DrumSound{OpenHat}},
		{"c", []DrumSound{Clap}},
		{"r", []DrumSound{Rimshot}},
		{"l", []DrumSound{LowTom}},
		{"m", []DrumSound{MidTom}},
		{"t", []DrumSound{HighTom}},
		{"ks", []DrumSound{Kick, Snare}},
		{"sk", []DrumSound{Kick, Snare}}, // scan order, not input order
		{"xyz k", []DrumSound{Kick}},     // unknown letters ignored
	}
	for _, tc := range tests {
		got := ParseDrumShorthand(tc.beat)
		if len(got) != len(tc.want) {
			t.Errorf("ParseDrumShorthand(%q) = %v, want %v", tc.beat, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ParseDrumShorthand(%q) = %v, want %v", tc.beat, got, tc.want)
				break
			}
		}
	}
}

func TestPresetCatalog(t *testing.T) {
	presets := Presets()
	if len(presets) == 0 {
		t.Fatal("empty catalog")
	}

	seen := map[string]bool{}
	for _, p := range presets {
		if p.ID == "" || p.Name == "" {
			t.Errorf("preset %q missing id or name", p.ID)
		}
		if seen[p.ID] {
			t.Errorf("duplicate preset id %q", p.ID)
		}
		seen[p.ID] = true

		if p.Tempo < MinTempo || p.Tempo > MaxTempo {
			t.Errorf("preset %s: tempo %d out of range", p.ID, p.Tempo)
		}
		for i, track := range p.Tracks {
			if track == nil {
				t.Fatalf("preset %s: track %d nil", p.ID, i)
			}
			if !track.Valid() {
				t.Errorf("preset %s: track %d has mismatched variant", p.ID, i)
			}
			if track.Volume < 0 || track.Volume > 1 {
				t.Errorf("preset %s: track %d volume %v out of range", p.ID, i, track.Volume)
			}
			if track.Piano != nil {
				if track.Piano.BaseOctave < MinBaseOctave || track.Piano.BaseOctave > MaxBaseOctave {
					t.Errorf("preset %s: track %d base octave %d out of range", p.ID, i, track.Piano.BaseOctave)
				}
				if track.Piano.Theme == "" {
					t.Errorf("preset %s: track %d missing piano theme", p.ID, i)
				}
			}
			if track.Drum != nil && (track.Drum.Room < 0 || track.Drum.Room > 1) {
				t.Errorf("preset %s: track %d room %v out of range", p.ID, i, track.Drum.Room)
			}
		}
	}
}

func TestDrumPatternCatalog(t *testing.T) {
	names := []string{"Asia", "Rock Basic", "Hip Hop", "House", "Techno", "Breakbeat"}
	if len(DrumPatterns) != len(names) {
		t.Fatalf("catalog size = %d, want %d", len(DrumPatterns), len(names))
	}
	for i, p := range DrumPatterns {
		if p.Name != names[i] {
			t.Errorf("pattern %d = %q, want %q", i, p.Name, names[i])
		}
		for slot, sounds := range p.Pattern {
			if len(sounds) > 1 {
				t.Errorf("%s slot %d holds %d sounds, want at most 1", p.Name, slot, len(sounds))
			}
		}
	}

	// House is four-on-the-floor: kicks on the beat, nothing else
	house := DrumPatterns[3]
	for slot, sounds := range house.Pattern {
		onBeat := slot%4 == 0
		if onBeat && (len(sounds) != 1 || sounds[0] != Kick) {
			t.Errorf("House slot %d = %v, want [bd]", slot, sounds)
		}
		if !onBeat && len(sounds) != 0 {
			t.Errorf("House slot %d = %v, want empty", slot, sounds)
		}
	}
}

func TestApplyNamedDrumPattern(t *testing.T) {
	s := NewStore()
	s.ToggleDrumSound(1, 7, Crash)

	var rock *DrumPattern
	for i := range DrumPatterns {
		if DrumPatterns[i].Name == "Rock Basic" {
			rock = &DrumPatterns[i]
		}
	}
	if rock == nil {
		t.Fatal("Rock Basic missing from catalog")
	}

	s.ApplyDrumPreset(1, rock.Pattern)
	drum := s.Snapshot().Tracks[1].Drum
	if got := drum.Pattern[0]; len(got) != 1 || got[0] != Kick {
		t.Errorf("slot 0 = %v, want [bd]", got)
	}
	if got := drum.Pattern[2]; len(got) != 1 || got[0] != Snare {
		t.Errorf("slot 2 = %v, want [sd]", got)
	}
	// the apply replaces the whole pattern, prior edits included
	if got := drum.Pattern[7]; len(got) != 0 {
		t.Errorf("slot 7 = %v, want empty", got)
	}
}

func TestFindPreset(t *testing.T) {
	p, ok := FindPreset("pixel-meadow")
	if !ok {
		t.Fatal("pixel-meadow not in catalog")
	}
	if p.Name != "PIXEL MEADOW" || p.Tempo != 88 {
		t.Errorf("got %q tempo %d", p.Name, p.Tempo)
	}
	if p.Hydra == "" {
		t.Error("pixel-meadow should carry hydra code")
	}

	// drum shorthand expanded: track 0 slot 0 is a kick
	if got := p.Tracks[0].Drum.Pattern[0]; len(got) != 1 || got[0] != Kick {
		t.Errorf("track 0 slot 0 = %v, want [bd]", got)
	}
	// chord entries parsed from the yaml list form
	if got := p.Tracks[3].Piano.Notes[0].Note; len(got) != 3 {
		t.Errorf("track 3 first note = %v, want a 3-note chord", got)
	}

	if _, ok := FindPreset("no-such-preset"); ok {
		t.Error("unknown id should not resolve")
	}
}
