package sequencer

import (
	"fmt"
	"sync"
)

// Tempo bounds in BPM. The store clamps on write so a directly-invoked
// SetTempo can never break the clock's timing math.
const (
	MinTempo = 60
	MaxTempo = 144
)

// DefaultTempo is the tempo of a fresh session
const DefaultTempo = 96

// Store is the single source of truth for the 4 tracks, tempo, active
// track and global play flag. All mutators lock; Snapshot returns a
// deep copy so readers never alias live pattern data.
//
// Track indices are bounds-checked with a panic: an out-of-range index
// is a programming error, not a recoverable condition.
type Store struct {
	mu             sync.Mutex
	tracks         [NumTracks]*Track
	tempo          int
	activeTrack    int
	playing        bool
	backgroundCode string
}

// Snapshot is an immutable copy of the store, fed to the transpiler
// and the UI.
type Snapshot struct {
	Tracks         [NumTracks]Track
	Tempo          int
	ActiveTrack    int
	Playing        bool
	BackgroundCode string
}

// NewStore creates the session's tracks: one piano lane plus three
// empty drum lanes, track 0 active, all volumes at 75%.
func NewStore() *Store {
	s := &Store{tempo: DefaultTempo}
	for i := 0; i < NumTracks; i++ {
		t := &Track{ID: i, Active: i == 0, Volume: 0.75}
		if i == 0 {
			t.Type = TrackTypePiano
			t.Piano = NewPianoTrackData()
		} else {
			t.Type = TrackTypeDrum
			t.Drum = NewDrumTrackData()
		}
		s.tracks[i] = t
	}
	return s
}

func (s *Store) track(index int) *Track {
	if index < 0 || index >= NumTracks {
		panic(fmt.Sprintf("sequencer: track index %d out of range", index))
	}
	return s.tracks[index]
}

// Snapshot returns a deep copy of the full store state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Tempo:          s.tempo,
		ActiveTrack:    s.activeTrack,
		Playing:        s.playing,
		BackgroundCode: s.backgroundCode,
	}
	for i, t := range s.tracks {
		snap.Tracks[i] = *t.Clone()
	}
	return snap
}

// SetActiveTrack marks exactly one track active and clears the rest
func (s *Store) SetActiveTrack(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(index)
	s.activeTrack = index
	for i, t := range s.tracks {
		t.Active = i == index
	}
}

// ActiveTrack returns the index of the active track
func (s *Store) ActiveTrack() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTrack
}

// SetTrackType replaces the track's data with a freshly-initialized
// variant of the requested type. The prior variant's content is
// discarded - intentional data loss, matching the UI's type switch.
func (s *Store) SetTrackType(index int, typ TrackType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.track(index)
	switch typ {
	case TrackTypeDrum:
		t.Type = TrackTypeDrum
		t.Drum = NewDrumTrackData()
		t.Piano = nil
	case TrackTypePiano:
		t.Type = TrackTypePiano
		t.Piano = NewPianoTrackData()
		t.Drum = nil
	}
}

// TrackType returns the variant tag of a track
func (s *Store) TrackType(index int) TrackType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track(index).Type
}

// ToggleDrumSound removes the sound from the slot if present, adds it
// otherwise. Calling twice with identical arguments is a no-op overall.
func (s *Store) ToggleDrumSound(index, slot int, sound DrumSound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.track(index)
	if t.Drum == nil || slot < 0 || slot >= NumSlots {
		return
	}
	beat := t.Drum.Pattern[slot]
	for i, have := range beat {
		if have == sound {
			t.Drum.Pattern[slot] = append(beat[:i], beat[i+1:]...)
			return
		}
	}
	t.Drum.Pattern[slot] = append(beat, sound)
}

// SetDrumTheme selects the sample bank for a drum track
func (s *Store) SetDrumTheme(index int, theme DrumTheme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.track(index); t.Drum != nil {
		t.Drum.Theme = theme
	}
}

// SetDrumRoom sets the reverb amount, clamped to [0,1]
func (s *Store) SetDrumRoom(index int, room float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.track(index); t.Drum != nil {
		t.Drum.Room = clamp(room, 0, 1)
	}
}

// SetDrumPitch sets the transpose amount, clamped to [-12,12]
func (s *Store) SetDrumPitch(index, pitch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.track(index); t.Drum != nil {
		t.Drum.Pitch = clampInt(pitch, -12, 12)
	}
}

// ApplyDrumPreset replaces a drum track's whole pattern. The incoming
// slots are deep-copied so later edits never mutate the preset data.
func (s *Store) ApplyDrumPreset(index int, pattern [NumSlots][]DrumSound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.track(index)
	if t.Drum == nil {
		return
	}
	for i, slot := range pattern {
		if len(slot) > 0 {
			t.Drum.Pattern[i] = append([]DrumSound(nil), slot...)
		} else {
			t.Drum.Pattern[i] = nil
		}
	}
}

// ClearPianoNotes empties a piano track's note collection
func (s *Store) ClearPianoNotes(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.track(index); t.Piano != nil {
		t.Piano.Notes = nil
	}
}

// SetPianoBaseOctave sets the keyboard's base octave, clamped to [2,5]
func (s *Store) SetPianoBaseOctave(index int, octave PianoBaseOctave) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.track(index); t.Piano != nil {
		t.Piano.BaseOctave = PianoBaseOctave(clampInt(int(octave), int(MinBaseOctave), int(MaxBaseOctave)))
	}
}

// SetPianoTheme selects the timbre for a piano track
func (s *Store) SetPianoTheme(index int, theme PianoTheme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.track(index); t.Piano != nil {
		t.Piano.Theme = theme
	}
}

// CommitPianoPattern converts a flat 16-slot capture buffer into the
// notes representation (one entry per note per occupied slot) and
// replaces the track's notes wholesale.
func (s *Store) CommitPianoPattern(index int, flat [NumSlots][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.track(index)
	if t.Piano == nil {
		return
	}
	var notes []PianoNote
	for pos, names := range flat {
		for _, name := range names {
			notes = append(notes, PianoNote{Note: NoteGroup{name}, Position: pos})
		}
	}
	t.Piano.Notes = notes
}

// SetTrackVolume sets a track's gain, clamped to [0,1]
func (s *Store) SetTrackVolume(index int, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track(index).Volume = clamp(volume, 0, 1)
}

// SetTempo sets the global BPM, clamped to [MinTempo,MaxTempo]
func (s *Store) SetTempo(bpm int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempo = clampInt(bpm, MinTempo, MaxTempo)
}

// Tempo returns the global BPM
func (s *Store) Tempo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempo
}

// SetPlaying records the global play flag
func (s *Store) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
}

// Playing returns the global play flag
func (s *Store) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// SetBackgroundCode sets the verbatim visual code block prepended by
// the transpiler
func (s *Store) SetBackgroundCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgroundCode = code
}

// LoadPreset atomically replaces tracks, tempo and background code,
// resetting the active track to 0. Tracks are deep-copied so the
// catalog data is never aliased. The caller (Manager) is responsible
// for stopping playback and cancelling any recording session first.
func (s *Store) LoadPreset(p *Preset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range p.Tracks {
		t := p.Tracks[i].Clone()
		t.ID = i
		t.Active = i == 0
		s.tracks[i] = t
	}
	s.tempo = clampInt(p.Tempo, MinTempo, MaxTempo)
	s.activeTrack = 0
	s.backgroundCode = p.Hydra
}

// loadTracks is shared by the share-state decoder: same atomic-replace
// semantics as LoadPreset but keeps the given active index.
func (s *Store) loadTracks(tracks []*Track, tempo, active int, background string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < NumTracks && i < len(tracks); i++ {
		t := tracks[i].Clone()
		t.ID = i
		t.Active = i == active
		s.tracks[i] = t
	}
	s.tempo = clampInt(tempo, MinTempo, MaxTempo)
	s.activeTrack = active
	s.backgroundCode = background
}
