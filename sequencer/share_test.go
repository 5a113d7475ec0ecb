package sequencer

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestShareRoundTrip(t *testing.T) {
	s := NewStore()
	s.SetTempo(110)
	s.SetActiveTrack(2)
	s.ToggleDrumSound(1, 0, Kick)
	s.ToggleDrumSound(1, 8, Snare)
	s.SetDrumTheme(1, RolandTR808)
	var flat [NumSlots][]string
	flat[3] = []string{"c4", "e4", "g4"}
	s.CommitPianoPattern(0, flat)
	s.SetBackgroundCode("osc(5).out()")

	encoded := EncodeShare(s.Snapshot())
	state, err := DecodeShare(encoded)
	if err != nil {
		t.Fatal(err)
	}

	if state.Tempo != 110 || state.ActiveTrack != 2 {
		t.Errorf("tempo=%d active=%d", state.Tempo, state.ActiveTrack)
	}
	if state.HydraCode != "osc(5).out()" {
		t.Errorf("hydra = %q", state.HydraCode)
	}
	if got := state.Tracks[1].Drum.Pattern[0]; len(got) != 1 || got[0] != Kick {
		t.Errorf("track 1 slot 0 = %v", got)
	}
	if state.Tracks[1].Drum.Theme != RolandTR808 {
		t.Errorf("track 1 theme = %s", state.Tracks[1].Drum.Theme)
	}
	if got := len(state.Tracks[0].Piano.Notes); got != 3 {
		t.Errorf("track 0 notes = %d, want 3", got)
	}
}

func TestDecodeShareRejectsGarbage(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "!!not-base64!!"},
		{"not json", base64.URLEncoding.EncodeToString([]byte("hello"))},
		{"empty object", base64.URLEncoding.EncodeToString([]byte("{}"))},
	}
	for _, tc := range tests {
		if _, err := DecodeShare(tc.encoded); err == nil {
			t.Errorf("%s: decode succeeded, want error", tc.name)
		}
	}
}

func TestDecodeShareValidatesStructure(t *testing.T) {
	base := func() ShareState {
		snap := NewStore().Snapshot()
		state := ShareState{Tempo: snap.Tempo, ActiveTrack: 0}
		for i := range snap.Tracks {
			state.Tracks = append(state.Tracks, snap.Tracks[i].Clone())
		}
		return state
	}

	tests := []struct {
		name   string
		mutate func(*ShareState)
	}{
		{"too few tracks", func(s *ShareState) { s.Tracks = s.Tracks[:3] }},
		{"active out of range", func(s *ShareState) { s.ActiveTrack = 4 }},
		{"active negative", func(s *ShareState) { s.ActiveTrack = -1 }},
		{"tempo too low", func(s *ShareState) { s.Tempo = MinTempo - 1 }},
		{"tempo too high", func(s *ShareState) { s.Tempo = MaxTempo + 1 }},
		{"volume out of range", func(s *ShareState) { s.Tracks[0].Volume = 1.5 }},
		{"variant mismatch", func(s *ShareState) { s.Tracks[0].Piano = nil }},
		{"both variants set", func(s *ShareState) { s.Tracks[0].Drum = NewDrumTrackData() }},
	}
	for _, tc := range tests {
		state := base()
		tc.mutate(&state)
		data, err := json.Marshal(state)
		if err != nil {
			t.Fatal(err)
		}
		encoded := base64.URLEncoding.EncodeToString(data)
		if _, err := DecodeShare(encoded); err == nil {
			t.Errorf("%s: decode succeeded, want error", tc.name)
		}
	}
}

func TestNoteGroupJSON(t *testing.T) {
	// single note round-trips through the scalar form
	single := PianoNote{Note: NoteGroup{"C4"}, Position: 3}
	data, err := json.Marshal(single)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"note":"C4","position":3}` {
		t.Errorf("single note json = %s", data)
	}

	var back PianoNote
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Note) != 1 || back.Note[0] != "C4" {
		t.Errorf("round-trip = %+v", back)
	}

	// chords stay lists
	var chord PianoNote
	if err := json.Unmarshal([]byte(`{"note":["E4","G4","C5"],"position":1}`), &chord); err != nil {
		t.Fatal(err)
	}
	if len(chord.Note) != 3 {
		t.Errorf("chord = %+v", chord.Note)
	}
}
