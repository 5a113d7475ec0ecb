package audio

import "testing"

func TestNoteNumber(t *testing.T) {
	tests := []struct {
		name string
		want uint8
	}{
		{"C4", 60},
		{"c4", 60},
		{"C#4", 61},
		{"Db4", 61},
		{"A4", 69},
		{"C5", 72},
		{"G5", 79},
		{"f#3", 54},
		{"Bb2", 46},
		{"C-1", 0},
		{"G9", 127},
	}
	for _, tc := range tests {
		got, err := NoteNumber(tc.name)
		if err != nil {
			t.Errorf("NoteNumber(%q): %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NoteNumber(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestNoteNumberRejectsInvalid(t *testing.T) {
	for _, name := range []string{"", "C", "H4", "C#", "4C", "C44x", "A10"} {
		if _, err := NoteNumber(name); err == nil {
			t.Errorf("NoteNumber(%q) succeeded, want error", name)
		}
	}
}

func TestNoteNameRoundTrip(t *testing.T) {
	for _, name := range []string{"C4", "F#3", "A#0", "B8"} {
		n, err := NoteNumber(name)
		if err != nil {
			t.Fatalf("NoteNumber(%q): %v", name, err)
		}
		if got := NoteName(n); got != name {
			t.Errorf("NoteName(%d) = %q, want %q", n, got, name)
		}
	}
}

func TestCueNotesAreValid(t *testing.T) {
	// the countdown cues must parse, and the final cue sits above the rest
	c5, err := NoteNumber("C5")
	if err != nil {
		t.Fatal(err)
	}
	g5, err := NoteNumber("G5")
	if err != nil {
		t.Fatal(err)
	}
	if g5 <= c5 {
		t.Errorf("G5 (%d) should be above C5 (%d)", g5, c5)
	}
}
