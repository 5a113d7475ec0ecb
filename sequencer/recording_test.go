package sequencer

import (
	"errors"
	"testing"
)

// driveCountdown runs the session through the 4-beat lead-in
func driveCountdown(t *testing.T, r *RecordingSession) {
	t.Helper()
	for i := 0; i < countdownBeats-1; i++ {
		if r.beatTick() {
			t.Fatalf("countdown finished after %d beats", i+1)
		}
	}
	if !r.beatTick() {
		t.Fatal("countdown did not finish after 4 beats")
	}
	if r.Phase() != PhaseRecording {
		t.Fatalf("phase = %s, want recording", r.Phase())
	}
}

func TestRecordingRejectsDrumTrack(t *testing.T) {
	r := NewRecordingSession(NewStore(), nil, nil, nil)
	if err := r.begin(1); !errors.Is(err, ErrNotPianoTrack) {
		t.Fatalf("begin on drum track: %v, want ErrNotPianoTrack", err)
	}
	if r.Phase() != PhaseIdle {
		t.Errorf("phase = %s, want idle", r.Phase())
	}
}

func TestRecordingRejectsSecondSession(t *testing.T) {
	s := NewStore()
	s.SetTrackType(1, TrackTypePiano)
	r := NewRecordingSession(s, nil, nil, nil)

	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	if err := r.begin(1); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second begin: %v, want ErrSessionActive", err)
	}

	// the first session is unaffected
	if r.Track() != 0 {
		t.Errorf("session track = %d, want 0", r.Track())
	}
	if r.Countdown() != countdownBeats {
		t.Errorf("countdown = %d, want %d", r.Countdown(), countdownBeats)
	}
}

func TestCountdownCues(t *testing.T) {
	var cues []string
	r := NewRecordingSession(NewStore(), func(pitch string) { cues = append(cues, pitch) }, nil, nil)

	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	driveCountdown(t, r)

	want := []string{"C5", "C5", "C5", "G5"}
	if len(cues) != len(want) {
		t.Fatalf("got %d cues %v, want %d", len(cues), cues, len(want))
	}
	for i := range want {
		if cues[i] != want[i] {
			t.Errorf("cue %d = %s, want %s", i, cues[i], want[i])
		}
	}
}

func TestRecordingCapturesAndCommits(t *testing.T) {
	s := NewStore()
	r := NewRecordingSession(s, nil, nil, nil)
	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	driveCountdown(t, r)

	if r.Cursor() != 0 {
		t.Fatalf("cursor = %d at recording start, want 0", r.Cursor())
	}

	r.NoteOn("C4")
	r.NoteOn("E4")
	r.NoteOn("C4") // duplicate in the same slot is dropped

	for i := 0; i < 4; i++ {
		r.stepTick()
	}
	if r.Cursor() != 4 {
		t.Fatalf("cursor = %d after 4 steps, want 4", r.Cursor())
	}
	r.NoteOn("g4")

	for i := 4; i < NumSlots; i++ {
		r.stepTick()
	}

	if r.Phase() != PhaseIdle {
		t.Fatalf("phase = %s after full pass, want idle", r.Phase())
	}
	if r.Cursor() != NoPosition {
		t.Errorf("cursor = %d, want %d", r.Cursor(), NoPosition)
	}

	pattern := s.Snapshot().Tracks[0].Piano.SlotPattern()
	if got := pattern[0]; len(got) != 2 || got[0] != "c4" || got[1] != "e4" {
		t.Errorf("slot 0 = %v, want [c4 e4]", got)
	}
	if got := pattern[4]; len(got) != 1 || got[0] != "g4" {
		t.Errorf("slot 4 = %v, want [g4]", got)
	}
}

func TestEmptyPassCommitsEmptyPattern(t *testing.T) {
	s := NewStore()
	var flat [NumSlots][]string
	flat[0] = []string{"c4"}
	s.CommitPianoPattern(0, flat)

	r := NewRecordingSession(s, nil, nil, nil)
	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	driveCountdown(t, r)
	for i := 0; i < NumSlots; i++ {
		r.stepTick()
	}

	// a silent full pass is a valid take: it clears the track
	if got := s.Snapshot().Tracks[0].Piano.Notes; len(got) != 0 {
		t.Errorf("notes = %v, want empty after silent pass", got)
	}
}

func TestManualStopDiscardsCapture(t *testing.T) {
	s := NewStore()
	var flat [NumSlots][]string
	flat[2] = []string{"e4"}
	s.CommitPianoPattern(0, flat)

	r := NewRecordingSession(s, nil, nil, nil)
	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	driveCountdown(t, r)

	r.NoteOn("C4")
	for i := 0; i < 5; i++ {
		r.stepTick()
	}
	r.Stop()

	if r.Phase() != PhaseIdle {
		t.Fatalf("phase = %s after stop, want idle", r.Phase())
	}

	// the existing notes survive untouched
	notes := s.Snapshot().Tracks[0].Piano.Notes
	if len(notes) != 1 || notes[0].Position != 2 || notes[0].Note[0] != "e4" {
		t.Errorf("notes = %+v, want the pre-existing e4 at slot 2", notes)
	}

	// a new session can start afterwards
	if err := r.begin(0); err != nil {
		t.Fatalf("begin after stop: %v", err)
	}
}

func TestStopDuringCountdownDiscards(t *testing.T) {
	r := NewRecordingSession(NewStore(), nil, nil, nil)
	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	r.beatTick()
	r.Stop()
	if r.Phase() != PhaseIdle {
		t.Errorf("phase = %s, want idle", r.Phase())
	}
}

func TestNoteOnIgnoredOutsideRecording(t *testing.T) {
	s := NewStore()
	r := NewRecordingSession(s, nil, nil, nil)

	r.NoteOn("C4") // idle

	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	r.NoteOn("D4") // countdown
	driveCountdown(t, r)
	for i := 0; i < NumSlots; i++ {
		r.stepTick()
	}

	if got := s.Snapshot().Tracks[0].Piano.Notes; len(got) != 0 {
		t.Errorf("notes = %v, want none captured outside the recording phase", got)
	}
}

func TestCancelIf(t *testing.T) {
	s := NewStore()
	r := NewRecordingSession(s, nil, nil, nil)
	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}

	r.CancelIf(2) // different track, session survives
	if r.Phase() != PhaseCountdown {
		t.Fatalf("phase = %s, want countdown", r.Phase())
	}

	r.CancelIf(0)
	if r.Phase() != PhaseIdle {
		t.Errorf("phase = %s, want idle", r.Phase())
	}
}

func TestCommitReleasesTimerGoroutine(t *testing.T) {
	s := NewStore()
	r := NewRecordingSession(s, nil, nil, nil)
	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}

	r.mu.Lock()
	stop := r.stop
	r.mu.Unlock()

	driveCountdown(t, r)
	for i := 0; i < NumSlots; i++ {
		r.stepTick()
	}

	// the stop channel must be closed on natural completion, exactly
	// as on a manual Stop, or the run goroutine keeps ticking into
	// the next session
	select {
	case <-stop:
	default:
		t.Fatal("stop channel still open after commit")
	}
}

func TestBackToBackTakes(t *testing.T) {
	s := NewStore()
	r := NewRecordingSession(s, nil, nil, nil)

	// first take
	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	driveCountdown(t, r)
	r.NoteOn("C4")
	for i := 0; i < NumSlots; i++ {
		r.stepTick()
	}

	// second take starts clean: full countdown, fresh capture buffer
	if err := r.begin(0); err != nil {
		t.Fatalf("second begin: %v", err)
	}
	if r.Countdown() != countdownBeats {
		t.Fatalf("countdown = %d, want %d", r.Countdown(), countdownBeats)
	}
	driveCountdown(t, r)
	r.NoteOn("E4")
	for i := 0; i < NumSlots; i++ {
		r.stepTick()
	}

	pattern := s.Snapshot().Tracks[0].Piano.SlotPattern()
	if got := pattern[0]; len(got) != 1 || got[0] != "e4" {
		t.Errorf("slot 0 = %v, want only the second take's e4", got)
	}
}

func TestOnCommitFiresOnlyForFinishedTakes(t *testing.T) {
	s := NewStore()
	commits := 0
	r := NewRecordingSession(s, nil, nil, func() { commits++ })

	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	driveCountdown(t, r)
	for i := 0; i < 5; i++ {
		r.stepTick()
	}
	if commits != 0 {
		t.Fatalf("commits = %d mid-take, want 0", commits)
	}
	r.Stop()
	if commits != 0 {
		t.Fatalf("commits = %d after discard, want 0", commits)
	}

	if err := r.begin(0); err != nil {
		t.Fatal(err)
	}
	driveCountdown(t, r)
	for i := 0; i < NumSlots; i++ {
		r.stepTick()
	}
	if commits != 1 {
		t.Errorf("commits = %d after natural completion, want 1", commits)
	}
}

func TestCountdownPitchRises(t *testing.T) {
	if CountdownPitch(4) != "C5" || CountdownPitch(1) != "G5" {
		t.Fatalf("pitches = %s..%s", CountdownPitch(4), CountdownPitch(1))
	}
}
