package sequencer

import (
	"errors"
	"sync"
	"time"

	"github.com/lichin-lin/sound-machine/debug"
)

// RecordingPhase is the state of a recording session
type RecordingPhase int

const (
	PhaseIdle RecordingPhase = iota
	PhaseCountdown
	PhaseRecording
)

func (p RecordingPhase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseRecording:
		return "recording"
	}
	return "idle"
}

var (
	// ErrNotPianoTrack rejects recording onto a drum track
	ErrNotPianoTrack = errors.New("recording target is not a piano track")
	// ErrSessionActive rejects a second session while one is in flight;
	// sessions are never queued
	ErrSessionActive = errors.New("a recording session is already active")
)

// countdownBeats is the length of the lead-in, one count per quarter note
const countdownBeats = 4

// CountdownPitch returns the audible cue for a countdown value 4..1.
// The final count is pitched a fifth higher: rising pitch signals the
// recording is about to start.
func CountdownPitch(count int) string {
	if count == 1 {
		return "G5"
	}
	return "C5"
}

// RecordingSession captures piano key events into a 16-slot buffer
// against the metronome. Lifecycle: idle -> countdown (4..1, quarter
// note per count) -> recording (16 sixteenth ticks) -> idle.
//
// Only a full, uninterrupted 16-tick pass commits the capture into the
// store; a manual stop at any point discards it. Only one session may
// be active at a time across all tracks.
type RecordingSession struct {
	mu        sync.Mutex
	store     *Store
	phase     RecordingPhase
	track     int
	countdown int
	cursor    int
	ticks     int
	captured  [NumSlots][]string
	stop      chan struct{}

	// cue plays the countdown click; onChange notifies the UI on
	// every phase/cursor move; onCommit fires only when a finished
	// take lands in the store. All may be nil and are called outside
	// the lock.
	cue      func(pitch string)
	onChange func()
	onCommit func()
}

// NewRecordingSession creates an idle session bound to the store
func NewRecordingSession(store *Store, cue func(pitch string), onChange, onCommit func()) *RecordingSession {
	return &RecordingSession{
		store:    store,
		cursor:   NoPosition,
		cue:      cue,
		onChange: onChange,
		onCommit: onCommit,
	}
}

// Start begins the countdown for the given track. It fails with
// ErrNotPianoTrack for drum tracks and ErrSessionActive if a session
// is already in countdown or recording on any track.
func (r *RecordingSession) Start(track int) error {
	bpm := r.store.Tempo()
	if err := r.begin(track); err != nil {
		return err
	}
	beat := time.Duration(float64(time.Minute) / float64(bpm))
	go r.run(beat, beat/4)
	return nil
}

// begin validates and arms the countdown without spawning the timer
// goroutine. Split from Start so the transitions are testable.
func (r *RecordingSession) begin(track int) error {
	if r.store.TrackType(track) != TrackTypePiano {
		return ErrNotPianoTrack
	}
	r.mu.Lock()
	if r.phase != PhaseIdle {
		r.mu.Unlock()
		return ErrSessionActive
	}
	r.phase = PhaseCountdown
	r.track = track
	r.countdown = countdownBeats
	r.cursor = NoPosition
	r.ticks = 0
	r.captured = [NumSlots][]string{}
	r.stop = make(chan struct{})
	r.mu.Unlock()

	debug.Log("rec", "countdown track=%d", track)
	r.playCue(countdownBeats)
	r.notify()
	return nil
}

// run drives the two timer phases: quarter-note ticks through the
// countdown, then sixteenth-note ticks through the capture pass.
func (r *RecordingSession) run(beat, step time.Duration) {
	r.mu.Lock()
	stop := r.stop
	r.mu.Unlock()

	ticker := time.NewTicker(beat)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			switch r.Phase() {
			case PhaseCountdown:
				if r.beatTick() {
					// countdown finished - switch to sixteenth grid
					ticker.Reset(step)
				}
			case PhaseRecording:
				r.stepTick()
			default:
				return
			}
		}
	}
}

// beatTick decrements the countdown, firing a cue per count. Returns
// true when the countdown completed and the recording phase began.
func (r *RecordingSession) beatTick() bool {
	r.mu.Lock()
	if r.phase != PhaseCountdown {
		r.mu.Unlock()
		return false
	}
	r.countdown--
	count := r.countdown
	if count > 0 {
		r.mu.Unlock()
		r.playCue(count)
		r.notify()
		return false
	}
	r.phase = PhaseRecording
	r.cursor = 0
	r.ticks = 0
	r.captured = [NumSlots][]string{}
	track := r.track
	r.mu.Unlock()

	debug.Log("rec", "recording track=%d", track)
	r.notify()
	return true
}

// stepTick advances the capture cursor. After exactly NumSlots ticks
// the pass is complete and the buffer commits to the owning track.
func (r *RecordingSession) stepTick() {
	r.mu.Lock()
	if r.phase != PhaseRecording {
		r.mu.Unlock()
		return
	}
	r.ticks++
	if r.ticks < NumSlots {
		r.cursor = r.ticks
		r.mu.Unlock()
		r.notify()
		return
	}
	// natural completion: commit, even if nothing was captured
	track := r.track
	captured := r.captured
	r.phase = PhaseIdle
	r.cursor = NoPosition
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	r.mu.Unlock()

	debug.Log("rec", "commit track=%d", track)
	r.store.CommitPianoPattern(track, captured)
	if r.onCommit != nil {
		r.onCommit()
	}
	r.notify()
}

// NoteOn records a key press into the current slot while recording.
// The same note is never appended twice to one slot.
func (r *RecordingSession) NoteOn(note string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseRecording || r.cursor < 0 || r.cursor >= NumSlots {
		return
	}
	for _, have := range r.captured[r.cursor] {
		if have == note {
			return
		}
	}
	r.captured[r.cursor] = append(r.captured[r.cursor], note)
}

// Stop cancels the session at any phase, discarding the capture
// buffer without committing. No-op while idle.
func (r *RecordingSession) Stop() {
	r.mu.Lock()
	if r.phase == PhaseIdle {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseIdle
	r.cursor = NoPosition
	r.captured = [NumSlots][]string{}
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	r.mu.Unlock()

	debug.Log("rec", "cancelled")
	r.notify()
}

// CancelIf stops the session only when it targets the given track.
// Used before a type switch or preset load replaces that track.
func (r *RecordingSession) CancelIf(track int) {
	r.mu.Lock()
	active := r.phase != PhaseIdle && r.track == track
	r.mu.Unlock()
	if active {
		r.Stop()
	}
}

// Phase returns the current lifecycle phase
func (r *RecordingSession) Phase() RecordingPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Countdown returns the current countdown value (4..1)
func (r *RecordingSession) Countdown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countdown
}

// Cursor returns the capture slot while recording, NoPosition otherwise
func (r *RecordingSession) Cursor() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// Track returns the session's target track index
func (r *RecordingSession) Track() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.track
}

func (r *RecordingSession) playCue(count int) {
	if r.cue != nil {
		r.cue(CountdownPitch(count))
	}
}

func (r *RecordingSession) notify() {
	if r.onChange != nil {
		r.onChange()
	}
}
