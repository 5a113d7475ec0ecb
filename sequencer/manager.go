package sequencer

import (
	"sync"

	"github.com/lichin-lin/sound-machine/audio"
	"github.com/lichin-lin/sound-machine/debug"
)

// Runtime is the transport controller's handle on the external
// live-coding runtime: it receives the generated source text and the
// play/stop requests. Assigned once at construction - no late-bound
// function pointers.
type Runtime interface {
	Evaluate(code string) error
	Play() error
	Stop() error
}

// TranspileFunc derives runtime source text from a store snapshot
type TranspileFunc func(Snapshot) string

// cueDurationMS is how long a countdown click rings
const cueDurationMS = 150

// echoDurationMS is how long a live keyboard echo note rings
const echoDurationMS = 250

// Manager is the single entry point for user intents. It owns the
// store, the beat clock and the recording session, and after every
// store mutation synchronously re-derives the runtime source text -
// there is no window where the generated code lags the state.
type Manager struct {
	store   *Store
	clock   *Clock
	session *RecordingSession

	engine    audio.Engine
	runtime   Runtime
	transpile TranspileFunc

	codeMu sync.Mutex
	code   string

	// UpdateChan signals the UI that state changed; PlayheadChan
	// carries every published playhead position. Both use
	// non-blocking sends.
	UpdateChan   chan struct{}
	PlayheadChan chan int
}

// NewManager wires the store, clock and recording session together
// and derives the initial source text.
func NewManager(engine audio.Engine, runtime Runtime, transpile TranspileFunc) *Manager {
	m := &Manager{
		engine:       engine,
		runtime:      runtime,
		transpile:    transpile,
		store:        NewStore(),
		UpdateChan:   make(chan struct{}, 1),
		PlayheadChan: make(chan int, 1),
	}
	m.clock = NewClock(m.onPlayhead)
	m.session = NewRecordingSession(m.store, m.onCue, m.notify, m.onSessionCommit)
	m.recompile()
	return m
}

// Store exposes read access to the pattern store
func (m *Manager) Store() *Store { return m.store }

// Session exposes read access to the recording session
func (m *Manager) Session() *RecordingSession { return m.session }

// Snapshot returns a deep copy of the current store state
func (m *Manager) Snapshot() Snapshot { return m.store.Snapshot() }

// Code returns the most recently generated runtime source text
func (m *Manager) Code() string {
	m.codeMu.Lock()
	defer m.codeMu.Unlock()
	return m.code
}

// Position returns the clock's playhead slot, NoPosition when idle
func (m *Manager) Position() int { return m.clock.Position() }

// SelectTrack makes the given track the active one
func (m *Manager) SelectTrack(index int) {
	m.store.SetActiveTrack(index)
	m.recompile()
}

// SetTrackType switches a track between drum and piano variants,
// cancelling any recording session targeting it first.
func (m *Manager) SetTrackType(index int, typ TrackType) {
	m.session.CancelIf(index)
	m.store.SetTrackType(index, typ)
	m.recompile()
}

// ToggleDrumSound flips one sound in one slot of a drum track
func (m *Manager) ToggleDrumSound(index, slot int, sound DrumSound) {
	m.store.ToggleDrumSound(index, slot, sound)
	m.recompile()
}

// SetDrumTheme selects a drum track's sample bank
func (m *Manager) SetDrumTheme(index int, theme DrumTheme) {
	m.store.SetDrumTheme(index, theme)
	m.recompile()
}

// SetDrumRoom sets a drum track's reverb amount
func (m *Manager) SetDrumRoom(index int, room float64) {
	m.store.SetDrumRoom(index, room)
	m.recompile()
}

// SetDrumPitch sets a drum track's transpose amount
func (m *Manager) SetDrumPitch(index, pitch int) {
	m.store.SetDrumPitch(index, pitch)
	m.recompile()
}

// ApplyDrumPreset replaces a drum track's whole pattern
func (m *Manager) ApplyDrumPreset(index int, pattern [NumSlots][]DrumSound) {
	m.store.ApplyDrumPreset(index, pattern)
	m.recompile()
}

// ClearPianoNotes empties a piano track
func (m *Manager) ClearPianoNotes(index int) {
	m.store.ClearPianoNotes(index)
	m.recompile()
}

// SetPianoBaseOctave moves a piano track's keyboard range
func (m *Manager) SetPianoBaseOctave(index int, octave PianoBaseOctave) {
	m.store.SetPianoBaseOctave(index, octave)
	m.recompile()
}

// SetPianoTheme selects a piano track's timbre, retuning the live
// preview engine to match.
func (m *Manager) SetPianoTheme(index int, theme PianoTheme) {
	m.store.SetPianoTheme(index, theme)
	m.engine.SetTheme(string(theme))
	m.recompile()
}

// SetTrackVolume sets a track's gain
func (m *Manager) SetTrackVolume(index int, volume float64) {
	m.store.SetTrackVolume(index, volume)
	m.recompile()
}

// SetTempo sets the global BPM, retuning the clock in place when
// playback is running.
func (m *Manager) SetTempo(bpm int) {
	m.store.SetTempo(bpm)
	m.clock.SetTempo(m.store.Tempo())
	m.recompile()
}

// Play starts playback: the clock begins ticking and the runtime is
// asked to start. Idempotent while playing.
func (m *Manager) Play() {
	if m.store.Playing() {
		return
	}
	m.store.SetPlaying(true)
	m.clock.Start(m.store.Tempo())
	if err := m.runtime.Play(); err != nil {
		debug.Log("manager", "runtime play: %v", err)
	}
	m.notify()
}

// Stop halts playback and resets the playhead to no-position
func (m *Manager) Stop() {
	if !m.store.Playing() {
		return
	}
	m.clock.Stop()
	m.store.SetPlaying(false)
	if err := m.runtime.Stop(); err != nil {
		debug.Log("manager", "runtime stop: %v", err)
	}
	m.notify()
}

// TogglePlay flips between playing and stopped
func (m *Manager) TogglePlay() {
	if m.store.Playing() {
		m.Stop()
	} else {
		m.Play()
	}
}

// StartRecording begins a countdown on the active track. Fails for
// drum tracks and while another session is in flight.
func (m *Manager) StartRecording() error {
	return m.session.Start(m.store.ActiveTrack())
}

// StopRecording cancels an in-flight session, discarding its capture
func (m *Manager) StopRecording() { m.session.Stop() }

// ToggleRecording starts a session when idle, cancels it otherwise
func (m *Manager) ToggleRecording() {
	if m.session.Phase() == PhaseIdle {
		if err := m.StartRecording(); err != nil {
			debug.Log("manager", "record: %v", err)
		}
		return
	}
	m.StopRecording()
}

// KeyPress handles a live piano key: echo it through the engine and,
// while a session is recording, capture it at the current slot.
func (m *Manager) KeyPress(note string) {
	timbre := string(ThemePiano)
	snap := m.store.Snapshot()
	if t := snap.Tracks[snap.ActiveTrack]; t.Piano != nil {
		timbre = string(t.Piano.Theme)
	}
	if err := m.engine.PlayNote(note, echoDurationMS, timbre); err != nil {
		debug.Log("manager", "echo %s: %v", note, err)
	}
	m.session.NoteOn(note)
}

// LoadPreset atomically replaces the whole session with a catalog
// preset: playback stops, any recording session is cancelled, then
// the store is swapped.
func (m *Manager) LoadPreset(id string) error {
	preset, ok := FindPreset(id)
	if !ok {
		return ErrPresetNotFound
	}
	m.Stop()
	m.session.Stop()
	m.store.LoadPreset(preset)
	m.recompile()
	return nil
}

// Share encodes the current session as a portable string
func (m *Manager) Share() string {
	return EncodeShare(m.store.Snapshot())
}

// LoadShared restores a session from an encoded share string; invalid
// input leaves the current state untouched.
func (m *Manager) LoadShared(encoded string) error {
	state, err := DecodeShare(encoded)
	if err != nil {
		return err
	}
	m.Stop()
	m.session.Stop()
	m.store.loadTracks(state.Tracks, state.Tempo, state.ActiveTrack, state.HydraCode)
	m.recompile()
	return nil
}

// recompile re-derives the runtime source from the current snapshot
// and hands it to the runtime. Runs synchronously after every store
// mutation.
func (m *Manager) recompile() {
	code := m.transpile(m.store.Snapshot())
	m.codeMu.Lock()
	m.code = code
	m.codeMu.Unlock()
	if err := m.runtime.Evaluate(code); err != nil {
		debug.Log("manager", "runtime evaluate: %v", err)
	}
	m.notify()
}

// onPlayhead forwards clock positions to the UI channel
func (m *Manager) onPlayhead(pos int) {
	select {
	case m.PlayheadChan <- pos:
	default:
	}
}

// onCue plays a countdown click; engine failures never reach the
// recording state machine.
func (m *Manager) onCue(pitch string) {
	if err := m.engine.PlayNote(pitch, cueDurationMS, string(ThemePiano)); err != nil {
		debug.Log("manager", "cue %s: %v", pitch, err)
	}
}

// onSessionCommit re-derives source once the finished take has landed
// in the store. Countdown beats and cursor moves only notify the UI;
// they never touch the store, so recompiling for them would feed the
// runtime byte-identical code.
func (m *Manager) onSessionCommit() {
	m.recompile()
}

func (m *Manager) notify() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
