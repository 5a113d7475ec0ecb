package audio

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/lichin-lin/sound-machine/debug"
)

// timbrePrograms maps instrument timbres to General MIDI program
// numbers so SetTheme works against any GM-compatible synth.
var timbrePrograms = map[string]uint8{
	"piano":          0,  // acoustic grand
	"kawai":          1,  // bright acoustic
	"gm_cello":       42, // cello
	"psaltery_pluck": 45, // pizzicato strings
	"botella":        12, // marimba, closest hollow timbre
	"gm_xylophone":   13, // xylophone
}

// MIDIOut sends notes to an external synth over a MIDI port
type MIDIOut struct {
	mu      sync.Mutex
	out     drivers.Out
	send    func(msg midi.Message) error
	channel uint8
}

// ListPorts returns the names of all available MIDI output ports
func ListPorts() []string {
	outs := midi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

// OpenMIDIOut opens the named output port, or the first available port
// when name is empty.
func OpenMIDIOut(name string, channel int) (*MIDIOut, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return nil, fmt.Errorf("no MIDI output ports available")
	}

	var port drivers.Out
	if name == "" {
		port = outs[0]
	} else {
		for _, out := range outs {
			if out.String() == name {
				port = out
				break
			}
		}
		if port == nil {
			return nil, fmt.Errorf("MIDI port %q not found", name)
		}
	}

	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open port %s: %w", port, err)
	}

	if channel < 0 || channel > 15 {
		channel = 0
	}
	debug.Log("audio", "opened MIDI out %s channel=%d", port, channel)
	return &MIDIOut{out: port, send: send, channel: uint8(channel)}, nil
}

// PlayNote sends a NoteOn and schedules the matching NoteOff. Errors
// are logged and swallowed so a dead port never breaks the UI; the
// returned error is informational only.
func (m *MIDIOut) PlayNote(note string, durationMS int, timbre string) error {
	n, err := NoteNumber(note)
	if err != nil {
		debug.Log("audio", "play %s: %v", note, err)
		return err
	}
	if durationMS <= 0 {
		durationMS = 200
	}

	m.mu.Lock()
	send := m.send
	ch := m.channel
	m.mu.Unlock()

	if err := send(midi.NoteOn(ch, n, 100)); err != nil {
		debug.Log("audio", "note on %s: %v", note, err)
		return err
	}
	go func() {
		time.Sleep(time.Duration(durationMS) * time.Millisecond)
		if err := send(midi.NoteOff(ch, n)); err != nil {
			debug.Log("audio", "note off %s: %v", note, err)
		}
	}()
	return nil
}

// SetTheme switches the synth's program to the timbre's GM mapping.
// Unknown timbres keep the current program.
func (m *MIDIOut) SetTheme(timbre string) {
	program, ok := timbrePrograms[timbre]
	if !ok {
		return
	}
	m.mu.Lock()
	send := m.send
	ch := m.channel
	m.mu.Unlock()
	if err := send(midi.ProgramChange(ch, program)); err != nil {
		debug.Log("audio", "program change %s: %v", timbre, err)
	}
}

// Close silences any hanging notes and releases the MIDI driver
func (m *MIDIOut) Close() {
	m.mu.Lock()
	send := m.send
	ch := m.channel
	m.mu.Unlock()
	for n := 0; n < 128; n++ {
		send(midi.NoteOff(ch, uint8(n)))
	}
	midi.CloseDriver()
}
