// Package tui is the terminal front-end: it reads store snapshots,
// sends user intents to the manager, and renders the 16-slot grid
// with the playhead highlight and the generated Strudel source.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lichin-lin/sound-machine/sequencer"
)

var (
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#444"))
	playheadStyle = lipgloss.NewStyle().Reverse(true)
	recordStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f55"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	codeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6a6"))
)

// pianoKeys maps typing-keyboard keys to semitone offsets from the
// track's base C, the usual DAW layout: home row white, top row black.
var pianoKeys = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12, "o": 13,
	"l": 14, "p": 15, ";": 16, "'": 17,
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

type playheadMsg int
type refreshMsg struct{}

// Model is the bubbletea model for the sequencer UI
type Model struct {
	man      *sequencer.Manager
	cursor   int // slot cursor 0..15
	soundRow int // selected drum sound row
	playhead int
	pattern  int // next drum pattern to apply
	quitting bool
}

// NewModel creates the UI bound to a manager
func NewModel(man *sequencer.Manager) Model {
	return Model{man: man, playhead: sequencer.NoPosition}
}

func listenForPlayhead(man *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		return playheadMsg(<-man.PlayheadChan)
	}
}

func listenForUpdate(man *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-man.UpdateChan
		return refreshMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForPlayhead(m.man), listenForUpdate(m.man))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" {
			m.quitting = true
			m.man.StopRecording()
			m.man.Stop()
			return m, tea.Quit
		}
		return m.handleKey(key), nil

	case playheadMsg:
		m.playhead = int(msg)
		return m, listenForPlayhead(m.man)

	case refreshMsg:
		return m, listenForUpdate(m.man)
	}
	return m, nil
}

func (m Model) handleKey(key string) Model {
	snap := m.man.Snapshot()
	active := snap.ActiveTrack
	track := snap.Tracks[active]

	// piano tracks turn the home row into a keyboard
	if track.Type == sequencer.TrackTypePiano {
		if offset, ok := pianoKeys[key]; ok {
			base := int(track.Piano.BaseOctave)
			note := fmt.Sprintf("%s%d", noteNames[offset%12], base+offset/12)
			m.man.KeyPress(note)
			return m
		}
	}

	switch key {
	case "1", "2", "3", "4":
		m.man.SelectTrack(int(key[0] - '1'))

	case "tab":
		if track.Type == sequencer.TrackTypeDrum {
			m.man.SetTrackType(active, sequencer.TrackTypePiano)
		} else {
			m.man.SetTrackType(active, sequencer.TrackTypeDrum)
		}

	case "P":
		m.man.TogglePlay()

	case "R":
		m.man.ToggleRecording()

	case "+", "=":
		m.man.SetTempo(snap.Tempo + 5)
	case "-", "_":
		m.man.SetTempo(snap.Tempo - 5)

	case "[":
		m.man.SetTrackVolume(active, track.Volume-0.05)
	case "]":
		m.man.SetTrackVolume(active, track.Volume+0.05)

	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right":
		if m.cursor < sequencer.NumSlots-1 {
			m.cursor++
		}
	case "up":
		if track.Type == sequencer.TrackTypeDrum && m.soundRow > 0 {
			m.soundRow--
		} else if track.Type == sequencer.TrackTypePiano {
			m.man.SetPianoBaseOctave(active, track.Piano.BaseOctave+1)
		}
	case "down":
		if track.Type == sequencer.TrackTypeDrum && m.soundRow < len(sequencer.DrumSounds)-1 {
			m.soundRow++
		} else if track.Type == sequencer.TrackTypePiano {
			m.man.SetPianoBaseOctave(active, track.Piano.BaseOctave-1)
		}

	case " ":
		if track.Type == sequencer.TrackTypeDrum {
			m.man.ToggleDrumSound(active, m.cursor, sequencer.DrumSounds[m.soundRow])
		}

	case "m":
		m.cycleTheme(active, track)

	case "b":
		if track.Type == sequencer.TrackTypeDrum {
			pat := sequencer.DrumPatterns[m.pattern%len(sequencer.DrumPatterns)]
			m.man.ApplyDrumPreset(active, pat.Pattern)
			m.pattern++
		}

	case "<":
		if track.Drum != nil {
			m.man.SetDrumPitch(active, track.Drum.Pitch-1)
		}
	case ">":
		if track.Drum != nil {
			m.man.SetDrumPitch(active, track.Drum.Pitch+1)
		}
	case "{":
		if track.Drum != nil {
			m.man.SetDrumRoom(active, track.Drum.Room-0.1)
		}
	case "}":
		if track.Drum != nil {
			m.man.SetDrumRoom(active, track.Drum.Room+0.1)
		}

	case "X":
		if track.Type == sequencer.TrackTypeDrum {
			m.man.ApplyDrumPreset(active, [sequencer.NumSlots][]sequencer.DrumSound{})
		} else {
			m.man.ClearPianoNotes(active)
		}

	case "f1", "f2", "f3":
		presets := sequencer.Presets()
		if i := int(key[1] - '1'); i < len(presets) {
			m.man.LoadPreset(presets[i].ID)
		}
	}
	return m
}

// cycleTheme advances the active track's bank or timbre
func (m Model) cycleTheme(active int, track sequencer.Track) {
	switch track.Type {
	case sequencer.TrackTypeDrum:
		themes := append([]sequencer.DrumTheme{sequencer.NoDrumTheme}, sequencer.DrumThemes...)
		for i, th := range themes {
			if th == track.Drum.Theme {
				m.man.SetDrumTheme(active, themes[(i+1)%len(themes)])
				return
			}
		}
		m.man.SetDrumTheme(active, themes[0])
	case sequencer.TrackTypePiano:
		for i, th := range sequencer.PianoThemes {
			if th == track.Piano.Theme {
				m.man.SetPianoTheme(active, sequencer.PianoThemes[(i+1)%len(sequencer.PianoThemes)])
				return
			}
		}
		m.man.SetPianoTheme(active, sequencer.PianoThemes[0])
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.man.Snapshot()
	var b strings.Builder

	b.WriteString(m.statusLine(snap))
	b.WriteString("\n\n")
	b.WriteString(m.trackTabs(snap))
	b.WriteString("\n")

	track := snap.Tracks[snap.ActiveTrack]
	switch track.Type {
	case sequencer.TrackTypeDrum:
		b.WriteString(m.drumGrid(track))
	case sequencer.TrackTypePiano:
		b.WriteString(m.pianoStrip(track))
	}

	b.WriteString("\n")
	b.WriteString(codeStyle.Render(m.man.Code()))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(m.helpLine(track.Type)))
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusLine(snap sequencer.Snapshot) string {
	playState := "stop"
	if snap.Playing {
		playState = "play"
	}
	status := fmt.Sprintf("sound-machine  %s %3dbpm", playState, snap.Tempo)

	session := m.man.Session()
	switch session.Phase() {
	case sequencer.PhaseCountdown:
		status += recordStyle.Render(fmt.Sprintf("  ● %d", session.Countdown()))
	case sequencer.PhaseRecording:
		status += recordStyle.Render("  ● REC")
	}
	return statusStyle.Render(status)
}

func (m Model) trackTabs(snap sequencer.Snapshot) string {
	var tabs []string
	for i := range snap.Tracks {
		t := &snap.Tracks[i]
		label := fmt.Sprintf(" %d:%s %.0f%% ", i+1, t.Type, t.Volume*100)
		if t.Active {
			tabs = append(tabs, activeStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, dimStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, " ")
}

// drumGrid renders 11 sound rows by 16 slot columns
func (m Model) drumGrid(track sequencer.Track) string {
	var b strings.Builder
	for row, sound := range sequencer.DrumSounds {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%4s ", sound)))
		for slot := 0; slot < sequencer.NumSlots; slot++ {
			char := "·"
			for _, have := range track.Drum.Pattern[slot] {
				if have == sound {
					char = "●"
					break
				}
			}

			style := dimStyle
			if char == "●" {
				style = activeStyle
			}
			if row == m.soundRow && slot == m.cursor {
				style = style.Inherit(cursorStyle)
			}
			if slot == m.playhead {
				style = playheadStyle
			}
			b.WriteString(style.Render(char + " "))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"\nbank:%s  room:%.2f  pitch:%+d\n",
		themeLabel(track.Drum.Theme), track.Drum.Room, track.Drum.Pitch)))
	return b.String()
}

func themeLabel(theme sequencer.DrumTheme) string {
	if theme == sequencer.NoDrumTheme {
		return "none"
	}
	return string(theme)
}

// pianoStrip renders the 16 slots with their notes plus the record cursor
func (m Model) pianoStrip(track sequencer.Track) string {
	pattern := track.Piano.SlotPattern()
	session := m.man.Session()
	recCursor := sequencer.NoPosition
	if session.Phase() == sequencer.PhaseRecording {
		recCursor = session.Cursor()
	}

	var b strings.Builder
	for slot := 0; slot < sequencer.NumSlots; slot++ {
		cell := "····"
		if len(pattern[slot]) == 1 {
			cell = fmt.Sprintf("%-4s", pattern[slot][0])
		} else if len(pattern[slot]) > 1 {
			cell = fmt.Sprintf("%d nt ", len(pattern[slot]))[:4]
		}

		style := dimStyle
		if len(pattern[slot]) > 0 {
			style = activeStyle
		}
		if slot == recCursor {
			style = recordStyle.Reverse(true)
		} else if slot == m.playhead {
			style = playheadStyle
		}
		b.WriteString(style.Render(cell))
		b.WriteString(" ")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"\n\noctave:C%d  timbre:%s  notes:%d\n",
		track.Piano.BaseOctave, track.Piano.Theme, len(track.Piano.Notes))))
	return b.String()
}

func (m Model) helpLine(typ sequencer.TrackType) string {
	common := "1-4:track  tab:type  P:play  R:record  +/-:tempo  [/]:vol  m:theme  f1-f3:preset  q:quit"
	if typ == sequencer.TrackTypeDrum {
		return "arrows:move  space:toggle  b:beat  </>:pitch  {/}:room  X:clear  " + common
	}
	return "a-':notes  up/down:octave  X:clear  " + common
}
