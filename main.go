package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lichin-lin/sound-machine/audio"
	"github.com/lichin-lin/sound-machine/config"
	"github.com/lichin-lin/sound-machine/debug"
	"github.com/lichin-lin/sound-machine/sequencer"
	"github.com/lichin-lin/sound-machine/strudel"
	"github.com/lichin-lin/sound-machine/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Printf("debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	// MIDI is optional: without a port the sequencer still runs, it
	// just makes no sound.
	var engine audio.Engine = audio.Nop{}
	out, err := audio.OpenMIDIOut(cfg.Output.PortName, cfg.Output.Channel)
	if err != nil {
		fmt.Println("no MIDI output found, running silent")
	} else {
		engine = out
		defer out.Close()
	}

	manager := sequencer.NewManager(engine, strudel.NewLogRuntime(), strudel.Transpile)
	manager.SetTempo(cfg.UI.LastTempo)
	if cfg.UI.LastPreset != "" {
		if err := manager.LoadPreset(cfg.UI.LastPreset); err != nil {
			debug.Log("main", "preset %q: %v", cfg.UI.LastPreset, err)
		}
	}

	m := tui.NewModel(manager)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cfg.UI.LastTempo = manager.Snapshot().Tempo
	if err := cfg.Save(); err != nil {
		fmt.Printf("config save: %v\n", err)
	}
}
