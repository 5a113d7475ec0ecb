package sequencer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ShareState is the serializable session snapshot exchanged as a
// base64 string (the shape the web UI would put in a ?d= URL param).
type ShareState struct {
	Tracks      []*Track `json:"tracks"`
	Tempo       int      `json:"tempo"`
	ActiveTrack int      `json:"activeTrack"`
	HydraCode   string   `json:"hydraCode"`
}

// EncodeShare serializes a snapshot into a URL-safe base64 string
func EncodeShare(snap Snapshot) string {
	state := ShareState{
		Tempo:       snap.Tempo,
		ActiveTrack: snap.ActiveTrack,
		HydraCode:   snap.BackgroundCode,
	}
	for i := range snap.Tracks {
		state.Tracks = append(state.Tracks, snap.Tracks[i].Clone())
	}
	data, err := json.Marshal(state)
	if err != nil {
		// ShareState contains no unmarshalable types
		panic(err)
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeShare parses and structurally validates an encoded state.
// Invalid input yields an error and must leave the caller's state
// untouched (the load is a no-op).
func DecodeShare(encoded string) (*ShareState, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("share state: %w", err)
	}
	var state ShareState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("share state: %w", err)
	}
	if err := state.validate(); err != nil {
		return nil, fmt.Errorf("share state: %w", err)
	}
	return &state, nil
}

func (s *ShareState) validate() error {
	if len(s.Tracks) != NumTracks {
		return fmt.Errorf("want %d tracks, got %d", NumTracks, len(s.Tracks))
	}
	if s.ActiveTrack < 0 || s.ActiveTrack >= NumTracks {
		return fmt.Errorf("active track %d out of range", s.ActiveTrack)
	}
	if s.Tempo < MinTempo || s.Tempo > MaxTempo {
		return fmt.Errorf("tempo %d out of range", s.Tempo)
	}
	for i, t := range s.Tracks {
		if t == nil || !t.Valid() {
			return fmt.Errorf("track %d: malformed variant", i)
		}
		if t.Volume < 0 || t.Volume > 1 {
			return fmt.Errorf("track %d: volume %v out of range", i, t.Volume)
		}
	}
	return nil
}
