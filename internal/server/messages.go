package server

import (
	"lavaflow/internal/core"
	"lavaflow/internal/field"
)

// Command types accepted from clients.
const (
	CmdInject       = "inject"
	CmdVent         = "vent"
	CmdClearVents   = "clear_vents"
	CmdVentsEnabled = "vents_enabled"
	CmdClear        = "clear"
	CmdPause        = "pause"
	CmdStep         = "step"
	CmdSet          = "set"
)

// Command is a client request. Only the fields relevant to Type are read.
type Command struct {
	Type string `json:"type"`

	U float64 `json:"u,omitempty"`
	V float64 `json:"v,omitempty"`
	// Amount and Radius override the session's injection settings when
	// positive.
	Amount float64 `json:"amount,omitempty"`
	Radius float64 `json:"radius,omitempty"`

	Enabled bool `json:"enabled,omitempty"`

	Key   string  `json:"key,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// Frame is one exported snapshot. Thickness is always present; the thermal
// planes are only sent when the engine reports temperatures.
type Frame struct {
	Type   string `json:"type"`
	Engine string `json:"engine"`
	Tick   int    `json:"tick"`
	Paused bool   `json:"paused"`
	Size   int    `json:"size"`

	Thickness   []byte    `json:"thickness"`
	Temperature []float32 `json:"temperature,omitempty"`
	Speed       []float32 `json:"speed,omitempty"`
	Solid       []byte    `json:"solid,omitempty"`

	Elevation     []float32 `json:"elevation,omitempty"`
	ElevationSize int       `json:"elevationSize,omitempty"`
}

// Params describes the session tunables; sent on connect and after every
// accepted set command.
type Params struct {
	Type     string                  `json:"type"`
	Snapshot core.ParameterSnapshot  `json:"snapshot"`
	Controls []core.ParameterControl `json:"controls"`
}

// ErrorMessage reports a rejected command to the client that sent it.
type ErrorMessage struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Error   string `json:"error"`
}

func newFrame(engine string, tick int, paused bool, snap *field.Snapshot) Frame {
	f := Frame{
		Type:      "frame",
		Engine:    engine,
		Tick:      tick,
		Paused:    paused,
		Size:      snap.Size,
		Thickness: snap.Bytes(field.ChannelThickness),
	}
	if snap.Total(field.ChannelTemperature) > 0 {
		f.Temperature = snap.Plane(field.ChannelTemperature)
		f.Speed = snap.Plane(field.ChannelSpeed)
		f.Solid = snap.Bytes(field.ChannelSolid)
	}
	if snap.Elevation != nil {
		f.Elevation = snap.Elevation
		f.ElevationSize = snap.ElevationSize
	}
	return f
}
