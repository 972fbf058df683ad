package field

// Channel indices into a Snapshot's interleaved data. The layout is fixed for
// every engine so a renderer can be written without knowing which one runs.
const (
	// ChannelThickness holds quantized thickness in [0, 255].
	ChannelThickness = iota
	// ChannelTemperature holds temperature in °C (zero for engines without
	// a thermal model).
	ChannelTemperature
	// ChannelSpeed holds flow speed in m/s.
	ChannelSpeed
	// ChannelSolid holds 1 for solidified lava and 0 otherwise. Dry cells,
	// whose exported thickness is zero, always read 0.
	ChannelSolid

	// Channels is the number of interleaved channels per cell.
	Channels
)

// Snapshot is a texture-ordered copy of engine state: row 0 is v = 0. It is
// never aliased with live engine buffers.
type Snapshot struct {
	Size int
	Data []float32

	// Elevation carries the height field when terrain feedback modified it,
	// texture-ordered at ElevationSize×ElevationSize. Nil otherwise.
	Elevation     []float32
	ElevationSize int
}

// NewSnapshot allocates a snapshot for an n×n grid.
func NewSnapshot(n int) *Snapshot {
	s := &Snapshot{}
	s.Resize(n)
	return s
}

// Resize reallocates the buffers when the grid size changes.
func (s *Snapshot) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if s.Size == n && len(s.Data) == n*n*Channels {
		return
	}
	s.Size = n
	s.Data = make([]float32, n*n*Channels)
}

// At returns channel ch of texel (x, row) in texture order.
func (s *Snapshot) At(x, row, ch int) float32 {
	return s.Data[(row*s.Size+x)*Channels+ch]
}

// Plane copies one channel into a dense slice.
func (s *Snapshot) Plane(ch int) []float32 {
	out := make([]float32, s.Size*s.Size)
	for i := range out {
		out[i] = s.Data[i*Channels+ch]
	}
	return out
}

// Bytes copies one channel into bytes, clamping to [0, 255].
func (s *Snapshot) Bytes(ch int) []byte {
	out := make([]byte, s.Size*s.Size)
	for i := range out {
		v := s.Data[i*Channels+ch]
		switch {
		case v <= 0:
			out[i] = 0
		case v >= 255:
			out[i] = 255
		default:
			out[i] = byte(v)
		}
	}
	return out
}

// Total sums one channel.
func (s *Snapshot) Total(ch int) float64 {
	total := 0.0
	for i := 0; i < s.Size*s.Size; i++ {
		total += float64(s.Data[i*Channels+ch])
	}
	return total
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Size:          s.Size,
		Data:          append([]float32(nil), s.Data...),
		ElevationSize: s.ElevationSize,
	}
	if s.Elevation != nil {
		c.Elevation = append([]float32(nil), s.Elevation...)
	}
	return c
}
