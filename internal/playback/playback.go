// Package playback tracks the authoritative frame counter of a render run
// and derives the current scene time from it. A mutable time offset lets a
// sub-frame be rendered "at" a fractional point between integer frames
// without perturbing the frame counter itself.
package playback

// State describes what the playback clock is currently doing.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Status is the playback facade consulted by rendering code. Frame, FPS,
// speed and state are authoritative; the time offset is additive and purely
// presentational.
type Status struct {
	frame      int64
	fps        float64
	speed      float64
	state      State
	timeOffset float64
}

// NewStatus returns a stopped clock at frame zero.
func NewStatus(fps float64) *Status {
	if fps <= 0 {
		fps = 30
	}
	return &Status{fps: fps, speed: 1, state: StateStopped}
}

// Time is the current scene time in seconds: the frame converted to seconds
// plus the injected time offset.
func (s *Status) Time() float64 {
	return float64(s.frame)/s.fps + s.timeOffset
}

// SetTimeOffset injects a temporal offset, in seconds, into Time. The frame
// counter, speed and fps are unaffected.
func (s *Status) SetTimeOffset(offset float64) {
	s.timeOffset = offset
}

// ResetTimeOffset clears the injected offset. This is never automatic:
// callers running a sub-frame loop must reset afterwards so later time reads
// are not skewed.
func (s *Status) ResetTimeOffset() {
	s.timeOffset = 0
}

// TimeOffset reports the currently injected offset.
func (s *Status) TimeOffset() float64 {
	return s.timeOffset
}

func (s *Status) Frame() int64 {
	return s.frame
}

func (s *Status) SetFrame(frame int64) {
	if frame < 0 {
		frame = 0
	}
	s.frame = frame
}

// Advance moves the frame counter forward by one frame.
func (s *Status) Advance() {
	s.frame++
}

func (s *Status) FPS() float64 {
	return s.fps
}

func (s *Status) Speed() float64 {
	return s.speed
}

func (s *Status) SetSpeed(speed float64) {
	s.speed = speed
}

func (s *Status) State() State {
	return s.state
}

func (s *Status) SetState(state State) {
	s.state = state
}

// FrameDuration is the wall duration of one frame in seconds.
func (s *Status) FrameDuration() float64 {
	return 1 / s.fps
}
