package modplayer

// StereoFrame is one interleaved left/right output sample.
type StereoFrame struct {
	Left, Right float32
}

// AudioChannel is a single mixer voice: a playback instance of a Sample with
// its own fractional read position, volume, panning and loop state. The
// zero value is a valid, inactive voice.
//
// AudioChannel holds a non-owning reference to its Sample; the sample bank
// (a Module, or a session-level store) must outlive any voice referencing
// it.
type AudioChannel struct {
	volume  float64 // 0..1
	panning float64 // -1..+1

	sampleIndex float64 // fractional read position
	sampleStep  float64 // per-frame increment, may be negative (pingpong)

	loop   LoopParams
	sample *Sample

	active bool

	sampleRate uint // engine output sample rate, immutable per voice
}

// NewAudioChannel creates an inactive voice bound to the engine's output
// sample rate.
func NewAudioChannel(sampleRate uint) *AudioChannel {
	return &AudioChannel{sampleRate: sampleRate}
}

// SetVolume clamps v to [0,1] and always succeeds.
func (c *AudioChannel) SetVolume(v float64) {
	c.volume = clampF(v, 0, 1)
}

// Volume returns the voice's current volume.
func (c *AudioChannel) Volume() float64 { return c.volume }

// SetPanning clamps p to [-1,+1] and always succeeds. -1 is full left, 0 is
// center, +1 is full right.
func (c *AudioChannel) SetPanning(p float64) {
	c.panning = clampF(p, -1, 1)
}

// Panning returns the voice's current pan position.
func (c *AudioChannel) Panning() float64 { return c.panning }

// SetPlaybackRate sets the voice's per-frame step from a playback rate in
// Hz. It is a no-op when hz <= 0, leaving the existing step unchanged.
func (c *AudioChannel) SetPlaybackRate(hz float64) {
	if hz <= 0 {
		return
	}
	c.sampleStep = hz / float64(c.sampleRate)
}

// Play resets the voice's read position to 0, adopts the given loop
// descriptor and activates the voice.
func (c *AudioChannel) Play(sample *Sample, loop LoopParams) {
	c.sample = sample
	c.loop = loop
	c.sampleIndex = 0
	c.active = true
}

// Enable reactivates a voice without resetting its position.
func (c *AudioChannel) Enable() { c.active = true }

// Disable silences the voice. The next render of it produces silence.
func (c *AudioChannel) Disable() { c.active = false }

// Active reports whether the voice currently contributes sound.
func (c *AudioChannel) Active() bool { return c.active }

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// renderVoice advances voice by up to len(out) frames, writing its
// contribution into out. Frames beyond the point the voice goes inactive
// are left as exact zero. renderVoice performs no allocation, no I/O and no
// locking; it touches only c's own fields and out.
//
// Given identical inputs, renderVoice's output is bit-identical across runs:
// it does nothing but float arithmetic on the supplied state.
func renderVoice(c *AudioChannel, out []StereoFrame) {
	for i := range out {
		out[i] = StereoFrame{}
	}

	if !c.active || c.sample == nil {
		return
	}

	// Linear pan law: center (0) leaves both channels at unity gain; moving
	// toward one side attenuates only the opposite channel. This keeps a
	// centered voice at full amplitude (spec.md §8 end-to-end scenario 1)
	// while still driving hard left/right to (1,0)/(0,1) (scenario 3).
	leftPan, rightPan := 1.0, 1.0
	if c.panning > 0 {
		leftPan = 1.0 - c.panning
	} else if c.panning < 0 {
		rightPan = 1.0 + c.panning
	}

	wavetable := c.sample.Data
	l := len(wavetable)
	if l == 0 {
		c.active = false
		return
	}

	for k := range out {
		if !c.active {
			break
		}

		i := int(c.sampleIndex)
		frac := c.sampleIndex - float64(i)
		s0 := wavetable[i]
		s1 := wavetable[(i+1)%l]
		s := float64(s0) + frac*float64(s1-s0)
		s *= c.volume

		out[k].Left = float32(s * leftPan)
		out[k].Right = float32(s * rightPan)

		c.sampleIndex += c.sampleStep

		switch c.loop.Mode {
		case LoopOff:
			if c.sampleIndex >= float64(l) {
				c.active = false
			}
		case LoopForward:
			if c.sampleIndex >= float64(c.loop.End) {
				c.sampleIndex -= float64(c.loop.Length())
			}
		case LoopPingPong:
			if c.sampleStep > 0 && c.sampleIndex >= float64(c.loop.End) {
				c.sampleIndex = float64(c.loop.End) - (c.sampleIndex - float64(c.loop.End)) - 1
				c.sampleStep = -c.sampleStep
			} else if c.sampleStep < 0 && c.sampleIndex < float64(c.loop.Begin) {
				c.sampleIndex = float64(c.loop.Begin) + (float64(c.loop.Begin) - c.sampleIndex)
				c.sampleStep = -c.sampleStep
			}
		}
	}
}
