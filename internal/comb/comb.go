// Package comb implements a streaming Schroeder comb-filter reverb that sits
// between a Player's rendered audio and the host audio driver.
package comb

// Reverber accepts rendered stereo audio and emits reverb-processed stereo
// audio, at its own pace: InputSamples and GetAudio need not balance 1:1
// per call, matching the usage in cmd/modplay's audio callback.
type Reverber interface {
	InputSamples(in []StereoFrame) int
	GetAudio(out []StereoFrame) int
}

// StereoFrame mirrors modplayer.StereoFrame without importing the root
// package, keeping this package usable standalone.
type StereoFrame struct {
	Left, Right float32
}

// CombFixed is a fixed-delay feedback comb filter: each input frame is
// added to the frame "delay" samples behind it, scaled by decay, and the
// result feeds a ring buffer the caller drains with GetAudio. The ring
// buffer is sized once at construction; InputSamples drops data once the
// buffer is full rather than growing it, keeping the whole pipeline
// allocation-free after NewCombFixed returns.
type CombFixed struct {
	audio             []StereoFrame
	delay             int
	decay             float32
	readPos, writePos int
	n                 int // frames currently buffered
}

var _ Reverber = &CombFixed{}

// NewCombFixed builds a comb filter with the given ring buffer capacity (in
// frames), feedback decay and delay in milliseconds at sampleRate.
func NewCombFixed(bufferSize int, decay float32, delayMs, sampleRate int) *CombFixed {
	return &CombFixed{
		audio: make([]StereoFrame, bufferSize),
		delay: (delayMs * sampleRate) / 1000,
		decay: decay,
	}
}

// InputSamples feeds new frames into the filter, applying the comb's
// feedback against frames already in the ring buffer delay samples back,
// and returns how many frames were accepted (less than len(in)) if the
// buffer was full.
func (c *CombFixed) InputSamples(in []StereoFrame) int {
	bufSize := len(c.audio)
	free := bufSize - c.n
	n := len(in)
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	for i := 0; i < n; i++ {
		pos := (c.writePos + i) % bufSize
		frame := in[i]

		if c.delay > 0 && c.n+i >= c.delay {
			src := (pos - c.delay + bufSize) % bufSize
			frame.Left += c.audio[src].Left * c.decay
			frame.Right += c.audio[src].Right * c.decay
		}
		c.audio[pos] = frame
	}

	c.writePos = (c.writePos + n) % bufSize
	c.n += n
	return n
}

// GetAudio drains up to len(out) processed frames into out, returning how
// many were written.
func (c *CombFixed) GetAudio(out []StereoFrame) int {
	bufSize := len(c.audio)
	n := len(out)
	if n > c.n {
		n = c.n
	}
	if n == 0 {
		return 0
	}

	if c.readPos+n > bufSize {
		n1 := bufSize - c.readPos
		n2 := n - n1
		copy(out[:n1], c.audio[c.readPos:c.readPos+n1])
		copy(out[n1:n], c.audio[:n2])
		c.readPos = n2
	} else {
		copy(out[:n], c.audio[c.readPos:c.readPos+n])
		c.readPos += n
	}
	c.n -= n
	return n
}
