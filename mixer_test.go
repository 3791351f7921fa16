package modplayer

import "testing"

func TestMixerSilenceWhenAllInactive(t *testing.T) {
	m, err := NewMixer(4, 64, 44100)
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}

	out := make([]StereoFrame, 32)
	m.Render(out, len(out))
	for i, f := range out {
		if f.Left != 0 || f.Right != 0 {
			t.Fatalf("frame %d = %+v, want silence with all voices inactive", i, f)
		}
	}
}

// TestMixerSumIdentity is spec.md §8's sum-identity invariant, matching
// end-to-end scenario 3: two identical voices panned hard left and hard
// right sum to left==right at every frame.
func TestMixerSumIdentity(t *testing.T) {
	m, err := NewMixer(2, 8, 44100)
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	sample := &Sample{Data: []float32{1.0, 0.5, -0.5, -1.0}}

	for i, pan := range []float64{-1.0, 1.0} {
		voice, err := m.Voice(i)
		if err != nil {
			t.Fatalf("Voice(%d): %v", i, err)
		}
		voice.Play(sample, LoopParams{Mode: LoopOff})
		voice.sampleStep = 1.0
		voice.SetVolume(1.0)
		voice.SetPanning(pan)
	}

	out := make([]StereoFrame, 4)
	m.Render(out, len(out))

	for i, f := range out {
		if f.Left != f.Right {
			t.Errorf("frame %d: left=%v right=%v, want equal", i, f.Left, f.Right)
		}
	}
	if out[0].Left != 1.0 {
		t.Errorf("frame 0 left = %v, want 1.0 (scenario 3)", out[0].Left)
	}
}

// TestMixerPanMonotonicity is spec.md §8's pan-monotonicity invariant: for a
// fixed mono sample, as panning decreases from +1 to -1, rendered left is
// non-decreasing and right is non-increasing.
func TestMixerPanMonotonicity(t *testing.T) {
	pans := []float64{1.0, 0.5, 0.0, -0.5, -1.0}

	var prevLeft, prevRight float32
	for i, pan := range pans {
		c := NewAudioChannel(44100)
		sample := &Sample{Data: []float32{1.0, 1.0}}
		c.Play(sample, LoopParams{Mode: LoopOff})
		c.sampleStep = 1.0
		c.SetVolume(1.0)
		c.SetPanning(pan)

		out := make([]StereoFrame, 1)
		renderVoice(c, out)

		if i > 0 {
			if out[0].Left < prevLeft {
				t.Errorf("pan %v: left = %v, want >= previous %v (left must be non-decreasing as pan decreases)", pan, out[0].Left, prevLeft)
			}
			if out[0].Right > prevRight {
				t.Errorf("pan %v: right = %v, want <= previous %v (right must be non-increasing as pan decreases)", pan, out[0].Right, prevRight)
			}
		}
		prevLeft, prevRight = out[0].Left, out[0].Right
	}
}

func TestMixerVoiceIndexOutOfRange(t *testing.T) {
	m, err := NewMixer(2, 8, 44100)
	if err != nil {
		t.Fatalf("NewMixer: %v", err)
	}
	if _, err := m.Voice(-1); err != ErrChannelIndex {
		t.Errorf("Voice(-1) error = %v, want ErrChannelIndex", err)
	}
	if _, err := m.Voice(2); err != ErrChannelIndex {
		t.Errorf("Voice(2) error = %v, want ErrChannelIndex", err)
	}
}

func TestNewMixerRejectsZeroVoices(t *testing.T) {
	if _, err := NewMixer(0, 8, 44100); err != ErrZeroVoices {
		t.Errorf("NewMixer(0, ...) error = %v, want ErrZeroVoices", err)
	}
}
