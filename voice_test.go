package modplayer

import "testing"

func TestVoiceClamping(t *testing.T) {
	c := NewAudioChannel(44100)

	c.SetVolume(2.5)
	if got := c.Volume(); got != 1.0 {
		t.Errorf("SetVolume(2.5): Volume() = %v, want 1.0", got)
	}
	c.SetVolume(-0.5)
	if got := c.Volume(); got != 0.0 {
		t.Errorf("SetVolume(-0.5): Volume() = %v, want 0.0", got)
	}

	c.SetPanning(5)
	if got := c.Panning(); got != 1.0 {
		t.Errorf("SetPanning(5): Panning() = %v, want 1.0", got)
	}
	c.SetPanning(-5)
	if got := c.Panning(); got != -1.0 {
		t.Errorf("SetPanning(-5): Panning() = %v, want -1.0", got)
	}
}

func TestVoicePlaybackRateNoOpWhenNonPositive(t *testing.T) {
	c := NewAudioChannel(44100)
	c.SetPlaybackRate(22050)
	if got := c.sampleStep; got != 0.5 {
		t.Fatalf("sampleStep after SetPlaybackRate(22050) = %v, want 0.5", got)
	}

	c.SetPlaybackRate(-1)
	if got := c.sampleStep; got != 0.5 {
		t.Errorf("sampleStep after SetPlaybackRate(-1) = %v, want unchanged 0.5", got)
	}
	c.SetPlaybackRate(0)
	if got := c.sampleStep; got != 0.5 {
		t.Errorf("sampleStep after SetPlaybackRate(0) = %v, want unchanged 0.5", got)
	}
}

func TestVoiceSilenceWhenInactive(t *testing.T) {
	c := NewAudioChannel(44100)
	c.sample = &Sample{Data: []float32{1, 1, 1, 1}}
	c.sampleStep = 1.0
	c.SetVolume(1.0)
	// c.active is left false (zero value): no Play() call.

	out := make([]StereoFrame, 8)
	renderVoice(c, out)
	for i, f := range out {
		if f.Left != 0 || f.Right != 0 {
			t.Fatalf("frame %d = %+v, want silence", i, f)
		}
	}
}

func TestVoiceInterpolationAtIntegerPositions(t *testing.T) {
	sample := &Sample{Data: []float32{0, 1, 0, -1}}
	c := NewAudioChannel(44100)
	c.Play(sample, LoopParams{Mode: LoopOff})
	c.SetVolume(1.0)
	c.SetPanning(0)
	c.sampleStep = 1.0

	out := make([]StereoFrame, 1)
	for i, want := range sample.Data {
		renderVoice(c, out)
		if got := out[0].Left; float32(got) != want {
			t.Errorf("frame %d: left = %v, want %v", i, got, want)
		}
		if out[0].Left != out[0].Right {
			t.Errorf("frame %d: left %v != right %v at center pan", i, out[0].Left, out[0].Right)
		}
	}
}

// TestVoiceScenario1 is spec.md §8 end-to-end scenario 1.
func TestVoiceScenario1(t *testing.T) {
	sample := &Sample{Data: []float32{0.0, 1.0, 0.0, -1.0}}
	c := NewAudioChannel(44100)
	c.Play(sample, LoopParams{Mode: LoopOff})
	c.sampleStep = 1.0
	c.SetVolume(1.0)
	c.SetPanning(0.0)

	want := []float32{0.0, 1.0, 0.0, -1.0, 0.0}
	out := make([]StereoFrame, 1)
	for i, w := range want {
		renderVoice(c, out)
		if out[0].Left != w || out[0].Right != w {
			t.Errorf("frame %d = (%v,%v), want (%v,%v)", i, out[0].Left, out[0].Right, w, w)
		}
	}
	if c.Active() {
		t.Error("voice should be inactive after running off the end of a non-looped sample")
	}
}

// TestVoiceScenario2 is spec.md §8 end-to-end scenario 2: a forward loop with
// a fractional step, checked against the exact interpolated sequence.
func TestVoiceScenario2(t *testing.T) {
	sample := &Sample{Data: []float32{0.0, 1.0, 0.0, -1.0}}
	c := NewAudioChannel(44100)
	c.Play(sample, LoopParams{Mode: LoopForward, Begin: 0, End: 4})
	c.sampleStep = 0.5
	c.SetVolume(1.0)
	c.SetPanning(0.0)

	want := []float32{0.0, 0.5, 1.0, 0.5, 0.0, -0.5, -1.0, -0.5}
	out := make([]StereoFrame, 1)
	for i, w := range want {
		renderVoice(c, out)
		if out[0].Left != w || out[0].Right != w {
			t.Errorf("frame %d = (%v,%v), want (%v,%v)", i, out[0].Left, out[0].Right, w, w)
		}
	}
}

// TestVoiceScenario6 is spec.md §8 end-to-end scenario 6.
func TestVoiceScenario6(t *testing.T) {
	c := NewAudioChannel(44100)
	c.SetPlaybackRate(22050)
	if c.sampleStep != 0.5 {
		t.Fatalf("sampleStep = %v, want 0.5", c.sampleStep)
	}
	c.SetPlaybackRate(-1)
	if c.sampleStep != 0.5 {
		t.Errorf("sampleStep after SetPlaybackRate(-1) = %v, want unchanged 0.5", c.sampleStep)
	}
}

// TestVoiceForwardLoopNeverReadsPastEnd is spec.md §8's forward-loop
// invariant: a 100-frame sample with loop forward[40,80], after 200 frames
// of playback, leaves the index within [40,80) and never indexes past 99
// (indexing wavetable[100] or beyond would panic, failing the test).
func TestVoiceForwardLoopNeverReadsPastEnd(t *testing.T) {
	data := make([]float32, 100)
	for i := range data {
		data[i] = float32(i)
	}
	sample := &Sample{Data: data}
	c := NewAudioChannel(44100)
	c.Play(sample, LoopParams{Mode: LoopForward, Begin: 40, End: 80})
	c.sampleStep = 1.0
	c.SetVolume(1.0)

	out := make([]StereoFrame, 200)
	renderVoice(c, out)

	if c.sampleIndex < 40 || c.sampleIndex >= 80 {
		t.Errorf("sampleIndex after 200 frames = %v, want in [40,80)", c.sampleIndex)
	}
}

// TestVoicePingPongReversal is spec.md §8's ping-pong invariant: starting at
// 39 with step +1 inside loop pingpong[40,80], playback reaches 79, reflects
// and comes back down to 40, and the voice stays active throughout.
func TestVoicePingPongReversal(t *testing.T) {
	data := make([]float32, 100)
	sample := &Sample{Data: data}
	c := NewAudioChannel(44100)
	c.Play(sample, LoopParams{Mode: LoopPingPong, Begin: 40, End: 80})
	c.sampleIndex = 39
	c.sampleStep = 1.0
	c.SetVolume(1.0)

	var sawMax, sawMin bool
	var lastIdx int
	out := make([]StereoFrame, 1)
	for i := 0; i < 400; i++ {
		renderVoice(c, out)
		idx := int(c.sampleIndex)
		if idx >= 79 {
			sawMax = true
		}
		if sawMax && idx <= 40 {
			sawMin = true
		}
		lastIdx = idx
		_ = lastIdx
	}
	if !sawMax {
		t.Error("playback never reached index 79")
	}
	if !sawMin {
		t.Error("playback never reversed back down to index 40 after reaching 79")
	}
	if !c.Active() {
		t.Error("a ping-pong loop should never deactivate the voice")
	}
}
