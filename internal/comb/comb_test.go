package comb

import "testing"

func TestCombFixedDelaysFeedback(t *testing.T) {
	c := NewCombFixed(64, 0.5, 10, 1000) // delay = 10*1000/1000 = 10 frames

	in := make([]StereoFrame, 20)
	in[0] = StereoFrame{Left: 1, Right: 1}
	if n := c.InputSamples(in); n != len(in) {
		t.Fatalf("InputSamples accepted %d, want %d", n, len(in))
	}

	out := make([]StereoFrame, 20)
	if n := c.GetAudio(out); n != len(out) {
		t.Fatalf("GetAudio returned %d, want %d", n, len(out))
	}

	if out[0].Left != 1 {
		t.Errorf("frame 0 left = %v, want 1 (original impulse)", out[0].Left)
	}
	if out[10].Left != 0.5 {
		t.Errorf("frame 10 left = %v, want 0.5 (decayed echo at the delay)", out[10].Left)
	}
	for i, f := range out {
		if i == 0 || i == 10 {
			continue
		}
		if f.Left != 0 || f.Right != 0 {
			t.Errorf("frame %d = %+v, want silence", i, f)
		}
	}
}

func TestCombFixedDropsWhenFull(t *testing.T) {
	c := NewCombFixed(8, 0.3, 1, 1000)

	in := make([]StereoFrame, 5)
	if n := c.InputSamples(in); n != 5 {
		t.Fatalf("first InputSamples accepted %d, want 5", n)
	}
	if n := c.InputSamples(in); n != 3 {
		t.Fatalf("second InputSamples accepted %d, want 3 (buffer has 3 free frames)", n)
	}
}

func TestCombFixedGetAudioDrainsOnly(t *testing.T) {
	c := NewCombFixed(8, 0.3, 1, 1000)
	c.InputSamples(make([]StereoFrame, 3))

	out := make([]StereoFrame, 10)
	if n := c.GetAudio(out); n != 3 {
		t.Errorf("GetAudio returned %d, want 3 (only 3 frames buffered)", n)
	}
	if n := c.GetAudio(out); n != 0 {
		t.Errorf("GetAudio on an empty buffer returned %d, want 0", n)
	}
}
