package modplayer

import (
	"strconv"
	"strings"
	"testing"

	clone "github.com/huandu/go-clone/generic"
)

const testSampleLength = 1000

var testModule = Module{
	SongName:     "testsong",
	GlobalVolume: 64,
	MixVolume:    48,
	InitialSpeed: 2,
	InitialTempo: 125,
	Orders:       []byte{0},
	Samples: []Sample{
		{
			Name:    "testins1",
			Volume:  60,
			C4Speed: 8363,
			Data:    make([]float32, testSampleLength),
		},
		{
			Name:    "testins2",
			Volume:  55,
			C4Speed: 8363,
			Data:    make([]float32, testSampleLength),
		},
	},
}

// newPlayerWithTestPattern builds a one-pattern Module from a human-readable
// grid and wraps it in a running Player. Each cell has the form
// "A-4 1 33 S06" - note A-4, instrument 1, volume-column 33, effect S with
// parameter 06 (hex). "..." in the note slot, ".." in instrument/volume, and
// "..." in the effect slot all mean "empty".
func newPlayerWithTestPattern(t *testing.T, pattern [][]string) *Player {
	t.Helper()

	nChannels := len(pattern[0])
	pat := NewPattern(len(pattern))
	for r, row := range pattern {
		for c, col := range row {
			e := pat.At(r, c)
			if col == "" {
				continue
			}
			decodeTestCell(col, e)
		}
	}

	mod := clone.Clone(testModule)
	mod.Channels = nChannels
	mod.Patterns = []Pattern{pat}

	player, err := NewPlayer(&mod, 44100)
	if err != nil {
		t.Fatalf("could not create test player: %v", err)
	}
	player.Start()
	return player
}

func decodeTestCell(col string, e *PatternEntry) {
	parts := colToParts(col)

	e.Note = decodeTestNote(parts[0])
	e.Instrument = Instrument(decodeInt(parts[1], int(InstrumentEmpty)))
	if v := decodeInt(parts[2], -1); v >= 0 {
		e.VolCommand = Command{Type: CmdSetVolume, Param: byte(v)}
	}
	e.FxCommand = decodeTestEffect(parts[3])
}

func colToParts(s string) []string {
	result := strings.Split(s, " ")
	filtered := make([]string, 0, len(result))
	for _, r := range result {
		if r == "" {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

var testNoteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

// decodeTestNote parses a note of the form "A-4", "C#3", "^^^" (cut), "==="
// (off) or "..." (empty).
func decodeTestNote(s string) Note {
	switch s {
	case "...":
		return NoteEmpty
	case "^^^":
		return NoteCut
	case "===":
		return NoteOff
	}

	name := s[0:2]
	idx := -1
	for i, n := range testNoteNames {
		if n == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic("invalid note name " + name)
	}
	octave, err := strconv.Atoi(s[2:3])
	if err != nil {
		panic(err)
	}
	return Note(octave*12 + idx)
}

func decodeInt(s string, replacement int) int {
	if s == "" || s == ".." {
		return replacement
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}
	return v
}

// decodeTestEffect parses an effect cell like "S06" (set speed, param 6) or
// "T80" (set tempo, param 0x80, hex). "..." means no effect.
func decodeTestEffect(s string) Command {
	if s == "" || s == "..." {
		return Command{}
	}
	param, err := strconv.ParseInt(s[1:3], 16, 16)
	if err != nil {
		panic(err)
	}
	switch s[0] {
	case 'S':
		return Command{Type: CmdSetSpeed, Param: byte(param)}
	case 'T':
		return Command{Type: CmdSetTempo, Param: byte(param)}
	default:
		return Command{Type: CmdUnknown, Param: byte(param)}
	}
}

// advanceToNextRow runs sequenceTick until the (order, row) cursor changes.
func advanceToNextRow(p *Player) {
	oldOrder, oldRow := p.currentOrder, p.currentRow
	for oldOrder == p.currentOrder && oldRow == p.currentRow {
		p.sequenceTick()
	}
}
