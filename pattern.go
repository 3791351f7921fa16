package modplayer

import "fmt"

// Note sentinel values, per the IT pattern format.
const (
	NoteEmpty Note = 253
	NoteCut   Note = 254
	NoteOff   Note = 255
)

// Note is a byte-domain note index. 0..119 encode octave*12+semitone,
// 120..189 are reserved/extended but still treated as playable notes,
// 190..252 are reserved, and 253/254/255 are the Empty/Cut/Off sentinels.
type Note byte

// IsEmpty reports whether the note cell carries no note.
func (n Note) IsEmpty() bool { return n == NoteEmpty }

// IsCut reports whether the note cell is a cut command.
func (n Note) IsCut() bool { return n == NoteCut }

// IsOff reports whether the note cell is a key-off command.
func (n Note) IsOff() bool { return n == NoteOff }

// IsPlayable reports whether n encodes an actual pitch (0..189, inclusive
// of the IT reserved-but-playable 120..189 range).
func (n Note) IsPlayable() bool { return n <= 189 }

// Octave returns int(n)/12. Only meaningful when IsPlayable.
func (n Note) Octave() int { return int(n) / 12 }

// Semitone returns int(n)%12. Only meaningful when IsPlayable.
func (n Note) Semitone() int { return int(n) % 12 }

// basePeriods is the Amiga-style base period table for semitones 0..11 of
// octave 0, used by Period. Values and the >>octave halving are as
// specified; see SPEC_FULL.md §6(a) for the open-question resolution on
// octave range.
var basePeriods = [12]int{1712, 1616, 1524, 1440, 1356, 1280, 1208, 1140, 1076, 1016, 960, 907}

// Period computes the note's Amiga-style pitch period:
// period = (32 * basePeriods[semitone]) >> octave. Only meaningful when
// IsPlayable; callers must check that first.
func (n Note) Period() int {
	return (32 * basePeriods[n.Semitone()]) >> uint(n.Octave())
}

// String renders a playable note as e.g. "C-5" or "A#3"; empty/cut/off
// render as their IT shorthand.
func (n Note) String() string {
	switch {
	case n.IsEmpty():
		return "..."
	case n.IsCut():
		return "^^^"
	case n.IsOff():
		return "==="
	case n.IsPlayable():
		names := [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}
		return fmt.Sprintf("%s%d", names[n.Semitone()], n.Octave())
	default:
		return "???"
	}
}

// Instrument is a byte-domain instrument/sample slot reference.
// InstrumentEmpty means no instrument in this cell.
type Instrument byte

// InstrumentEmpty is the sentinel meaning "no instrument".
const InstrumentEmpty Instrument = 255

// IsEmpty reports whether the instrument cell is unset.
func (i Instrument) IsEmpty() bool { return i == InstrumentEmpty }

// CommandType tags the kind of effect carried by a Command.
type CommandType byte

const (
	CmdNone CommandType = iota
	CmdSetSpeed
	CmdSetTempo
	CmdSetVolume
	CmdSetPanning
	CmdUnknown
)

// Command is a tagged (type, 8-bit parameter) pair. Each PatternEntry
// carries two of these: one decoded from the volume column, one from the
// effect column.
type Command struct {
	Type  CommandType
	Param byte
}

// PatternEntry is the value-typed contents of a single (row, channel) cell:
// a note, an instrument reference, and the volume-column/effect-column
// commands.
type PatternEntry struct {
	Note       Note
	Instrument Instrument
	VolCommand Command
	FxCommand  Command
}

// MaxChannels is the fixed channel width of a Pattern row.
const MaxChannels = 64

// DefaultRows is the row count a Pattern gets when no packed data is
// present for it (an empty default-sized pattern, per spec.md §4.3).
const DefaultRows = 64

// Pattern is a fixed-width row x channel grid of PatternEntry. Row count is
// per-pattern; channel count is always MaxChannels.
type Pattern struct {
	Rows    int
	Entries []PatternEntry // len == Rows*MaxChannels, row-major
}

// NewPattern allocates an empty pattern of the given row count, every cell
// defaulted (Note=NoteEmpty, Instrument=InstrumentEmpty, commands=CmdNone).
func NewPattern(rows int) Pattern {
	if rows <= 0 {
		rows = DefaultRows
	}
	entries := make([]PatternEntry, rows*MaxChannels)
	for i := range entries {
		entries[i].Note = NoteEmpty
		entries[i].Instrument = InstrumentEmpty
	}
	return Pattern{Rows: rows, Entries: entries}
}

// At returns a pointer to the entry at (row, channel) for in-place mutation
// during decode.
func (p *Pattern) At(row, channel int) *PatternEntry {
	return &p.Entries[row*MaxChannels+channel]
}

// Entry returns a copy of the entry at (row, channel).
func (p *Pattern) Entry(row, channel int) PatternEntry {
	return p.Entries[row*MaxChannels+channel]
}
