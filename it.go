package modplayer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Errors surfaced by the IT loader. These are the "format error" kind of
// spec.md §7: malformed input produces one of these and no partial module.
var (
	ErrNotITFile        = errors.New("modplayer: not an IT file")
	ErrShortRead        = errors.New("modplayer: unexpected end of file")
	ErrBadPatternOffset = errors.New("modplayer: pattern data offset out of bounds")
)

// itHeader is the on-disk 192-byte IT header, read field-by-field via
// binary.Read rather than reinterpreted from raw memory (see DESIGN.md /
// SPEC_FULL.md §9 on packed binary structs).
type itHeader struct {
	Magic            [4]byte
	SongName         [26]byte
	RowHighlight     uint16
	OrderNum         uint16
	InstrumentNum    uint16
	SampleNum        uint16
	PatternNum       uint16
	CreatedWith      uint16
	CompatibleWith   uint16
	Flags            uint16
	Special          uint16
	GlobalVolume     uint8
	MixVolume        uint8
	InitialSpeed     uint8
	InitialTempo     uint8
	PanningSep       uint8
	PitchWheelDepth  uint8
	MessageLength    uint16
	MessageOffset    uint32
	Reserved         uint32
	ChannelPanning   [64]uint8
	ChannelVolume    [64]uint8
}

// itPatternHeader precedes each pattern's packed stream.
type itPatternHeader struct {
	PackedDataLength uint16
	RowNum           uint16
	_                [4]byte
}

// LoadITModule parses an IT ("Impulse Tracker") module from its raw bytes.
// It is fail-fast: malformed input returns an error and no module.
func LoadITModule(data []byte) (*Module, error) {
	r := bytes.NewReader(data)

	var hdr itHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrShortRead, err)
	}
	if string(hdr.Magic[:]) != "IMPM" {
		return nil, ErrNotITFile
	}

	mod := &Module{
		SongName:     strings.TrimRight(string(hdr.SongName[:]), "\x00"),
		GlobalVolume: int(hdr.GlobalVolume),
		MixVolume:    int(hdr.MixVolume),
		InitialSpeed: int(hdr.InitialSpeed),
		InitialTempo: int(hdr.InitialTempo),
	}

	orders := make([]byte, hdr.OrderNum)
	if _, err := readFull(r, orders); err != nil {
		return nil, fmt.Errorf("%w: reading orders: %v", ErrShortRead, err)
	}
	mod.Orders = orders

	instrumentOffsets := make([]uint32, hdr.InstrumentNum)
	if err := binary.Read(r, binary.LittleEndian, instrumentOffsets); err != nil {
		return nil, fmt.Errorf("%w: reading instrument offsets: %v", ErrShortRead, err)
	}
	sampleOffsets := make([]uint32, hdr.SampleNum)
	if err := binary.Read(r, binary.LittleEndian, sampleOffsets); err != nil {
		return nil, fmt.Errorf("%w: reading sample offsets: %v", ErrShortRead, err)
	}
	patternOffsets := make([]uint32, hdr.PatternNum)
	if err := binary.Read(r, binary.LittleEndian, patternOffsets); err != nil {
		return nil, fmt.Errorf("%w: reading pattern offsets: %v", ErrShortRead, err)
	}

	samples, err := loadITSamples(data, sampleOffsets)
	if err != nil {
		return nil, err
	}
	mod.Samples = samples

	patterns := make([]Pattern, len(patternOffsets))
	maxChannelsUsed := 0
	for p, off := range patternOffsets {
		if off == 0 {
			patterns[p] = NewPattern(DefaultRows)
			continue
		}
		pat, usedCh, err := loadITPattern(data, int(off), p)
		if err != nil {
			return nil, err
		}
		patterns[p] = pat
		if usedCh > maxChannelsUsed {
			maxChannelsUsed = usedCh
		}
	}
	mod.Patterns = patterns
	if maxChannelsUsed == 0 {
		maxChannelsUsed = MaxChannels
	}
	mod.Channels = maxChannelsUsed

	// Instrument records (envelopes, NNAs, ...) are out of scope per
	// spec.md §1; instrument offsets are parsed above only so that the
	// sample/pattern offset tables that follow them in the file layout can
	// be located correctly.
	_ = instrumentOffsets

	return mod, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n, err := r.Read(buf)
	if err != nil {
		return n, err
	}
	if n != len(buf) {
		return n, fmt.Errorf("short read: got %d want %d", n, len(buf))
	}
	return n, nil
}

// loadITSamples reads the on-disk IT sample ("IMPS") record at each offset,
// keeping only the fields the renderer/sequencer need: name, length, loop
// bounds, default volume and native playback rate. The vibrato fields are
// read but discarded, and compressed sample data is not decoded (such a
// sample gets no Data), matching the compression non-goal in spec.md §1.
func loadITSamples(data []byte, offsets []uint32) ([]Sample, error) {
	samples := make([]Sample, len(offsets))
	for i, off := range offsets {
		if off == 0 || int(off) >= len(data) {
			continue
		}
		r := bytes.NewReader(data[off:])

		hdr := struct {
			Magic          [4]byte
			DOSFilename    [12]byte
			Zero           uint8
			GlobalVolume   uint8
			Flags          uint8
			DefaultVolume  uint8
			Name           [26]byte
			Convert        uint8
			DefaultPanning uint8
			Length         uint32
			LoopBegin      uint32
			LoopEnd        uint32
			C5Speed        uint32
			SustainBegin   uint32
			SustainEnd     uint32
			SamplePointer  uint32
			VibratoSpeed   uint8
			VibratoDepth   uint8
			VibratoRate    uint8
			VibratoForm    uint8
		}{}
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return nil, fmt.Errorf("%w: reading sample %d header: %v", ErrShortRead, i, err)
		}

		smp := Sample{
			Name:    strings.TrimRight(string(hdr.Name[:]), "\x00"),
			Volume:  int(hdr.DefaultVolume),
			C4Speed: int(hdr.C5Speed),
		}

		hasSample := hdr.Flags&1 == 1
		is16Bit := hdr.Flags&2 == 2
		isCompressed := hdr.Flags&8 == 8
		hasLoop := hdr.Flags&16 == 16
		isSigned := hdr.Convert&1 == 1

		if hasSample && !isCompressed && int(hdr.SamplePointer) < len(data) {
			length := int(hdr.Length)
			smp.Data = make([]float32, length)

			sr := bytes.NewReader(data[hdr.SamplePointer:])
			if is16Bit {
				raw := make([]int16, length)
				if err := binary.Read(sr, binary.LittleEndian, raw); err == nil {
					for j, v := range raw {
						sv := v
						if !isSigned {
							sv = int16(uint16(v) - 32768)
						}
						smp.Data[j] = float32(sv) / 32768.0
					}
				}
			} else {
				raw := make([]byte, length)
				if _, err := sr.Read(raw); err == nil {
					for j, v := range raw {
						sv := int8(v)
						if !isSigned {
							sv = int8(int(v) - 128)
						}
						smp.Data[j] = float32(sv) / 128.0
					}
				}
			}

			if hasLoop && hdr.LoopEnd > hdr.LoopBegin && int(hdr.LoopEnd) <= length {
				// Loop mode (forward vs pingpong) is an instrument/sample
				// flag bit the caller (Player.triggerVoice) consults when it
				// calls AudioChannel.Play; LoopParams themselves are
				// reconstructed by Sample.Loop from the sample's loop bounds
				// plus the bidi-loop flag captured below.
				smp.LoopBegin = int(hdr.LoopBegin)
				smp.LoopEnd = int(hdr.LoopEnd)
				smp.BidiLoop = hdr.Flags&64 == 64
			}
		}

		samples[i] = smp
	}
	return samples, nil
}

// loadITPattern decodes one pattern's mask-compressed packed stream per
// spec.md §4.3. It returns the decoded pattern and the highest channel
// index (1-based count) referenced, which callers use to estimate the
// module's channel width.
func loadITPattern(data []byte, offset int, patternIdx int) (Pattern, int, error) {
	if offset+8 > len(data) {
		return Pattern{}, 0, fmt.Errorf("%w: pattern %d header at %#x", ErrBadPatternOffset, patternIdx, offset)
	}

	r := bytes.NewReader(data[offset:])
	var ph itPatternHeader
	if err := binary.Read(r, binary.LittleEndian, &ph); err != nil {
		return Pattern{}, 0, fmt.Errorf("%w: pattern %d header: %v", ErrBadPatternOffset, patternIdx, err)
	}

	streamStart := offset + 8
	streamEnd := streamStart + int(ph.PackedDataLength)
	if streamEnd > len(data) {
		return Pattern{}, 0, fmt.Errorf("%w: pattern %d packed stream exceeds file", ErrBadPatternOffset, patternIdx)
	}
	stream := data[streamStart:streamEnd]

	pat := NewPattern(int(ph.RowNum))

	var lastMask [MaxChannels]byte
	var lastEntry [MaxChannels]PatternEntry
	for c := range lastEntry {
		lastEntry[c].Note = NoteEmpty
		lastEntry[c].Instrument = InstrumentEmpty
	}

	pos := 0
	row := 0
	maxChannel := 0

	readByte := func() (byte, bool) {
		if pos >= len(stream) {
			return 0, false
		}
		b := stream[pos]
		pos++
		return b, true
	}

	for row < pat.Rows {
		chanVar, ok := readByte()
		if !ok {
			break // MUST NOT read past packed_data_length; stop decoding
		}
		if chanVar == 0 {
			row++
			continue
		}

		channel := int(chanVar-1) & 63
		if channel+1 > maxChannel {
			maxChannel = channel + 1
		}

		var mask byte
		if chanVar&0x80 != 0 {
			m, ok := readByte()
			if !ok {
				return Pattern{}, 0, fmt.Errorf("%w: pattern %d row %d channel %d: truncated mask", ErrBadPatternOffset, patternIdx, row, channel)
			}
			mask = m
			lastMask[channel] = mask
		} else {
			mask = lastMask[channel]
		}

		le := &lastEntry[channel]

		if mask&1 != 0 {
			b, ok := readByte()
			if !ok {
				return Pattern{}, 0, fmt.Errorf("%w: pattern %d row %d channel %d: truncated note", ErrBadPatternOffset, patternIdx, row, channel)
			}
			le.Note = Note(b)
		}
		if mask&2 != 0 {
			b, ok := readByte()
			if !ok {
				return Pattern{}, 0, fmt.Errorf("%w: pattern %d row %d channel %d: truncated instrument", ErrBadPatternOffset, patternIdx, row, channel)
			}
			le.Instrument = Instrument(b)
		}
		if mask&4 != 0 {
			vc, ok := readByte()
			if !ok {
				return Pattern{}, 0, fmt.Errorf("%w: pattern %d row %d channel %d: truncated volume", ErrBadPatternOffset, patternIdx, row, channel)
			}
			switch {
			case vc <= 64:
				le.VolCommand = Command{Type: CmdSetVolume, Param: vc}
			case vc >= 128 && vc <= 192:
				le.VolCommand = Command{Type: CmdSetPanning, Param: vc - 65}
			default:
				// Outside the recognized ranges; silently ignored per
				// spec.md §4.3 step 6 / §7.
			}
		}
		if mask&8 != 0 {
			cmdID, ok := readByte()
			if !ok {
				return Pattern{}, 0, fmt.Errorf("%w: pattern %d row %d channel %d: truncated effect", ErrBadPatternOffset, patternIdx, row, channel)
			}
			cmdParam, ok := readByte()
			if !ok {
				return Pattern{}, 0, fmt.Errorf("%w: pattern %d row %d channel %d: truncated effect param", ErrBadPatternOffset, patternIdx, row, channel)
			}
			le.FxCommand = Command{Type: effectTypeFromID(cmdID), Param: cmdParam}
		}

		entry := pat.At(row, channel)
		if mask&(1|16) != 0 {
			entry.Note = le.Note
		}
		if mask&(2|32) != 0 {
			entry.Instrument = le.Instrument
		}
		if mask&(4|64) != 0 {
			entry.VolCommand = le.VolCommand
		}
		if mask&(8|128) != 0 {
			entry.FxCommand = le.FxCommand
		}
	}

	return pat, maxChannel, nil
}

// effectTypeFromID maps an IT effect-column command id to a CommandType.
// Only the four command types this engine recognizes (spec.md §3) map to
// something other than CmdUnknown; everything else is retained with its
// parameter but produces no sequencer side effect (spec.md §7).
func effectTypeFromID(id byte) CommandType {
	switch id {
	case 0:
		return CmdNone
	case 1:
		return CmdSetSpeed
	case 20:
		return CmdSetTempo
	default:
		return CmdUnknown
	}
}
