// Sequencer cadence and row-advance/order-skip semantics follow spec.md §4.4
// exactly, including the "subtle ordering" callout: a row's entries are
// processed on the tick where ticksToNextRow is zero, after which the
// counter is refilled and decremented in that same tick.
package modplayer

import (
	"fmt"
)

// referencePeriod is the period of note index 60 (octave 5, semitone 0,
// i.e. C-5): 32*basePeriods[0]>>5 == 1712. Sample playback rates are
// derived from the ratio of this reference period to a channel's current
// period, scaled by the sample's own C4Speed - the same "period vs. a
// known-speed note" relationship the original Amiga/IT engines use.
const referencePeriod = 1712

// periodToHz converts a channel's period to a playback rate in Hz, scaled
// by the sample's native C4Speed.
func periodToHz(period, c4Speed int) float64 {
	if period <= 0 || c4Speed <= 0 {
		return 0
	}
	return float64(c4Speed) * float64(referencePeriod) / float64(period)
}

// volColPanToAxis maps a volume-column set_panning parameter (0..64, per
// spec.md §4.3 step 6) onto the voice pan axis [-1,+1]. See SPEC_FULL.md
// §6(c) for the rationale: 0=hard left, 32=center, 64=hard right.
func volColPanToAxis(v byte) float64 {
	return float64(v)/32.0 - 1.0
}

// hostChannelState is the sequencer's per-channel bookkeeping (spec.md §3,
// PlayerContext.host_channels).
type hostChannelState struct {
	sampleIndex int // last instrument slot triggered (index into Module.Samples)
	period      int
	volume      int // 0..64
	pan         float64
	newNote     bool // edge flag, set at row entry when that row triggers a note, cleared at the next row entry

	// UI bookkeeping: where (order, row) the currently sounding note was
	// last triggered. Supplements spec.md for Player.NoteDataFor/PlayerState.
	trigOrder, trigRow int
}

// DefaultMaxRenderFrames bounds how many frames Player.GenerateAudio will
// ask the Mixer to render in one call to Mixer.Render; the Mixer's scratch
// buffers are sized to this at construction and never grow.
const DefaultMaxRenderFrames = 4096

// Player owns a Module, a tick-driven sequencer cursor, and the Mixer whose
// voices it drives. One call to GenerateAudio corresponds to however many
// audio ticks are needed to produce the requested number of frames.
type Player struct {
	Mod   *Module
	mixer *Mixer

	sampleRate uint

	hostChannels [MaxChannels]hostChannelState

	ticksToNextRow int
	currentRow     int
	breakingRow    int
	currentOrder   int
	ticksPerRow    int
	tempo          int

	samplesPerTick int
	tickSamplePos  int

	playing bool

	// Mute is a bitmask of muted channels, channel 0 in the LSB.
	Mute uint64

	// PositionCh optionally receives the player's (order,row) after every
	// sequencer tick, for UIs that want to react without polling Position().
	// Sends are non-blocking; a slow consumer simply misses an update.
	PositionCh chan PlayerPosition

	// SongEndCh receives a value each time playback wraps from the last
	// order back to order 0.
	SongEndCh chan struct{}

	lastAppliedVolume [MaxChannels]float64
}

// PlayerPosition is the sequencer's current position in the order list.
type PlayerPosition struct {
	Order int
	Row   int
}

// ChannelState is the per-channel slice of PlayerState exposed for UI use.
type ChannelState struct {
	Instrument int // -1 if no instrument has ever played on this channel
	TrigOrder  int
	TrigRow    int
}

// PlayerState is a read-only snapshot of the sequencer for UI rendering.
type PlayerState struct {
	Order    int
	Row      int
	Notes    []PatternEntry // the current row's entries, for "has this changed" comparisons
	Channels []ChannelState
}

// ChannelNoteData is one channel's formatted note-column data for a given
// (order, row), used by NoteDataFor.
type ChannelNoteData struct {
	Note       string
	Instrument int // -1 if empty
	Volume     byte
	Effect     byte
	Param      byte
}

// NewPlayer constructs a Player for mod, rendering at sampleRate. The
// underlying Mixer gets one voice per channel mod actually uses (at least
// 1) and a fixed per-call frame cap of DefaultMaxRenderFrames.
func NewPlayer(mod *Module, sampleRate uint) (*Player, error) {
	nVoices := mod.Channels
	if nVoices <= 0 {
		nVoices = 1
	}

	mixer, err := NewMixer(nVoices, DefaultMaxRenderFrames, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("modplayer: creating player: %w", err)
	}

	p := &Player{
		Mod:         mod,
		mixer:       mixer,
		sampleRate:  sampleRate,
		breakingRow: DefaultRows,
		ticksPerRow: 6,
		tempo:       128,
		PositionCh:  make(chan PlayerPosition, 1),
		SongEndCh:   make(chan struct{}, 1),
	}
	for i := range p.hostChannels {
		p.hostChannels[i].sampleIndex = -1
	}

	if mod.InitialSpeed > 0 {
		p.ticksPerRow = mod.InitialSpeed
	}
	if mod.InitialTempo > 0 {
		p.tempo = mod.InitialTempo
	}
	p.recalcSamplesPerTick()

	if pat, ok := p.patternIndexAtOrder(0); ok {
		p.breakingRow = p.Mod.Patterns[pat].Rows
	}

	return p, nil
}

func (p *Player) recalcSamplesPerTick() {
	// Classic tracker timing: ticks/second = tempo/2.5, so
	// samplesPerTick = sampleRate * 2.5 / tempo.
	p.samplesPerTick = int((uint(p.sampleRate)<<1)+(uint(p.sampleRate)>>1)) / p.tempo
	if p.samplesPerTick <= 0 {
		p.samplesPerTick = 1
	}
}

// Start begins (or resumes) playback.
func (p *Player) Start() { p.playing = true }

// Stop pauses playback; GenerateAudio continues to produce silence.
func (p *Player) Stop() { p.playing = false }

// IsPlaying reports whether the sequencer is currently advancing.
func (p *Player) IsPlaying() bool { return p.playing }

// SeekTo jumps playback to the given order/row, clamped to the song's
// bounds, and resets tick timing so the next sequencer tick begins a
// fresh row.
func (p *Player) SeekTo(order, row int) {
	if order >= len(p.Mod.Orders) {
		order = len(p.Mod.Orders) - 1
	}
	if order < 0 {
		order = 0
	}
	p.currentOrder = order
	p.currentRow = row
	if row < 0 {
		p.currentRow = 0
	}
	if pat, ok := p.patternIndexAtOrder(p.currentOrder); ok {
		p.breakingRow = p.Mod.Patterns[pat].Rows
		if p.currentRow >= p.breakingRow {
			p.currentRow = p.breakingRow - 1
		}
	}
	p.ticksToNextRow = 0
	p.tickSamplePos = 0
}

// Position returns the sequencer's current order/row.
func (p *Player) Position() PlayerPosition {
	return PlayerPosition{Order: p.currentOrder, Row: p.currentRow}
}

// Speed returns the sequencer's current ticks-per-row.
func (p *Player) Speed() int { return p.ticksPerRow }

// Tempo returns the sequencer's current tempo.
func (p *Player) Tempo() int { return p.tempo }

// State returns a read-only snapshot suitable for UI rendering.
func (p *Player) State() PlayerState {
	st := PlayerState{
		Order:    p.currentOrder,
		Row:      p.currentRow,
		Channels: make([]ChannelState, len(p.mixer.voices)),
	}
	if pat, ok := p.patternIndexAtOrder(p.currentOrder); ok {
		pattern := &p.Mod.Patterns[pat]
		if p.currentRow < pattern.Rows {
			st.Notes = make([]PatternEntry, len(p.mixer.voices))
			for c := range st.Notes {
				st.Notes[c] = pattern.Entry(p.currentRow, c)
			}
		}
	}
	for c := range st.Channels {
		st.Channels[c] = ChannelState{
			Instrument: p.hostChannels[c].sampleIndex,
			TrigOrder:  p.hostChannels[c].trigOrder,
			TrigRow:    p.hostChannels[c].trigRow,
		}
	}
	return st
}

// NoteDataFor returns the formatted note-column data for the given
// (order, row), or nil if that row does not exist (before the start or
// past the end of the referenced pattern).
func (p *Player) NoteDataFor(order, row int) []ChannelNoteData {
	pat, ok := p.patternIndexAtOrder(order)
	if !ok {
		return nil
	}
	pattern := &p.Mod.Patterns[pat]
	if row < 0 || row >= pattern.Rows {
		return nil
	}

	out := make([]ChannelNoteData, p.Mod.Channels)
	for c := range out {
		e := pattern.Entry(row, c)
		inst := -1
		if !e.Instrument.IsEmpty() {
			inst = int(e.Instrument)
		}
		vol := byte(0xFF)
		if e.VolCommand.Type == CmdSetVolume {
			vol = e.VolCommand.Param
		}
		out[c] = ChannelNoteData{
			Note:       e.Note.String(),
			Instrument: inst,
			Volume:     vol,
			Effect:     byte(e.FxCommand.Type),
			Param:      e.FxCommand.Param,
		}
	}
	return out
}

// patternIndexAtOrder resolves an order-list slot to a pattern index, or
// false if the slot is out of range or holds a sentinel (254/255) or
// references a pattern slot that doesn't exist.
func (p *Player) patternIndexAtOrder(order int) (int, bool) {
	if order < 0 || order >= len(p.Mod.Orders) {
		return 0, false
	}
	v := int(p.Mod.Orders[order])
	if v == OrderSkip || v == OrderEnd || v >= len(p.Mod.Patterns) {
		return 0, false
	}
	return v, true
}

// GenerateAudio fills out with up to len(out) stereo frames, advancing the
// sequencer by as many ticks as elapse along the way. It returns the
// number of frames written (always len(out); Player never short-writes,
// matching the host-driver contract in spec.md §6).
func (p *Player) GenerateAudio(out []StereoFrame) int {
	total := len(out)
	if !p.playing {
		for i := range out {
			out[i] = StereoFrame{}
		}
		return total
	}

	offset := 0
	for offset < total {
		p.syncMute()

		remain := total - offset
		tillTick := p.samplesPerTick - p.tickSamplePos
		if tillTick <= 0 {
			tillTick = p.samplesPerTick
		}
		chunk := remain
		if tillTick < chunk {
			chunk = tillTick
		}
		if max := p.mixer.MaxFrames(); chunk > max {
			chunk = max
		}
		if chunk <= 0 {
			chunk = 1
		}

		p.mixer.Render(out[offset:offset+chunk], chunk)

		offset += chunk
		p.tickSamplePos += chunk
		if p.tickSamplePos >= p.samplesPerTick {
			p.tickSamplePos -= p.samplesPerTick
			p.sequenceTick()
		}
	}
	return total
}

// syncMute zeroes the mixer volume of every muted channel and restores the
// sequenced volume of every unmuted one, without touching sequencer state.
// This mirrors the teacher's render-time mute check (mixChannels) rather
// than baking mute into the sequencer.
func (p *Player) syncMute() {
	for c := 0; c < len(p.mixer.voices); c++ {
		voice, err := p.mixer.Voice(c)
		if err != nil {
			continue
		}
		target := p.lastAppliedVolume[c]
		if p.Mute&(1<<uint(c)) != 0 {
			target = 0
		}
		voice.SetVolume(target)
	}
}

// sequenceTick advances the sequencer by one audio tick, per spec.md §4.4.
func (p *Player) sequenceTick() {
	if p.ticksToNextRow == 0 {
		p.rowEntry()
		p.advanceRowCursor()
		p.ticksToNextRow = p.ticksPerRow
	}
	p.ticksToNextRow--

	select {
	case p.PositionCh <- p.Position():
	default:
	}
}

// rowEntry processes the current row's entries for every channel, per
// spec.md §4.4 step 1.
func (p *Player) rowEntry() {
	patIdx, ok := p.patternIndexAtOrder(p.currentOrder)
	if !ok {
		return
	}
	pattern := &p.Mod.Patterns[patIdx]
	if p.currentRow >= pattern.Rows {
		return
	}

	for c := 0; c < len(p.hostChannels) && c < len(p.mixer.voices); c++ {
		entry := pattern.Entry(p.currentRow, c)
		hc := &p.hostChannels[c]
		hc.newNote = false

		if entry.Note.IsPlayable() {
			hc.period = entry.Note.Period()
			if !entry.Instrument.IsEmpty() {
				hc.sampleIndex = int(entry.Instrument)
			}
			if entry.VolCommand.Type == CmdSetVolume {
				hc.volume = int(entry.VolCommand.Param)
			} else {
				hc.volume = 64
			}
			hc.newNote = true
			hc.trigOrder = p.currentOrder
			hc.trigRow = p.currentRow
		}

		switch entry.VolCommand.Type {
		case CmdSetVolume:
			hc.volume = int(entry.VolCommand.Param)
		case CmdSetPanning:
			hc.pan = volColPanToAxis(entry.VolCommand.Param)
		}

		switch entry.FxCommand.Type {
		case CmdSetSpeed:
			if entry.FxCommand.Param > 0 {
				p.ticksPerRow = int(entry.FxCommand.Param)
			}
		case CmdSetTempo:
			if entry.FxCommand.Param > 0 {
				p.tempo = int(entry.FxCommand.Param)
				p.recalcSamplesPerTick()
			}
		}

		if hc.newNote {
			p.triggerVoice(c, hc)
		} else {
			p.lastAppliedVolume[c] = float64(hc.volume) / 64.0
			if voice, err := p.mixer.Voice(c); err == nil {
				voice.SetPanning(hc.pan)
			}
		}
	}
}

// triggerVoice starts playback of the channel's current instrument at its
// current period/volume/pan. This is the bridge from sequencer events to
// voice operations that spec.md §2 calls the "host bridge", made concrete
// here instead of left to an external collaborator.
func (p *Player) triggerVoice(channel int, hc *hostChannelState) {
	voice, err := p.mixer.Voice(channel)
	if err != nil {
		return
	}
	if hc.sampleIndex < 0 || hc.sampleIndex >= len(p.Mod.Samples) {
		return
	}
	sample := &p.Mod.Samples[hc.sampleIndex]
	if sample.Len() == 0 {
		voice.Disable()
		return
	}

	voice.Play(sample, sample.Loop())
	voice.SetPlaybackRate(periodToHz(hc.period, sample.C4Speed))
	voice.SetVolume(float64(hc.volume) / 64.0)
	voice.SetPanning(hc.pan)
	p.lastAppliedVolume[channel] = float64(hc.volume) / 64.0
}

// advanceRowCursor advances the row cursor and, on reaching the end of the
// current pattern, advances (and possibly wraps) the order cursor, per
// spec.md §4.4 step 2.
func (p *Player) advanceRowCursor() {
	p.currentRow++
	if p.currentRow < p.breakingRow {
		return
	}

	next := p.currentOrder + 1
	for next < len(p.Mod.Orders) && p.Mod.Orders[next] == OrderSkip {
		next++
	}
	if next >= len(p.Mod.Orders) || p.Mod.Orders[next] == OrderEnd {
		next = 0
		for next < len(p.Mod.Orders) && p.Mod.Orders[next] == OrderSkip {
			next++
		}
		select {
		case p.SongEndCh <- struct{}{}:
		default:
		}
	}

	p.currentOrder = next
	p.currentRow = 0
	if pat, ok := p.patternIndexAtOrder(p.currentOrder); ok {
		p.breakingRow = p.Mod.Patterns[pat].Rows
	} else {
		p.breakingRow = DefaultRows
	}
}
