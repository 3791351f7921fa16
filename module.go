package modplayer

// Module is the in-memory result of loading an IT file: a song name, a
// playback schedule (Orders) and the set of Patterns it schedules.
// A Module owns its Samples; voices that play one hold a non-owning
// reference that must not outlive it.
type Module struct {
	SongName string

	// GlobalVolume and MixVolume are carried through from the IT header
	// (0..128) for completeness; the sequencer/mixer in this package does
	// not apply them (out of scope per spec.md, instrument envelopes and
	// full mixing-volume semantics are non-goals).
	GlobalVolume int
	MixVolume    int

	InitialSpeed int
	InitialTempo int

	Channels int // number of channels this module actually uses, detected from pattern data width usage

	// Orders is the playback schedule. Sentinel bytes: 254 = pattern
	// separator/skip, 255 = end-of-song (wrap to order 0).
	Orders []byte

	Patterns []Pattern
	Samples  []Sample
}

const (
	// OrderSkip marks an order-list slot to be skipped (pattern separator).
	OrderSkip = 254
	// OrderEnd marks end-of-song; playback wraps to order 0.
	OrderEnd = 255
)
