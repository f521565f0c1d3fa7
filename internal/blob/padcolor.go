package blob

// RGBA is a hot-cue or loop pad color, stored on disk in A,R,G,B byte
// order (see the quick_cues and loops encoders in quickcues.go and loops.go).
type RGBA struct {
	R, G, B, A uint8
}

// The eight standard pad colors used by reference Engine applications for
// hot cues and loops, referenced by name in test fixtures (e.g. Scenario A
// of the end-to-end test suite uses Pad1).
var (
	Pad1 = RGBA{R: 0xEA, G: 0xC5, B: 0x32, A: 0xFF}
	Pad2 = RGBA{R: 0xEA, G: 0x8F, B: 0x32, A: 0xFF}
	Pad3 = RGBA{R: 0xB8, G: 0x55, B: 0xBF, A: 0xFF}
	Pad4 = RGBA{R: 0xBA, G: 0x2A, B: 0x41, A: 0xFF}
	Pad5 = RGBA{R: 0x86, G: 0xC6, B: 0x4B, A: 0xFF}
	Pad6 = RGBA{R: 0x20, G: 0xC6, B: 0x7C, A: 0xFF}
	Pad7 = RGBA{R: 0x00, G: 0xA8, B: 0xB1, A: 0xFF}
	Pad8 = RGBA{R: 0x15, G: 0x8E, B: 0xE2, A: 0xFF}
)

// StandardPads lists the eight standard pad colors in pad-index order.
var StandardPads = [8]RGBA{Pad1, Pad2, Pad3, Pad4, Pad5, Pad6, Pad7, Pad8}
