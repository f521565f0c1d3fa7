package blob

// MusicalKey enumerates the 24 major/minor root keys tracked by the
// track_data BLOB's key field. The ordinal values (1..24) are the ones
// persisted on disk; 0 means "absent" and is never a valid MusicalKey.
type MusicalKey int32

// Ordinals follow the circle-of-fifths pairing of performance_data.hpp's
// musical_key enum (engineprime/performance_data.hpp): A minor first,
// then each major key immediately followed by its relative minor,
// stepping around the circle of fifths, ending at C major.
const (
	KeyAMinor MusicalKey = iota + 1
	KeyGMajor
	KeyEMinor
	KeyDMajor
	KeyBMinor
	KeyAMajor
	KeyFSharpMinor
	KeyEMajor
	KeyDFlatMinor
	KeyBMajor
	KeyAFlatMinor
	KeyFSharpMajor
	KeyEFlatMinor
	KeyDFlatMajor
	KeyBFlatMinor
	KeyAFlatMajor
	KeyFMinor
	KeyEFlatMajor
	KeyCMinor
	KeyBFlatMajor
	KeyGMinor
	KeyFMajor
	KeyDMinor
	KeyCMajor
)

// Valid reports whether k is one of the 24 recognised ordinals.
func (k MusicalKey) Valid() bool {
	return k >= KeyAMinor && k <= KeyCMajor
}

var keyNames = map[MusicalKey]string{
	KeyAMinor:      "A minor",
	KeyGMajor:      "G major",
	KeyEMinor:      "E minor",
	KeyDMajor:      "D major",
	KeyBMinor:      "B minor",
	KeyAMajor:      "A major",
	KeyFSharpMinor: "F# minor",
	KeyEMajor:      "E major",
	KeyDFlatMinor:  "Db minor",
	KeyBMajor:      "B major",
	KeyAFlatMinor:  "Ab minor",
	KeyFSharpMajor: "F# major",
	KeyEFlatMinor:  "Eb minor",
	KeyDFlatMajor:  "Db major",
	KeyBFlatMinor:  "Bb minor",
	KeyAFlatMajor:  "Ab major",
	KeyFMinor:      "F minor",
	KeyEFlatMajor:  "Eb major",
	KeyCMinor:      "C minor",
	KeyBFlatMajor:  "Bb major",
	KeyGMinor:      "G minor",
	KeyFMajor:      "F major",
	KeyDMinor:      "D minor",
	KeyCMajor:      "C major",
}

func (k MusicalKey) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown key"
}
