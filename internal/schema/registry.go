// Package schema is the stateless registry of Engine on-disk schema
// versions: the closed enumeration, their total ordering, and the
// human-readable strings associated with each.
package schema

import "fmt"

// Generation distinguishes the split (v1) database layout from the
// unified (v2/v3) layout.
type Generation int

const (
	GenV1 Generation = 1
	GenV2 Generation = 2
	GenV3 Generation = 3
)

// ID identifies one on-disk schema version. Values are ordered
// lexicographically on (Major, Minor, Patch, Variant).
type ID struct {
	Generation Generation
	Major      int
	Minor      int
	Patch      int
	// Variant distinguishes schemas that share (major, minor, patch) but
	// differ in platform target, e.g. v1_18_0 desktop vs os.
	Variant string
}

func (id ID) String() string {
	v := fmt.Sprintf("v%d_%d_%d", id.Major, id.Minor, id.Patch)
	if id.Variant != "" {
		v += "_" + id.Variant
	}
	return v
}

// Compare returns -1, 0, or 1 as id sorts before, equal to, or after other,
// comparing (major, minor, patch, variant) in turn.
func (id ID) Compare(other ID) int {
	if id.Major != other.Major {
		return cmp(id.Major, other.Major)
	}
	if id.Minor != other.Minor {
		return cmp(id.Minor, other.Minor)
	}
	if id.Patch != other.Patch {
		return cmp(id.Patch, other.Patch)
	}
	if id.Variant != other.Variant {
		if id.Variant < other.Variant {
			return -1
		}
		return 1
	}
	return 0
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether id sorts strictly before other.
func (id ID) Less(other ID) bool { return id.Compare(other) < 0 }

// IsV2Like reports whether id uses the unified single-database layout
// (true for v2_* and v3_*, false for v1_*).
func (id ID) IsV2Like() bool { return id.Generation != GenV1 }

// The 19 schemas this library supports, oldest to newest within each
// generation.
var (
	V1_6_0        = ID{Generation: GenV1, Major: 1, Minor: 6, Patch: 0}
	V1_7_1        = ID{Generation: GenV1, Major: 1, Minor: 7, Patch: 1}
	V1_9_1        = ID{Generation: GenV1, Major: 1, Minor: 9, Patch: 1}
	V1_11_1       = ID{Generation: GenV1, Major: 1, Minor: 11, Patch: 1}
	V1_13_0       = ID{Generation: GenV1, Major: 1, Minor: 13, Patch: 0}
	V1_13_1       = ID{Generation: GenV1, Major: 1, Minor: 13, Patch: 1}
	V1_13_2       = ID{Generation: GenV1, Major: 1, Minor: 13, Patch: 2}
	V1_15_0       = ID{Generation: GenV1, Major: 1, Minor: 15, Patch: 0}
	V1_17_0       = ID{Generation: GenV1, Major: 1, Minor: 17, Patch: 0}
	V1_18_0Desktop = ID{Generation: GenV1, Major: 1, Minor: 18, Patch: 0, Variant: "desktop"}
	V1_18_0OS      = ID{Generation: GenV1, Major: 1, Minor: 18, Patch: 0, Variant: "os"}
	V2_18_0       = ID{Generation: GenV2, Major: 2, Minor: 18, Patch: 0}
	V2_20_1       = ID{Generation: GenV2, Major: 2, Minor: 20, Patch: 1}
	V2_20_2       = ID{Generation: GenV2, Major: 2, Minor: 20, Patch: 2}
	V2_20_3       = ID{Generation: GenV2, Major: 2, Minor: 20, Patch: 3}
	V2_21_0       = ID{Generation: GenV2, Major: 2, Minor: 21, Patch: 0}
	V2_21_1       = ID{Generation: GenV2, Major: 2, Minor: 21, Patch: 1}
	V2_21_2       = ID{Generation: GenV2, Major: 2, Minor: 21, Patch: 2}
	V3_0_0        = ID{Generation: GenV3, Major: 3, Minor: 0, Patch: 0}
)

// All returns every registered schema, in ascending order.
func All() []ID {
	return []ID{
		V1_6_0, V1_7_1, V1_9_1, V1_11_1, V1_13_0, V1_13_1, V1_13_2, V1_15_0,
		V1_17_0, V1_18_0Desktop, V1_18_0OS, V2_18_0, V2_20_1, V2_20_2, V2_20_3,
		V2_21_0, V2_21_1, V2_21_2, V3_0_0,
	}
}

// Latest returns the newest schema overall.
func Latest() ID { return V3_0_0 }

// LatestV1 returns the newest v1 (split-database) schema.
func LatestV1() ID { return V1_18_0OS }

// LatestV2 returns the newest v2 (unified-database) schema.
func LatestV2() ID { return V2_21_2 }

// LatestV3 returns the newest v3 schema.
func LatestV3() ID { return V3_0_0 }

// Lookup finds the registered schema matching (major, minor, patch),
// disambiguating v1_18_0's desktop/os variants by preferring desktop, the
// historically more common of the two. Returns false if no schema with
// that triple is registered.
func Lookup(major, minor, patch int) (ID, bool) {
	var match *ID
	for _, id := range All() {
		if id.Major == major && id.Minor == minor && id.Patch == patch {
			c := id
			if match == nil {
				match = &c
			}
		}
	}
	if match == nil {
		return ID{}, false
	}
	return *match, true
}

// applicationVersions maps each schema to the human-readable application
// version that introduced it. Informational only; nothing depends on the
// exact wording of these strings for correctness.
var applicationVersions = map[ID]string{
	V1_6_0:         "1.6.0",
	V1_7_1:         "1.7.1",
	V1_9_1:         "1.9.1",
	V1_11_1:        "1.11.1",
	V1_13_0:        "1.13.0",
	V1_13_1:        "1.13.1",
	V1_13_2:        "1.13.2",
	V1_15_0:        "1.15.0",
	V1_17_0:        "1.17.0",
	V1_18_0Desktop: "1.18.0 (Engine DJ Desktop)",
	V1_18_0OS:      "1.18.0 (Engine OS)",
	V2_18_0:        "2.18.0",
	V2_20_1:        "2.20.1",
	V2_20_2:        "2.20.2",
	V2_20_3:        "2.20.3",
	V2_21_0:        "2.21.0",
	V2_21_1:        "2.21.1",
	V2_21_2:        "2.21.2",
	V3_0_0:         "3.0.0",
}

// ToApplicationVersionString returns the human-readable application
// version associated with id, or "" if unrecognised.
func ToApplicationVersionString(id ID) string {
	return applicationVersions[id]
}
