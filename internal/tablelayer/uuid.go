package tablelayer

import "github.com/google/uuid"

// newUUID mints a fresh database identifier, stamped into Information on
// create and read back on load.
func newUUID() string {
	return uuid.NewString()
}
