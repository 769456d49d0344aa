package ids

import "github.com/segmentio/ksuid"

// New returns a sortable 27-character id for entity rows.
func New() string {
	return ksuid.New().String()
}
