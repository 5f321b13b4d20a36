package value

import (
	"fmt"

	"github.com/rs/xid"
)

// RunID identifies one pipeline invocation. xid keeps ids sortable by
// creation time, which the loader relies on for "latest run" queries.
type RunID struct{ xid.ID }

func NewRunID() RunID {
	return RunID{ID: xid.New()}
}

func ParseRunID(s string) (RunID, error) {
	id, err := xid.FromString(s)
	if err != nil {
		return RunID{}, fmt.Errorf("xid.FromString(%s): %w", s, err)
	}

	return RunID{ID: id}, nil
}
