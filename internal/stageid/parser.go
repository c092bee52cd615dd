package stageid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex matches a single segment, e.g. `counter` or `counter[2]`.
var segmentRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\[(\d+)\])?$`)

// Parse creates a new Address by parsing its canonical string representation.
func Parse(rawID string) (*Address, error) {
	if rawID == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}

	segments := strings.Split(rawID, ".")
	names := make([]string, len(segments))
	index := 0
	for i, segmentStr := range segments {
		if segmentStr == "" {
			return nil, fmt.Errorf("identifier path contains empty segment")
		}
		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}
		names[i] = matches[1]
		if matches[2] != "" {
			if i != len(segments)-1 {
				return nil, fmt.Errorf("only the last segment may carry an index: %q", rawID)
			}
			n, err := strconv.Atoi(matches[2])
			if err != nil {
				return nil, fmt.Errorf("internal error parsing index: %w", err)
			}
			if n < 2 {
				return nil, fmt.Errorf("index must be at least 2: %q", rawID)
			}
			index = n
		}
	}

	addr := &Address{Kind: Kind(names[0]), Index: index}
	switch {
	case addr.Kind == Core && len(names) == 1:
	case addr.Kind == Component && len(names) == 3:
		addr.Domain, addr.ID = names[1], names[2]
	case addr.Kind == Automation && len(names) == 2:
		addr.ID = names[1]
	default:
		return nil, fmt.Errorf("invalid stage address %q", rawID)
	}
	if addr.Kind == Core && index != 0 {
		return nil, fmt.Errorf("the core stage cannot carry an index")
	}
	return addr, nil
}
