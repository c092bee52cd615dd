package stageid

import (
	"fmt"
	"strings"
)

// String serializes the Address into its canonical string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(string(a.Kind))
	if a.Domain != "" {
		sb.WriteRune('.')
		sb.WriteString(a.Domain)
	}
	if a.ID != "" {
		sb.WriteRune('.')
		sb.WriteString(a.ID)
	}
	if a.Index > 0 {
		sb.WriteString(fmt.Sprintf("[%d]", a.Index))
	}
	return sb.String()
}

// Equal checks for equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return *a == *other
}
