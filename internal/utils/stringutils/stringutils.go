package stringutils

import (
	"fmt"
	"strings"
)

// InClause builds the "$n, $n+1, ..." placeholder list for an IN (...) filter,
// numbering from startAt so it can follow other positional arguments.
func InClause[T any](list []T, startAt int) (placeholders string, args []any) {
	parts := make([]string, len(list))
	args = make([]any, len(list))
	for i, v := range list {
		parts[i] = fmt.Sprintf("$%d", startAt+i)
		args[i] = v
	}

	return strings.Join(parts, ", "), args
}

func TrimToEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
