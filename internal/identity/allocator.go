package identity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kozaktomas/photo-faces/internal/constants"
)

// NextID allocates the next human-readable identifier for a namespace, given
// the identifiers already present. It returns person_<max+1> over the numeric
// suffixes of existing person_<N> identifiers (optionally prefixed with
// "<namespace>_"), or person_1 when none exist.
//
// Using highest-existing-number+1 rather than a count tolerates identities
// deleted or merged externally without reusing their identifiers.
func NextID(existing []string, namespace string) string {
	maxN := 0
	for _, id := range existing {
		n, ok := parsePersonNumber(id, namespace)
		if ok && n > maxN {
			maxN = n
		}
	}
	return FormatID(namespace, maxN+1)
}

// FormatID builds a person identifier, namespace-prefixed when the namespace
// is non-empty.
func FormatID(namespace string, n int) string {
	if namespace == "" {
		return fmt.Sprintf("%s%d", constants.IdentityPrefix, n)
	}
	return fmt.Sprintf("%s_%s%d", namespace, constants.IdentityPrefix, n)
}

// parsePersonNumber extracts N from person_<N>, accepting an optional
// "<namespace>_" prefix. Returns false for identifiers in any other shape
// (including the "unknown" sentinel).
func parsePersonNumber(id, namespace string) (int, bool) {
	if namespace != "" {
		id = strings.TrimPrefix(id, namespace+"_")
	}
	rest, ok := strings.CutPrefix(id, constants.IdentityPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
