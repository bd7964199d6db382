package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity ID prefixes
const (
	PrefixApproval   = "APR"
	PrefixDepartment = "DEPT"
	PrefixBudget     = "BUD"
)

// GenerateID produces a unique, human-readable entity identifier of the form
// PREFIX-<unix-millis>-<8 hex chars>. The UUID suffix keeps IDs unique even
// when two requests land in the same millisecond.
func GenerateID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}
