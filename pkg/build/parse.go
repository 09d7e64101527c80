package build

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/patchwright/patchwright/pkg/models"
)

// errorLineRe matches the compiler's error-line grammar:
//
//	[ERROR] /path/to/File.java:[12,34] cannot find symbol
var errorLineRe = regexp.MustCompile(`^\[ERROR\]\s+(.+?):\[(\d+),(\d+)\]\s+(.*)$`)

// kindPatterns categorize error messages by substring. Order matters: the
// first match wins.
var kindPatterns = []struct {
	needle string
	kind   models.BuildErrorKind
}{
	{"cannot find symbol", models.ErrorKindSymbolNotFound},
	{"symbol not found", models.ErrorKindSymbolNotFound},
	{"package ", models.ErrorKindMissingImport},
	{"cannot be converted", models.ErrorKindTypeMismatch},
	{"incompatible types", models.ErrorKindTypeMismatch},
	{"bad operand type", models.ErrorKindTypeMismatch},
	{"expected", models.ErrorKindSyntax},
	{"illegal start", models.ErrorKindSyntax},
	{"unclosed", models.ErrorKindSyntax},
	{"reached end of file", models.ErrorKindSyntax},
}

// ParseErrors extracts structured errors from raw build output. Lines that
// are not ERROR lines in the expected grammar are ignored.
func ParseErrors(rawLog string) []models.BuildError {
	var errs []models.BuildError
	for _, line := range strings.Split(rawLog, "\n") {
		m := errorLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		errs = append(errs, models.BuildError{
			File:    m[1],
			Line:    lineNo,
			Column:  col,
			Message: m[4],
			Kind:    categorize(m[4]),
		})
	}
	return errs
}

func categorize(message string) models.BuildErrorKind {
	lower := strings.ToLower(message)
	for _, p := range kindPatterns {
		if strings.Contains(lower, p.needle) {
			return p.kind
		}
	}
	return models.ErrorKindUnknown
}
