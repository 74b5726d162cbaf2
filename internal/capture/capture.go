// Package capture implements the Source Capture collaborator (§4.A): since
// Go carries no runtime reflection over a function literal's own source
// text, the builder source is always supplied explicitly by the caller and
// this package's job reduces to validating and returning it verbatim - it is
// the stable cache key every downstream stage keys off.
package capture

import (
	"strings"

	"github.com/linqsql/linqsql/compileerr"
)

// Text validates and returns source, the textual form of a builder function.
func Text(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", compileerr.Config("capture", "builder source must not be empty")
	}

	return source, nil
}
