package location

import (
	"os"
	"regexp"
)

var envExpr = regexp.MustCompile(`\$\{env\.([\p{L}\p{N}_]*)\}`)

// ExpandEnv replaces every ${env.KEY} with the value of the environment
// variable KEY, or "" when unset.  Malformed expressions are kept literally.
func ExpandEnv(value string) string {
	return envExpr.ReplaceAllStringFunc(value, func(expr string) string {
		return os.Getenv(envExpr.FindStringSubmatch(expr)[1])
	})
}
