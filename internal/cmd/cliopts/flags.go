package cliopts

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

type FlagSet interface {
	VisitAll(fn func(*pflag.Flag))
}

// DefaultsFromEnv sets the value of every flag that was not set on the
// command line from an environment variable, when that variable exists.
//
// The name of the variable is the prefix and the flag name, joined by an
// underscore, with dashes replaced by underscores, in uppercase. The flag
// --log-level with prefix ASK is set from ASK_LOG_LEVEL.
//
// DefaultsFromEnv must be called after the flags are parsed.
func DefaultsFromEnv(prefix string, flags FlagSet) error {
	var errs MultiError
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			return
		}

		key := envName(prefix, flag.Name)
		v, exists := os.LookupEnv(key)
		if !exists {
			return
		}
		if err := flag.Value.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("failed to set %v from environment variable: %w", flag.Name, err))
		}
	})

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func envName(prefix, flagName string) string {
	return strings.ToUpper(prefix + "_" + strings.ReplaceAll(flagName, "-", "_"))
}

// MultiError is returned when more than one value could not be set.
type MultiError []error

func (e MultiError) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString("multiple errors:")
	for _, err := range e {
		sb.WriteString("\n    " + err.Error())
	}
	sb.WriteString("\n")
	return sb.String()
}
