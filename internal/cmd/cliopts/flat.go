package cliopts

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/mitchellh/reflectwalk"
	"github.com/spf13/pflag"
)

func loadFromEnv(target interface{}, opts Options) error {
	prefix := strings.ToUpper(opts.EnvPrefix)
	walker := &flatWalker{
		source:   envWithPrefix(prefix, os.Environ()),
		location: []string{prefix},
		format: func(name string) string {
			return strings.ToUpper(strcase.ToSnake(name))
		},
		separator: "_",
	}

	if err := reflectwalk.Walk(target, walker); err != nil {
		return fmt.Errorf("failed to load from environment variables: %w", err)
	}
	return nil
}

func loadFromFlags(target interface{}, opts Options) error {
	source := map[string]interface{}{}
	opts.Flags.VisitAll(func(flag *pflag.Flag) {
		// defaults are already set on the target
		if flag.Changed {
			source[flag.Name] = flag.Value
		}
	})

	walker := &flatWalker{
		source:    source,
		format:    strcase.ToKebab,
		separator: "-",
	}

	if err := reflectwalk.Walk(target, walker); err != nil {
		return fmt.Errorf("failed to load from command line flags: %w", err)
	}
	return nil
}

// flatWalker decodes a source with flat keys, like environment variables or
// flags, into a struct with nested structs. The key for a field is the path
// of struct field names that lead to it, each formatted by format, and joined
// by separator.
type flatWalker struct {
	source    map[string]interface{}
	location  []string
	format    func(string) string
	separator string
}

func (w *flatWalker) Enter(reflectwalk.Location) error {
	return nil
}

func (w *flatWalker) Exit(loc reflectwalk.Location) error {
	if loc == reflectwalk.Struct && len(w.location) > 0 {
		w.location = w.location[:len(w.location)-1]
	}
	return nil
}

func (w *flatWalker) Struct(value reflect.Value) error {
	if !value.CanAddr() {
		return nil
	}

	cfg := decodeConfig(value.Addr().Interface())
	cfg.WeaklyTypedInput = true
	cfg.MatchName = w.matchName

	decoder, err := mapstructure.NewDecoder(&cfg)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(w.source); err != nil {
		return fmt.Errorf("failed to decode into struct: %w", err)
	}
	return nil
}

func (w *flatWalker) StructField(field reflect.StructField, value reflect.Value) error {
	isStruct := value.Kind() == reflect.Struct ||
		(value.Kind() == reflect.Ptr && value.Elem().Kind() == reflect.Struct)
	if !isStruct {
		return nil
	}

	// fields of an embedded struct are keyed like fields of the parent
	name := ""
	if !field.Anonymous {
		name = w.format(field.Name)
	}
	w.location = append(w.location, name)
	return nil
}

func (w *flatWalker) matchName(key string, fieldName string) bool {
	parts := make([]string, 0, len(w.location)+1)
	for _, part := range w.location {
		if part != "" {
			parts = append(parts, part)
		}
	}
	parts = append(parts, w.format(fieldName))
	return key == strings.Join(parts, w.separator)
}

// envWithPrefix returns the environment variables in env that start with
// prefix, as a map of name to value.
func envWithPrefix(prefix string, env []string) map[string]interface{} {
	result := map[string]interface{}{}
	for _, raw := range env {
		// names of some windows variables start with =
		if raw == "" {
			continue
		}
		idx := strings.Index(raw[1:], "=")
		if idx < 0 {
			continue
		}
		key, value := raw[:idx+1], raw[idx+2:]
		if strings.HasPrefix(key, prefix+"_") {
			result[key] = value
		}
	}
	return result
}
