// Package config fills the flat CLI options struct from a TOML file and
// LOOPTHRU_ environment variables, and watches the file for logging
// changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to the env tag of every option.
const EnvPrefix = "LOOPTHRU_"

// layer yields the raw value a source holds for one option.
type layer func(sf reflect.StructField) (any, bool)

// LoadConfig overlays the config file and then the environment onto opts,
// so a flag set on cmd beats the environment, which beats the file.
//
// opts points to a flat struct. Fields map to `toml:"section.key"` and
// `env:"KEY"`; a string field named Config names the file. A missing file
// is not an error. Values of the wrong type are reported together after
// every other option was applied.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	pinned := changedFlags(cmd)

	var layers []layer
	if f := v.FieldByName("Config"); f.IsValid() && f.Kind() == reflect.String && f.String() != "" {
		tree, err := readTree(f.String())
		if err != nil {
			return err
		}
		if tree != nil {
			layers = append(layers, fileLayer(tree))
		}
	}
	layers = append(layers, envLayer(os.LookupEnv))

	var errs []error
	t := v.Type()
	for _, src := range layers {
		for i := range t.NumField() {
			sf := t.Field(i)
			if pinned[fieldNameToFlag(sf.Name)] {
				continue
			}
			raw, ok := src(sf)
			if !ok {
				continue
			}
			if err := assign(v.Field(i), raw); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", sf.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

func changedFlags(cmd *cobra.Command) map[string]bool {
	set := make(map[string]bool)
	if cmd == nil {
		return set
	}
	cmd.Flags().Visit(func(f *pflag.Flag) { set[f.Name] = true })
	return set
}

// readTree parses the TOML file at path; a missing file yields nil.
func readTree(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return tree, nil
}

func fileLayer(tree map[string]any) layer {
	return func(sf reflect.StructField) (any, bool) {
		key := sf.Tag.Get("toml")
		if key == "" || key == "-" {
			return nil, false
		}
		v := lookupPath(tree, key)
		return v, v != nil
	}
}

func envLayer(lookup func(string) (string, bool)) layer {
	return func(sf reflect.StructField) (any, bool) {
		key := sf.Tag.Get("env")
		if key == "" {
			return nil, false
		}
		v, ok := lookup(EnvPrefix + key)
		return v, ok && v != ""
	}
}

// lookupPath walks a dotted key such as "video.capture_device".
func lookupPath(tree map[string]any, key string) any {
	var cur any = tree
	for part := range strings.SplitSeq(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// assign stores raw in field. Strings are parsed for non-string kinds,
// which is how environment values arrive.
func assign(field reflect.Value, raw any) error {
	if !field.CanSet() {
		return nil
	}
	if s, ok := raw.(string); ok && field.Kind() != reflect.String {
		return assignString(field, s)
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := raw.(string); ok {
			field.SetString(s)
			return nil
		}
	case reflect.Bool:
		if b, ok := raw.(bool); ok {
			field.SetBool(b)
			return nil
		}
	case reflect.Int:
		switch n := raw.(type) {
		case int64:
			field.SetInt(n)
			return nil
		case int:
			field.SetInt(int64(n))
			return nil
		}
	case reflect.Float64:
		switch n := raw.(type) {
		case float64:
			field.SetFloat(n)
			return nil
		case int64:
			field.SetFloat(float64(n))
			return nil
		}
	case reflect.Slice:
		if items, ok := raw.([]any); ok && field.Type().Elem().Kind() == reflect.String {
			out := make([]string, 0, len(items))
			for _, item := range items {
				s, ok := item.(string)
				if !ok {
					return fmt.Errorf("list item %v is not a string", item)
				}
				out = append(out, s)
			}
			field.Set(reflect.ValueOf(out))
			return nil
		}
	}
	return fmt.Errorf("cannot use %T value %v as %s", raw, raw, field.Type())
}

func assignString(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported type %s", field.Type())
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}

// fieldNameToFlag converts a field name to the kebab-case flag humacli
// derives from it. Acronyms stay one word: "APIPort" is "api-port".
func fieldNameToFlag(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			afterLower := !unicode.IsUpper(runes[i-1])
			beforeLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if afterLower || beforeLower {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
