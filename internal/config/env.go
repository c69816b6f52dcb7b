package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/oshokin/arclight-deploy/internal/domain/deploy"
)

// dotenvType is the viper config type for KEY=VALUE files.
const dotenvType = "env"

// envKeyRegexp matches the keys the dotenv codec accepts.
var envKeyRegexp = regexp.MustCompile(`^[\w.]+$`)

// Environment holds the values of a dotenv file. Key lookups are case-insensitive.
type Environment struct {
	// path is the file the values were read from.
	path string
	// values holds the parsed file.
	values *viper.Viper
}

// LoadEnvironment reads a dotenv file. Blank lines, #-comments and lines
// without '=' are ignored. Values are taken literally after the first '=':
// no variable expansion and no inline comments.
// A missing file yields deploy.ErrConfigMissing.
func LoadEnvironment(path string) (*Environment, error) {
	if path == "" {
		path = DefaultEnvFilename
	}

	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s file not found", deploy.ErrConfigMissing, path)
		}

		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	normalized, err := normalizeDotenv(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	values := viper.New()
	values.SetConfigType(dotenvType)

	if err = values.ReadConfig(bytes.NewReader(normalized)); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", deploy.ErrConfigMissing, path, err)
	}

	return &Environment{
		path:   path,
		values: values,
	}, nil
}

// normalizeDotenv rewrites every KEY=VALUE line with a single-quoted value so
// the codec keeps it verbatim. Lines the codec cannot represent are dropped.
func normalizeDotenv(r io.Reader) ([]byte, error) {
	var (
		out     bytes.Buffer
		scanner = bufio.NewScanner(r)
		first   = true
	)

	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if !envKeyRegexp.MatchString(key) {
			continue
		}

		value = strings.TrimSpace(value)
		if value == "" {
			fmt.Fprintf(&out, "%s=\n", key)

			continue
		}

		// A backslash right before the closing quote reads as an escaped quote;
		// the padding is trimmed again by Lookup.
		if strings.HasSuffix(value, "\\") {
			value += " "
		}

		fmt.Fprintf(&out, "%s='%s'\n", key, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// Lookup returns the trimmed value of key and whether it is present.
func (e *Environment) Lookup(key string) (string, bool) {
	if !e.values.IsSet(key) {
		return "", false
	}

	return strings.TrimSpace(e.values.GetString(key)), true
}

// Require returns the value of key, failing with deploy.ErrConfigMissing
// when it is absent or empty.
func (e *Environment) Require(key string) (string, error) {
	value, ok := e.Lookup(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s not found in %s file", deploy.ErrConfigMissing, key, e.path)
	}

	return value, nil
}

// Keys returns the (lowercased) keys defined in the file.
func (e *Environment) Keys() []string {
	return e.values.AllKeys()
}
