package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
)

// Extension is the only accepted document extension.
const Extension = ".json"

// CheckFormat reports cfgerr.ErrUnsupportedFormat for any path whose
// extension is not .json (case-insensitive).
func CheckFormat(path string) error {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, Extension) {
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Errorf("%w: %s, only %s is supported", cfgerr.ErrUnsupportedFormat, ext, Extension)
	}
	return nil
}

// JSONLoader loads configuration documents from JSON files.
type JSONLoader struct {
	fs FileSystem
}

// NewJSONLoader creates a loader reading from the OS file system.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{fs: DefaultFS()}
}

// NewJSONLoaderWithFS creates a loader with a custom file system.
func NewJSONLoaderWithFS(fsys FileSystem) *JSONLoader {
	return &JSONLoader{fs: fsys}
}

// Exists reports whether path names an existing file.
func (l *JSONLoader) Exists(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadFrom reads the document at path. A missing file, an unsupported
// extension, malformed JSON and a non-object top level all fail with a
// *cfgerr.ConfigError.
func (l *JSONLoader) LoadFrom(path string) (map[string]any, error) {
	if err := CheckFormat(path); err != nil {
		return nil, cfgerr.NewConfigError("load", path, err)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cfgerr.NewConfigError("load", path, fmt.Errorf("config file not found: %w", err))
		}
		return nil, cfgerr.NewConfigError("load", path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, cfgerr.NewConfigError("load", path, err)
	}
	return doc, nil
}

// Decode parses a JSON document whose top level must be an object.
// Integral numbers decode to int and all other numbers to float64.
func Decode(data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", cfgerr.ErrInvalidDocument)
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object, got %s", cfgerr.ErrInvalidDocument, kindName(result))
	}
	return convert(result).(map[string]any), nil
}

// DecodeValue parses any JSON value, such as an environment literal.
func DecodeValue(text string) (any, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: malformed JSON literal %q", cfgerr.ErrInvalidDocument, text)
	}
	return convert(gjson.Parse(text)), nil
}

func convert(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			m[key.Str] = convert(value)
			return true
		})
		return m
	case r.IsArray():
		arr := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, convert(value))
			return true
		})
		return arr
	}

	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		return number(r)
	case gjson.String:
		return r.Str
	default:
		return nil
	}
}

func number(r gjson.Result) any {
	raw := strings.TrimSpace(r.Raw)
	if !strings.ContainsAny(raw, ".eE") {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return r.Float()
}

func kindName(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.True, r.Type == gjson.False:
		return "bool"
	default:
		return "null"
	}
}
