package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/tidwall/pretty"

	"github.com/ywtatools/ywta/internal/config/cfgerr"
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: true,
}

// Encode serializes doc as indented JSON with sorted keys. HTML characters
// and non-ASCII text are written as-is.
func Encode(doc map[string]any) ([]byte, error) {
	if doc == nil {
		doc = map[string]any{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return pretty.PrettyOptions(buf.Bytes(), prettyOptions), nil
}

// SaveFile writes doc to path atomically. Parent directories are created
// as needed. Failures are reported as *cfgerr.ConfigError.
func SaveFile(path string, doc map[string]any) error {
	if err := CheckFormat(path); err != nil {
		return saveError(path, err)
	}

	data, err := Encode(doc)
	if err != nil {
		return saveError(path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return saveError(path, fmt.Errorf("create config directory: %w", err))
	}

	pending, err := renameio.NewPendingFile(path,
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return saveError(path, fmt.Errorf("create pending file: %w", err))
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return saveError(path, fmt.Errorf("write document: %w", err))
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return saveError(path, fmt.Errorf("commit document: %w", err))
	}
	return nil
}

func saveError(path string, err error) error {
	return cfgerr.NewConfigError("save", path, err)
}
