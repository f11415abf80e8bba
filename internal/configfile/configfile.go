// Package configfile decodes the YAML/JSON registry files (feeds, publishers).
package configfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	ext string
	fn  func([]byte, any) error
}

var decoders = []decoder{
	{ext: ".yaml", fn: yaml.Unmarshal},
	{ext: ".yml", fn: yaml.Unmarshal},
	{ext: ".json", fn: json.Unmarshal},
}

// Read loads the file at path into dst. name labels errors ("feeds", "publishers").
func Read(path, name string, dst any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%s file path is empty", name)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s file: %w", name, err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read %s file: %w", name, err)
	}
	if err := Decode(raw, filepath.Ext(path), dst); err != nil {
		return fmt.Errorf("%s file: %w", name, err)
	}
	return nil
}

// Decode unmarshals data picking the decoder from ext. An empty ext tries YAML
// then JSON.
func Decode(data []byte, ext string, dst any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))
	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		err := d.fn(data, dst)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return fmt.Errorf("unsupported extension %q (expected .yaml, .yml or .json)", ext)
	}
	return errors.Join(append([]error{errors.New("format not recognized (expected YAML or JSON)")}, errs...)...)
}
