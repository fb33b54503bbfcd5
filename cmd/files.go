package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/diagramkit/internal/codec"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/model"
)

// codecFor picks a codec from the file extension unless format is set.
func codecFor(path, format string) (codec.Codec, error) {
	if format != "" {
		return codec.ForFormat(format)
	}
	name, err := codec.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return codec.ForFormat(name)
}

func readDiagram(path, format string) (*model.Diagram, error) {
	c, err := codecFor(path, format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening diagram: %w", err)
	}
	defer func() { _ = f.Close() }()

	d, err := c.Decode(f, events.NewAggregator())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return d, nil
}

func writeDiagram(path, format string, d *model.Diagram) error {
	c, err := codecFor(path, format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := c.Encode(d, &buf); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
