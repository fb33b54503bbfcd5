// Package codec serializes diagrams. Every format shares the Document
// layout; the codecs differ only in their wire encoding.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/model"
)

// Format names
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// ErrUnknownFormat is returned by ForFormat and FormatFromPath.
var ErrUnknownFormat = errors.New("unknown diagram format")

// Codec encodes and decodes whole diagrams.
type Codec interface {
	Format() string
	Encode(d *model.Diagram, w io.Writer) error
	Decode(r io.Reader, bus *events.Aggregator) (*model.Diagram, error)
}

// documentCodec adapts a Document wire encoding into a Codec.
type documentCodec struct {
	format    string
	marshal   func(w io.Writer, doc *Document) error
	unmarshal func(r io.Reader, doc *Document) error
}

func (c *documentCodec) Format() string { return c.format }

func (c *documentCodec) Encode(d *model.Diagram, w io.Writer) error {
	if err := c.marshal(w, FromDiagram(d)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.format, err)
	}
	return nil
}

func (c *documentCodec) Decode(r io.Reader, bus *events.Aggregator) (*model.Diagram, error) {
	var doc Document
	if err := c.unmarshal(r, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", c.format, err)
	}
	d, err := doc.ToDiagram(bus)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatCodec, "diagram decoded", "format", c.format, "id", d.ID(), "nodes", len(d.AllNodes()))
	return d, nil
}

// NewJSONCodec returns the indented JSON codec.
func NewJSONCodec() Codec {
	return &documentCodec{
		format: FormatJSON,
		marshal: func(w io.Writer, doc *Document) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
		unmarshal: func(r io.Reader, doc *Document) error {
			dec := json.NewDecoder(r)
			dec.DisallowUnknownFields()
			return dec.Decode(doc)
		},
	}
}

// NewYAMLCodec returns the YAML codec.
func NewYAMLCodec() Codec {
	return &documentCodec{
		format: FormatYAML,
		marshal: func(w io.Writer, doc *Document) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
		unmarshal: func(r io.Reader, doc *Document) error {
			dec := yaml.NewDecoder(r)
			dec.KnownFields(true)
			return dec.Decode(doc)
		},
	}
}

// NewMsgpackCodec returns the binary codec used by the store.
func NewMsgpackCodec() Codec {
	return &documentCodec{
		format: FormatMsgpack,
		marshal: func(w io.Writer, doc *Document) error {
			return msgpack.NewEncoder(w).Encode(doc)
		},
		unmarshal: func(r io.Reader, doc *Document) error {
			return msgpack.NewDecoder(r).Decode(doc)
		},
	}
}

// ForFormat returns the codec registered under name.
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case FormatJSON:
		return NewJSONCodec(), nil
	case FormatYAML, "yml":
		return NewYAMLCodec(), nil
	case FormatMsgpack, "msgp", "mpk":
		return NewMsgpackCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	c, err := ForFormat(ext)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return c.Format(), nil
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatMsgpack}
}
