package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// encoder writes records as JSON lines, YAML documents or plain text.
type encoder struct {
	format string
	w      io.Writer
	json   *json.Encoder
	yaml   *yaml.Encoder
}

func newEncoder(format string, w io.Writer) *encoder {
	e := &encoder{format: format, w: w}
	switch format {
	case "json":
		e.json = json.NewEncoder(w)
		e.json.SetEscapeHTML(false)
	case "yaml":
		e.yaml = yaml.NewEncoder(w)
		e.yaml.SetIndent(2)
	}
	return e
}

// encode writes v, or text when the format is text.
func (e *encoder) encode(v any, text string) error {
	switch e.format {
	case "json":
		return e.json.Encode(v)
	case "yaml":
		return e.yaml.Encode(v)
	default:
		_, err := fmt.Fprintln(e.w, text)
		return err
	}
}

func (e *encoder) close() error {
	if e.yaml != nil {
		return e.yaml.Close()
	}
	return nil
}
