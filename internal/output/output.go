// Package output serializes command results. The format is process-wide,
// set once by the root command's --format flag.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"framemap/internal/fusion"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	// FormatText prints a result's plain-text form (the simplified tree for
	// resolve), falling back to YAML for results without one.
	FormatText Format = "text"
)

// OutputFormat is the current output format, set by the root command's
// --format flag.
var OutputFormat = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Texter is implemented by results with a natural plain-text form.
type Texter interface {
	Text() string
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(os.Stdout, v)
}

// Fprint serializes v to w in the current output format.
func Fprint(w io.Writer, v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		enc := json.NewEncoder(w)
		if PrettyOutput {
			enc.SetIndent("", "  ")
		}
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case FormatText:
		if t, ok := v.(Texter); ok {
			_, err := io.WriteString(w, t.Text())
			return err
		}
		return printYAML(w, v)
	case FormatYAML:
		return printYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

// Tab describes one debuggable browser target.
type Tab struct {
	ID    string `yaml:"id"              json:"id"`
	Type  string `yaml:"type"            json:"type"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	URL   string `yaml:"url,omitempty"   json:"url,omitempty"`
}

// ResolveResult is the top-level output of the `resolve` command.
type ResolveResult struct {
	URL         string              `yaml:"url,omitempty"         json:"url,omitempty"`
	TS          int64               `yaml:"ts"                    json:"ts"`
	Simplified  string              `yaml:"tree"                  json:"tree"`
	Nodes       []fusion.FlatNode   `yaml:"nodes,omitempty"       json:"nodes,omitempty"`
	Iframes     []fusion.IframeRef  `yaml:"iframes,omitempty"     json:"iframes,omitempty"`
	Diagnostics []fusion.Diagnostic `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

// Text returns the simplified tree serialization.
func (r ResolveResult) Text() string { return r.Simplified }

// FrameEntry is one row of the `frames` command output.
type FrameEntry struct {
	Ordinal int    `yaml:"ordinal"          json:"ordinal"`
	ID      string `yaml:"id"               json:"id"`
	Parent  string `yaml:"parent,omitempty" json:"parent,omitempty"`
	URL     string `yaml:"url,omitempty"    json:"url,omitempty"`
}

// XPathResult is the output of the `xpath` command.
type XPathResult struct {
	ID    string `yaml:"id"            json:"id"`
	XPath string `yaml:"xpath"         json:"xpath"`
	Tag   string `yaml:"tag,omitempty" json:"tag,omitempty"`
}

// Text returns the bare path for piping into other tools.
func (r XPathResult) Text() string { return r.XPath + "\n" }

// ClickResult is the output of the `click` command.
type ClickResult struct {
	ID string  `yaml:"id" json:"id"`
	X  float64 `yaml:"x"  json:"x"`
	Y  float64 `yaml:"y"  json:"y"`
	OK bool    `yaml:"ok" json:"ok"`
}

// SessionEntry is one row of the `sessions` command output.
type SessionEntry struct {
	ID      string `yaml:"id"              json:"id"`
	Frame   string `yaml:"frame,omitempty" json:"frame,omitempty"`
	State   string `yaml:"state"           json:"state"`
	Aliased bool   `yaml:"aliased"         json:"aliased"`
}
