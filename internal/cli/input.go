package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/powerset/pkg/automaton"
	"github.com/aretw0/powerset/pkg/codec"
)

// Machine formats accepted by ReadMachine and WriteMachine.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ReadMachine resolves a machine argument: "-" reads stdin, an existing
// file is read from disk and anything else is taken as an inline encoding.
// FormatAuto picks the decoder from the file extension, defaulting to text.
func ReadMachine(arg, format string) (automaton.Machine, error) {
	data, source, err := readArg(arg)
	if err != nil {
		return nil, err
	}
	if format == "" || format == FormatAuto {
		format = detectFormat(source)
	}

	var doc *codec.Document
	switch format {
	case FormatText:
		n, err := codec.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		return n, nil
	case FormatYAML:
		doc, err = codec.DecodeYAML(data)
	case FormatJSON:
		doc, err = codec.DecodeJSON(data)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	m, err := doc.Machine()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return m, nil
}

func readArg(arg string) ([]byte, string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, "stdin", err
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		return data, arg, err
	}
	return []byte(arg), "inline", nil
}

func detectFormat(source string) string {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return FormatText
}

// WriteMachine renders m to w in the given format.
func WriteMachine(w io.Writer, m automaton.Machine, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "", FormatAuto, FormatText:
		data = []byte(codec.Encode(m) + "\n")
	case FormatYAML:
		data, err = codec.EncodeYAML(m)
	case FormatJSON:
		data, err = codec.EncodeJSON(m)
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
