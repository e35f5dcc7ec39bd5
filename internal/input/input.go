package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"
)

var stdin io.Reader = os.Stdin

// ValidationError reports input rejected before analysis.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Read loads markup from a file, from stdin ("-"), or interactively ("").
// maxBytes bounds the amount read; zero means unbounded.
func Read(path string, maxBytes int64) ([]byte, error) {
	if path != "" && path != "-" {
		if err := checkExtension("file", path); err != nil {
			return nil, err
		}
	}

	var data []byte
	var err error
	switch path {
	case "":
		data, err = readInteractive(maxBytes)
	case "-":
		data, err = readLimited(stdin, maxBytes)
	default:
		data, err = readFile(path, maxBytes)
	}
	if err != nil {
		return nil, err
	}

	if path == "" || path == "-" {
		if !LooksLikeHTML(data) {
			return nil, &ValidationError{Field: "input", Message: "input does not look like HTML markup"}
		}
	}
	return data, nil
}

// Validate checks an uploaded document's name and size. An empty name skips
// the extension check.
func Validate(name string, size, maxBytes int64) error {
	if name != "" {
		if err := checkExtension("file", name); err != nil {
			return err
		}
	}
	if maxBytes > 0 && size > maxBytes {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("the file may not be greater than %d kilobytes", maxBytes/1024),
		}
	}
	return nil
}

func checkExtension(field, name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return nil
	}
	return &ValidationError{Field: field, Message: "the file must be a file of type: html, htm"}
}

// LooksLikeHTML rejects empty, binary and obviously structured non-markup
// input such as JSON.
func LooksLikeHTML(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	if !utf8.Valid(trimmed) || bytes.IndexByte(trimmed, 0) >= 0 {
		return false
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return false
	}
	return bytes.IndexByte(trimmed, '<') >= 0
}

func readFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("the file may not be greater than %d kilobytes", maxBytes/1024),
		}
	}
	return data, nil
}

func readInteractive(maxBytes int64) ([]byte, error) {
	fmt.Print("Paste HTML markup")
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	return readLimited(stdin, maxBytes)
}
