package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withStdin(t *testing.T, content string) {
	t.Helper()
	orig := stdin
	stdin = strings.NewReader(content)
	t.Cleanup(func() { stdin = orig })
}

func requireValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != field {
		t.Errorf("Field = %q, want %q", ve.Field, field)
	}
}

func TestRead_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	content := []byte(`<html><body></body></html>`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := Read(path, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("got %q", data)
	}
}

func TestRead_FileUppercaseExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PAGE.HTM")
	if err := os.WriteFile(path, []byte("<p>x</p>"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Read(path, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRead_WrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Read(path, 0)
	requireValidationError(t, err, "file")
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.html"), 0)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestRead_FileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.html")
	if err := os.WriteFile(path, []byte("<p>"+strings.Repeat("a", 2048)+"</p>"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Read(path, 1024)
	requireValidationError(t, err, "file")
}

func TestRead_Stdin(t *testing.T) {
	withStdin(t, "<h1>piped</h1>")

	data, err := Read("-", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "<h1>piped</h1>" {
		t.Errorf("got %q", data)
	}
}

func TestRead_StdinNotHTML(t *testing.T) {
	withStdin(t, `[{"Plan": {}}]`)

	_, err := Read("-", 0)
	requireValidationError(t, err, "input")
}

func TestValidate(t *testing.T) {
	if err := Validate("index.html", 100, 2048*1024); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate("", 100, 2048*1024); err != nil {
		t.Errorf("empty name should skip extension check: %v", err)
	}
	requireValidationError(t, Validate("notes.txt", 100, 2048*1024), "file")

	err := Validate("index.htm", 2048*1024+1, 2048*1024)
	requireValidationError(t, err, "file")
	if !strings.Contains(err.Error(), "2048 kilobytes") {
		t.Errorf("error = %v", err)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	cases := map[string]bool{
		"<!DOCTYPE html><html></html>": true,
		"  <p>hello</p>  ":             true,
		"":                             false,
		"   \n ":                       false,
		"plain text only":              false,
		`{"key": "<b>"}`:               false,
		"\x00\x01<p>":                  false,
	}
	for in, want := range cases {
		if got := LooksLikeHTML([]byte(in)); got != want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", in, got, want)
		}
	}
}
