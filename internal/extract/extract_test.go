package extract

import (
	"errors"
	"testing"
)

func TestTextPlainFiles(t *testing.T) {
	for _, name := range []string{"notes.txt", "NOTES.TXT", "readme.md"} {
		got, err := Text([]byte("hello world"), name)
		if err != nil {
			t.Fatalf("Text(%q): %v", name, err)
		}
		if got != "hello world" {
			t.Errorf("Text(%q) = %q", name, got)
		}
	}
}

func TestTextUnsupportedType(t *testing.T) {
	for _, name := range []string{"image.png", "data.csv", "archive", "doc.docx"} {
		if _, err := Text([]byte("x"), name); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Text(%q) err = %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestTextBrokenPDF(t *testing.T) {
	if _, err := Text([]byte("not a pdf at all"), "broken.pdf"); err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}
