package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveTitleFromFilename(t *testing.T) {
	cases := map[string]string{
		"/photos/01_minji-pob.jpg": "minji pob",
		"IMG_2041 hanni.png":       "hanni",
		"plain.jpeg":               "plain",
		"a__b--c.gif":              "a b c",
	}
	for in, want := range cases {
		if got := DeriveTitleFromFilename(in); got != want {
			t.Errorf("DeriveTitleFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsImageName(t *testing.T) {
	if !IsImageName("card.JPG") || !IsImageName("x.webp") {
		t.Fatal("expected image names to match")
	}
	if IsImageName("notes.txt") || IsImageName("jpg") {
		t.Fatal("expected non-image names to be rejected")
	}
}

func TestValidateImageFile(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "a.png")
	header := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	if err := os.WriteFile(png, header, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ValidateImageFile(png); err != nil {
		t.Fatalf("expected png to validate: %v", err)
	}

	txt := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(txt, []byte("hello, not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ValidateImageFile(txt); err == nil {
		t.Fatal("expected text file with image extension to be rejected")
	}

	if err := ValidateImageFile(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected missing file to be rejected")
	}
	if err := ValidateImageFile(dir); err == nil {
		t.Fatal("expected directory to be rejected")
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range cases {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", in, got, want)
		}
	}
}
