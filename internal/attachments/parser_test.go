package attachments

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

func TestParsePlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("photosynthesis reading passage"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	parsed := Parse(path, MimeText)
	if !parsed.ParseSuccess {
		t.Fatalf("expected success, got %+v", parsed)
	}
	if parsed.TextContent != "photosynthesis reading passage" {
		t.Fatalf("unexpected text %q", parsed.TextContent)
	}
	if parsed.FileName != "notes.txt" {
		t.Fatalf("unexpected file name %q", parsed.FileName)
	}
}

func TestParseDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handout.docx")
	writeZip(t, path, map[string]string{
		"word/document.xml": `<w:document><w:body>` +
			`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})

	parsed := Parse(path, MimeDOCX)
	if !parsed.ParseSuccess {
		t.Fatalf("expected success, got %+v", parsed)
	}
	want := "First paragraph.\nSecond paragraph."
	if parsed.TextContent != want {
		t.Fatalf("unexpected text %q, want %q", parsed.TextContent, want)
	}
}

func TestParsePPTXOrdersSlidesNumerically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	writeZip(t, path, map[string]string{
		"ppt/slides/slide10.xml": `<p:sld><a:t>Tenth slide</a:t></p:sld>`,
		"ppt/slides/slide2.xml":  `<p:sld><a:t>Second slide</a:t></p:sld>`,
		"ppt/slides/slide1.xml":  `<p:sld><a:t>Title</a:t><a:t>Subtitle</a:t></p:sld>`,
	})

	parsed := Parse(path, MimePPTX)
	if !parsed.ParseSuccess {
		t.Fatalf("expected success, got %+v", parsed)
	}
	first := strings.Index(parsed.TextContent, "Slide 1 ---")
	second := strings.Index(parsed.TextContent, "Slide 2 ---")
	tenth := strings.Index(parsed.TextContent, "Slide 10 ---")
	if first < 0 || second < 0 || tenth < 0 {
		t.Fatalf("missing slide sections: %q", parsed.TextContent)
	}
	if !(first < second && second < tenth) {
		t.Fatalf("slides out of order: %q", parsed.TextContent)
	}
	if !strings.Contains(parsed.TextContent, "Title\nSubtitle") {
		t.Fatalf("slide runs should join with newlines: %q", parsed.TextContent)
	}
}

func TestParseImagePlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50, 0x4e, 0x47}, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	parsed := Parse(path, MimePNG)
	if !parsed.ParseSuccess {
		t.Fatalf("expected success, got %+v", parsed)
	}
	if parsed.TextContent != "[Image file: diagram.png]" {
		t.Fatalf("unexpected placeholder %q", parsed.TextContent)
	}
}

func TestParseUnsupportedType(t *testing.T) {
	parsed := Parse(filepath.Join(t.TempDir(), "data.bin"), "application/octet-stream")
	if !parsed.ParseSuccess {
		t.Fatalf("unsupported types still succeed with a placeholder, got %+v", parsed)
	}
	if !strings.Contains(parsed.TextContent, "Unsupported file type") {
		t.Fatalf("unexpected placeholder %q", parsed.TextContent)
	}
}

func TestParseFailureProducesPlaceholder(t *testing.T) {
	parsed := Parse(filepath.Join(t.TempDir(), "missing.txt"), MimeText)
	if parsed.ParseSuccess {
		t.Fatal("missing file should not parse successfully")
	}
	if !strings.Contains(parsed.TextContent, "[Parse error:") {
		t.Fatalf("unexpected placeholder %q", parsed.TextContent)
	}

	badPDF := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(badPDF, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	parsed = Parse(badPDF, MimePDF)
	if parsed.ParseSuccess {
		t.Fatal("invalid pdf should not parse successfully")
	}
}
