package export

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"teachassist/internal/store"
)

const sampleMarkdown = `# Lesson Plan

## Learning Objectives
- Understand the water cycle
- Explain **evaporation** and condensation

## Activity
Work in pairs on the lab stations.

| Station | Focus |
|---------|-------|
| 1       | Evaporation |
`

func sampleArtifact() *store.Artifact {
	return &store.Artifact{
		ID:      "0b5fa478-9c2d-4f66-8c5a-000000000000",
		Medium:  store.MediumMarkdown,
		Content: sampleMarkdown,
	}
}

func TestRenderMarkdownPassthrough(t *testing.T) {
	result, err := Render(sampleArtifact(), store.MediumMarkdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(result.Content) != sampleMarkdown {
		t.Fatal("markdown export should be verbatim")
	}
	if result.ContentType != "text/markdown" || result.FileName != "artifact-0b5fa478.md" {
		t.Fatalf("unexpected result metadata: %s %s", result.ContentType, result.FileName)
	}
}

func TestRenderPDF(t *testing.T) {
	result, err := Render(sampleArtifact(), store.MediumPDF)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %s", result.ContentType)
	}
	if !strings.HasSuffix(result.FileName, ".pdf") {
		t.Fatalf("unexpected file name %s", result.FileName)
	}
	if len(result.Content) == 0 || !bytes.HasPrefix(result.Content, []byte("%PDF")) {
		t.Fatal("pdf export should start with the %PDF header")
	}
}

func TestRenderPPTXStructure(t *testing.T) {
	result, err := Render(sampleArtifact(), store.MediumPPTX)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(result.Content), int64(len(result.Content)))
	if err != nil {
		t.Fatalf("pptx should be a zip archive: %v", err)
	}

	names := make(map[string]bool)
	for _, file := range reader.File {
		names[file.Name] = true
	}
	for _, want := range []string{
		"[Content_Types].xml",
		"ppt/presentation.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide3.xml",
	} {
		if !names[want] {
			t.Errorf("pptx missing entry %s", want)
		}
	}
	if names["ppt/slides/slide4.xml"] {
		t.Error("three headings should produce exactly three slides")
	}

	for _, file := range reader.File {
		if file.Name != "ppt/slides/slide2.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open slide2: %v", err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read slide2: %v", err)
		}
		rc.Close()
		xml := buf.String()
		if !strings.Contains(xml, "Learning Objectives") {
			t.Fatalf("slide2 should carry the second heading: %s", xml)
		}
		if !strings.Contains(xml, "Explain evaporation and condensation") {
			t.Fatalf("bullet emphasis should be stripped: %s", xml)
		}
	}
}

func TestRenderPPTXFallbackSlide(t *testing.T) {
	artifact := &store.Artifact{ID: "abcd1234efgh", Content: "Plain prose without any headings whatsoever."}
	result, err := Render(artifact, store.MediumPPTX)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(result.Content), int64(len(result.Content)))
	if err != nil {
		t.Fatalf("pptx should be a zip archive: %v", err)
	}
	slideCount := 0
	for _, file := range reader.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			slideCount++
		}
	}
	if slideCount != 1 {
		t.Fatalf("heading-free content should produce one fallback slide, got %d", slideCount)
	}
}

func TestRenderGoogleDocHTML(t *testing.T) {
	result, err := Render(sampleArtifact(), store.MediumGoogleDoc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(result.Content)
	if result.ContentType != "text/html" || !strings.HasSuffix(result.FileName, ".html") {
		t.Fatalf("unexpected result metadata: %s %s", result.ContentType, result.FileName)
	}
	if !strings.Contains(html, "<h1>Lesson Plan</h1>") {
		t.Fatalf("missing h1: %s", html)
	}
	if !strings.Contains(html, "<li>Understand the water cycle</li>") {
		t.Fatalf("missing list item: %s", html)
	}
	if !strings.Contains(html, "<strong>evaporation</strong>") {
		t.Fatalf("missing bold conversion: %s", html)
	}
}

func TestRenderUnknownMediumFallsBackToText(t *testing.T) {
	result, err := Render(sampleArtifact(), store.MediumSpreadsheet)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.ContentType != "text/plain" || !strings.HasSuffix(result.FileName, ".txt") {
		t.Fatalf("unexpected fallback metadata: %s %s", result.ContentType, result.FileName)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, medium := range []store.Medium{store.MediumPDF, store.MediumPPTX, store.MediumGoogleDoc} {
		first, err := Render(sampleArtifact(), medium)
		if err != nil {
			t.Fatalf("Render %s: %v", medium, err)
		}
		second, err := Render(sampleArtifact(), medium)
		if err != nil {
			t.Fatalf("Render %s: %v", medium, err)
		}
		if !bytes.Equal(first.Content, second.Content) {
			t.Errorf("%s render should be byte-identical across runs", medium)
		}
	}
}

func TestParseSlides(t *testing.T) {
	slides := parseSlides(sampleMarkdown)
	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	if slides[0].title != "Lesson Plan" {
		t.Fatalf("unexpected first title %q", slides[0].title)
	}
	if len(slides[1].bullets) != 2 {
		t.Fatalf("expected 2 bullets on slide 2, got %v", slides[1].bullets)
	}
	// Table rows become bullets; the separator row is dropped.
	if len(slides[2].bullets) != 2 {
		t.Fatalf("expected 2 table bullets on slide 3, got %v", slides[2].bullets)
	}
	if len(slides[2].paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph on slide 3, got %v", slides[2].paragraphs)
	}
}
