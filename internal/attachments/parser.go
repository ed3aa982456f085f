// Package attachments extracts plain text from uploaded reference files
// so it can be folded into generation prompts. Parsing is best effort: a
// failure produces a placeholder string, never an error, so one bad file
// cannot block a request.
package attachments

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MIME types with dedicated parsers.
const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimePPT  = "application/vnd.ms-powerpoint"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
)

// ParsedFile is the extraction result for one attachment.
type ParsedFile struct {
	FileName     string
	MimeType     string
	TextContent  string
	ParseSuccess bool
}

var (
	docxTextPattern  = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	docxParaPattern  = regexp.MustCompile(`</w:p>`)
	pptxTextPattern  = regexp.MustCompile(`<a:t>([^<]*)</a:t>`)
	pptxSlidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

// Parse extracts text from the file at path according to its MIME type.
func Parse(path, mimeType string) ParsedFile {
	fileName := filepath.Base(path)
	result := ParsedFile{FileName: fileName, MimeType: mimeType}

	var (
		text string
		err  error
	)
	switch mimeType {
	case MimeText:
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	case MimePDF:
		text, err = parsePDF(path)
	case MimeDOCX:
		text, err = parseDOCX(path)
	case MimePPTX, MimePPT:
		text, err = parsePPTX(path)
	case MimePNG, MimeJPEG:
		text = fmt.Sprintf("[Image file: %s]", fileName)
	default:
		text = fmt.Sprintf("[Unsupported file type: %s]", mimeType)
	}
	if err != nil {
		result.TextContent = fmt.Sprintf("[Parse error: %v]", err)
		return result
	}
	result.TextContent = text
	result.ParseSuccess = true
	return result
}

func parsePDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// parseDOCX reads word/document.xml out of the archive and strips the run
// markup, treating paragraph ends as newlines.
func parseDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		xml, err := readZipFile(file)
		if err != nil {
			return "", err
		}
		var parts []string
		for _, paragraph := range docxParaPattern.Split(xml, -1) {
			var runs []string
			for _, match := range docxTextPattern.FindAllStringSubmatch(paragraph, -1) {
				runs = append(runs, match[1])
			}
			if joined := strings.TrimSpace(strings.Join(runs, "")); joined != "" {
				parts = append(parts, joined)
			}
		}
		return strings.Join(parts, "\n"), nil
	}
	return "", fmt.Errorf("docx missing word/document.xml")
}

// parsePPTX pulls the <a:t> runs from each slide's XML, slides in numeric
// order.
func parsePPTX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}
	defer archive.Close()

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, file := range archive.File {
		match := pptxSlidePattern.FindStringSubmatch(file.Name)
		if match == nil {
			continue
		}
		num, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: num, file: file})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sections []string
	for _, s := range slides {
		xml, err := readZipFile(s.file)
		if err != nil {
			return "", err
		}
		var texts []string
		for _, match := range pptxTextPattern.FindAllStringSubmatch(xml, -1) {
			if strings.TrimSpace(match[1]) != "" {
				texts = append(texts, match[1])
			}
		}
		if len(texts) > 0 {
			sections = append(sections, fmt.Sprintf("--- Slide %d ---\n%s", s.num, strings.Join(texts, "\n")))
		}
	}
	return strings.Join(sections, "\n\n"), nil
}

func readZipFile(file *zip.File) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return "", fmt.Errorf("read %s: %w", file.Name, err)
	}
	return buf.String(), nil
}
