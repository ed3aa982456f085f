// Package export renders stored artifacts into downloadable formats.
// Rendering is deterministic: the same artifact and medium always
// produce byte-identical output.
package export

import (
	"fmt"

	"teachassist/internal/services"
	"teachassist/internal/store"
)

// Result is one rendered export.
type Result struct {
	Content     []byte
	ContentType string
	FileName    string
}

// Render converts the artifact's Markdown content into the requested
// medium. Unknown media fall back to a plain-text passthrough.
func Render(artifact *store.Artifact, medium store.Medium) (*Result, error) {
	if artifact == nil {
		return nil, services.Wrap(services.ErrValidation, "export", "render", "artifact required", nil)
	}
	slug := artifactSlug(artifact.ID)

	switch medium {
	case store.MediumMarkdown:
		return &Result{
			Content:     []byte(artifact.Content),
			ContentType: "text/markdown",
			FileName:    slug + ".md",
		}, nil
	case store.MediumPDF:
		content, err := renderPDF(artifact.Content)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "export", "render", "pdf", err)
		}
		return &Result{Content: content, ContentType: "application/pdf", FileName: slug + ".pdf"}, nil
	case store.MediumPPTX, store.MediumGoogleSlide:
		content, err := renderPPTX(artifact.Content)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "export", "render", "pptx", err)
		}
		return &Result{
			Content:     content,
			ContentType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
			FileName:    slug + ".pptx",
		}, nil
	case store.MediumGoogleDoc:
		return &Result{
			Content:     []byte(markdownToHTML(artifact.Content)),
			ContentType: "text/html",
			FileName:    slug + ".html",
		}, nil
	default:
		return &Result{
			Content:     []byte(artifact.Content),
			ContentType: "text/plain",
			FileName:    slug + ".txt",
		}, nil
	}
}

func artifactSlug(id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("artifact-%s", short)
}
