package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// slideData is one slide parsed out of the Markdown source.
type slideData struct {
	title      string
	bullets    []string
	paragraphs []string
}

var tableSeparatorPattern = regexp.MustCompile(`^\|[\s\-|]+\|$`)

// parseSlides segments Markdown at # and ## headings. Bullets and table
// rows become bullet items; other text becomes paragraphs. Content before
// the first heading is dropped, matching a deck whose first line is its
// title.
func parseSlides(markdown string) []slideData {
	var slides []slideData
	var current *slideData

	flush := func() {
		if current != nil {
			slides = append(slides, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "## "):
			flush()
			current = &slideData{title: strings.ReplaceAll(trimmed[3:], "**", "")}
		case strings.HasPrefix(trimmed, "# "):
			flush()
			current = &slideData{title: strings.ReplaceAll(trimmed[2:], "**", "")}
		case (strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ")) && current != nil:
			current.bullets = append(current.bullets, emphasisReplacer.Replace(trimmed[2:]))
		case strings.HasPrefix(trimmed, "|") && current != nil:
			if !tableSeparatorPattern.MatchString(trimmed) {
				current.bullets = append(current.bullets, strings.TrimSpace(strings.ReplaceAll(trimmed, "|", "  ")))
			}
		case trimmed != "" && current != nil && !strings.HasPrefix(trimmed, "```"):
			current.paragraphs = append(current.paragraphs, emphasisReplacer.Replace(trimmed))
		}
	}
	flush()
	return slides
}

// renderPPTX writes a minimal OOXML presentation. Zip entries carry no
// timestamps so output is byte-identical across runs.
func renderPPTX(markdown string) ([]byte, error) {
	slides := parseSlides(markdown)
	if len(slides) == 0 {
		fallback := markdown
		if len(fallback) > 2000 {
			fallback = fallback[:2000]
		}
		slides = []slideData{{title: "TeachAssist Export", paragraphs: []string{fallback}}}
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	write := func(name, content string) error {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		header.Modified = exportTimestamp
		entry, err := w.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		return nil
	}

	if err := write("[Content_Types].xml", contentTypesXML(len(slides))); err != nil {
		return nil, err
	}
	if err := write("_rels/.rels", rootRelsXML); err != nil {
		return nil, err
	}
	if err := write("ppt/presentation.xml", presentationXML(len(slides))); err != nil {
		return nil, err
	}
	if err := write("ppt/_rels/presentation.xml.rels", presentationRelsXML(len(slides))); err != nil {
		return nil, err
	}
	if err := write("ppt/slideMasters/slideMaster1.xml", slideMasterXML); err != nil {
		return nil, err
	}
	if err := write("ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML); err != nil {
		return nil, err
	}
	if err := write("ppt/slideLayouts/slideLayout1.xml", slideLayoutXML); err != nil {
		return nil, err
	}
	if err := write("ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML); err != nil {
		return nil, err
	}
	for i, slide := range slides {
		n := i + 1
		if err := write(fmt.Sprintf("ppt/slides/slide%d.xml", n), slideXML(slide)); err != nil {
			return nil, err
		}
		if err := write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRelsXML); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close pptx: %w", err)
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func contentTypesXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/></Relationships>`

func presentationXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+1)
	}
	b.WriteString(`</p:sldIdLst>`)
	b.WriteString(`<p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slideCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const slideMasterXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld><p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/><p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst></p:sldMaster>`

const slideMasterRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/></Relationships>`

const slideLayoutXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" type="blank"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld><p:clrMapOvr><a:overrideClrMapping bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/></p:clrMapOvr></p:sldLayout>`

const slideLayoutRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/></Relationships>`

const slideRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/></Relationships>`

func slideXML(slide slideData) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	shapeID := 2
	if slide.title != "" {
		textBox(&b, shapeID, "Title", 457200, 274638, 8229600, 731520, []run{{text: slide.title, size: 2400, bold: true}})
		shapeID++
	}
	var bodyRuns []run
	for _, bullet := range slide.bullets {
		bodyRuns = append(bodyRuns, run{text: bullet, size: 1400, bullet: true})
	}
	for _, paragraph := range slide.paragraphs {
		bodyRuns = append(bodyRuns, run{text: paragraph, size: 1200})
	}
	if len(bodyRuns) > 0 {
		textBox(&b, shapeID, "Body", 457200, 1188720, 8229600, 4114800, bodyRuns)
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

type run struct {
	text   string
	size   int
	bold   bool
	bullet bool
}

// textBox emits a text box shape with one paragraph per run. Offsets and
// extents are in EMUs.
func textBox(b *strings.Builder, id int, name string, x, y, w, h int, runs []run) {
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, w, h)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square" anchor="t"/><a:lstStyle/>`)
	for _, r := range runs {
		b.WriteString(`<a:p>`)
		if r.bullet {
			b.WriteString("<a:pPr><a:buChar char=\"•\"/></a:pPr>")
		} else {
			b.WriteString(`<a:pPr><a:buNone/></a:pPr>`)
		}
		boldAttr := ""
		if r.bold {
			boldAttr = ` b="1"`
		}
		fmt.Fprintf(b, `<a:r><a:rPr lang="en-US" sz="%d"%s/><a:t>%s</a:t></a:r>`, r.size, boldAttr, xmlEscape(r.text))
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
}
