package document

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Yu Gothic"
	fontSize  = 13
	fontColor = "000000"
	titleSize = 16
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*・]\s*(.+)$`)
	reRule    = regexp.MustCompile(`^(-{3,}|\*{3,}|_{3,})$`)
)

// span is a run of text sharing one weight.
type span struct {
	text string
	bold bool
}

// splitBold breaks a line on **bold** markers. Leftover inline markup is dropped.
func splitBold(line string) []span {
	var out []span
	add := func(s string, bold bool) {
		if s = stripInline(s); s != "" {
			out = append(out, span{text: s, bold: bold})
		}
	}

	last := 0
	for _, loc := range reBold.FindAllStringSubmatchIndex(line, -1) {
		add(line[last:loc[0]], false)
		add(line[loc[2]:loc[3]], true)
		last = loc[1]
	}
	add(line[last:], false)
	return out
}

func stripInline(s string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
}

func headingSize(level int) uint64 {
	if level < 1 {
		return fontSize
	}
	if size := titleSize - level + 1; size > fontSize {
		return uint64(size)
	}
	return fontSize
}

// minutesWriter lays summary markdown out as meeting minutes.
type minutesWriter struct {
	doc    *docx.RootDoc
	inCode bool
}

func (w *minutesWriter) runs(p *docx.Paragraph, spans []span, size uint64) {
	for _, s := range spans {
		run := p.AddText(s.text).Font(fontName).Size(size).Color(fontColor)
		if s.bold {
			run.Bold(true)
		}
	}
}

func (w *minutesWriter) line(raw string) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		w.inCode = !w.inCode
		return
	}
	if trimmed == "" || reRule.MatchString(trimmed) {
		return
	}

	p := w.doc.AddParagraph("")
	switch {
	case w.inCode:
		w.runs(p, []span{{text: trimmed}}, fontSize)
	case reHeading.MatchString(trimmed):
		m := reHeading.FindStringSubmatch(trimmed)
		w.runs(p, []span{{text: stripInline(m[2]), bold: true}}, headingSize(len(m[1])))
	case reBullet.MatchString(trimmed):
		m := reBullet.FindStringSubmatch(trimmed)
		w.runs(p, append([]span{{text: "• "}}, splitBold(m[1])...), fontSize)
	default:
		w.runs(p, splitBold(trimmed), fontSize)
	}
}

// writeDocx renders markdown into a docx file at outputPath, headed by title.
func writeDocx(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	w := &minutesWriter{doc: doc}
	w.runs(doc.AddParagraph(""), []span{{text: title, bold: true}}, titleSize)
	for _, l := range strings.Split(markdown, "\n") {
		w.line(l)
	}

	return doc.SaveTo(outputPath)
}
