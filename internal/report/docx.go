package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/storycut/internal/media"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

// WriteCutSheet writes FINAL_<clip>_cutsheet.docx next to the source clip.
func (w *implWriter) WriteCutSheet(ctx context.Context, sheet CutSheet) (string, error) {
	edit := sheet.Edit
	path := filepath.Join(filepath.Dir(edit.Clip.Path), media.OutputPrefix+edit.Clip.Stem()+"_cutsheet.docx")

	doc, err := godocx.NewDocument()
	if err != nil {
		return "", fmt.Errorf("create docx: %w", err)
	}

	title := edit.Title
	if title == "" {
		title = edit.Clip.Name()
	}
	addStyledRun(doc.AddParagraph(""), title, true, 16)
	addLine(doc.AddParagraph(""), "Source: ", edit.Clip.Name())
	addLine(doc.AddParagraph(""), "Output: ", filepath.Base(sheet.Output))
	addLine(doc.AddParagraph(""), "Length: ", fmt.Sprintf("%s of %s", clock(edit.Duration()), clock(edit.Clip.Duration)))
	if edit.Reasoning != "" {
		addLine(doc.AddParagraph(""), "Why: ", edit.Reasoning)
	}

	addStyledRun(doc.AddParagraph(""), "Segments", true, 14)
	for i, seg := range edit.Segments {
		out := edit.OutputStart(i)
		addStyledRun(doc.AddParagraph(""), fmt.Sprintf("%d. %s", i+1, seg.Topic), true, fontSize)
		addLine(doc.AddParagraph(""), "Source: ", fmt.Sprintf("%s - %s", clock(seg.Start), clock(seg.End)))
		addLine(doc.AddParagraph(""), "Output: ", fmt.Sprintf("%s - %s", clock(out), clock(out+seg.Duration())))
		if len(seg.Tags) > 0 {
			addLine(doc.AddParagraph(""), "Tags: ", strings.Join(seg.Tags, ", "))
		}
		for _, ins := range sheet.Inserts {
			if ins.Segment != i {
				continue
			}
			addLine(doc.AddParagraph(""), "B-roll: ", fmt.Sprintf("%s at %s for %s (score %.2f)",
				filepath.Base(ins.Asset.Path), clock(out+ins.Offset), ins.Duration, ins.Score))
		}
		if seg.Summary != "" {
			addText(doc.AddParagraph(""), seg.Summary)
		}
	}

	if len(sheet.Cues) > 0 {
		addStyledRun(doc.AddParagraph(""), "Captions", true, 14)
		for _, cue := range sheet.Cues {
			addLine(doc.AddParagraph(""), clock(cue.Start)+"  ", cue.Text)
		}
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".partial")
	defer os.Remove(tmp)
	if err := doc.SaveTo(tmp); err != nil {
		return "", fmt.Errorf("save docx: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("save docx: %w", err)
	}

	w.logger.Info(ctx, "Cut sheet written: %s", path)
	return path, nil
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addLine(p *docx.Paragraph, label, value string) {
	p.AddText(label).Font(fontName).Size(fontSize).Color("000000").Bold(true)
	p.AddText(value).Font(fontName).Size(fontSize).Color("000000")
}

func addText(p *docx.Paragraph, text string) {
	p.AddText(text).Font(fontName).Size(fontSize).Color("444444")
}

// clock formats d as mm:ss.mmm, or h:mm:ss.mmm past an hour.
func clock(d time.Duration) string {
	ms := d.Milliseconds()
	h := ms / 3600000
	m := ms / 60000 % 60
	s := ms / 1000 % 60
	ms %= 1000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, s, ms)
}
