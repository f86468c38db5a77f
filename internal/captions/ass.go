package captions

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

const (
	colorWhite     = "&H00FFFFFF"
	colorHighlight = "&H0000FFFF"
	colorHook      = "&H0000D7FF"
	colorPunch     = "&H003C3CFF"
)

// WriteASS writes one event per word: the cue text with the current word
// highlighted, shown from that word's start until the next word starts.
func (s *implSynchronizer) WriteASS(w io.Writer, clip models.Clip, cues []models.CaptionCue) error {
	width, height := clip.Width, clip.Height
	if width == 0 || height == 0 {
		width, height = 1080, 1920
	}
	marginV := height * 2 / 5

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "[Script Info]")
	fmt.Fprintln(bw, "Title: storycut captions")
	fmt.Fprintln(bw, "ScriptType: v4.00+")
	fmt.Fprintf(bw, "PlayResX: %d\n", width)
	fmt.Fprintf(bw, "PlayResY: %d\n", height)
	fmt.Fprintln(bw, "WrapStyle: 2")
	fmt.Fprintln(bw, "")
	fmt.Fprintln(bw, "[V4+ Styles]")
	fmt.Fprintln(bw, "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding")
	for _, st := range []struct {
		name  models.CaptionStyle
		color string
		scale int
	}{
		{models.StyleDefault, colorWhite, 100},
		{models.StyleHook, colorHook, 115},
		{models.StylePunch, colorPunch, 108},
	} {
		fmt.Fprintf(bw, "Style: %s,%s,%d,%s,%s,&H00000000,&H80000000,-1,0,0,0,%d,%d,0,0,1,5,2,2,60,60,%d,1\n",
			styleName(st.name), s.cfg.Font, s.cfg.FontSize, st.color, st.color, st.scale, st.scale, marginV)
	}
	fmt.Fprintln(bw, "")
	fmt.Fprintln(bw, "[Events]")
	fmt.Fprintln(bw, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text")

	for _, cue := range cues {
		for i, word := range cue.Words {
			start := cue.Start + word.Offset
			if i == 0 {
				start = cue.Start
			}
			end := cue.End
			if i+1 < len(cue.Words) {
				end = cue.Start + cue.Words[i+1].Offset
			}
			if end <= start {
				continue
			}
			fmt.Fprintf(bw, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
				formatASSTimestamp(start), formatASSTimestamp(end), styleName(cue.Style), highlight(cue.Words, i))
		}
	}
	return bw.Flush()
}

func styleName(st models.CaptionStyle) string {
	switch st {
	case models.StyleHook:
		return "Hook"
	case models.StylePunch:
		return "Punch"
	default:
		return "Default"
	}
}

func highlight(words []models.WordTiming, current int) string {
	parts := make([]string, len(words))
	for i, w := range words {
		text := escapeASS(w.Text)
		if i == current {
			text = fmt.Sprintf("{\\c%s&}%s{\\r}", colorHighlight, text)
		}
		parts[i] = text
	}
	return strings.Join(parts, " ")
}

// escapeASS keeps override braces and line breaks in spoken text literal.
func escapeASS(s string) string {
	r := strings.NewReplacer("{", "(", "}", ")", "\\", "/", "\n", " ")
	return r.Replace(s)
}

// formatASSTimestamp formats d as h:mm:ss.cc.
func formatASSTimestamp(d time.Duration) string {
	cs := d.Round(10*time.Millisecond) / (10 * time.Millisecond)
	h := cs / 360000
	m := (cs / 6000) % 60
	sec := (cs / 100) % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, sec, cs%100)
}
