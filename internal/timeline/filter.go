package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

// graph is an ffmpeg filter_complex over the source clip (input 0) and one
// extra input per B-roll entry.
type graph struct {
	inputs  []string
	filters []string
	video   string
	audio   string
}

// buildGraph cuts and concatenates the base entries, punches in on every
// other long segment, lays B-roll on top and burns the subtitle file last.
func buildGraph(tl models.Timeline, rc config.RenderConfig, subtitles string) graph {
	var g graph
	clip := tl.Clip
	fade := config.Seconds(rc.FadeSeconds)

	base := tl.Layer(models.LayerBase)
	var concatIn strings.Builder
	for k, e := range base {
		v := fmt.Sprintf("[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS", secs(e.SourceStart), secs(e.SourceEnd))
		if zoomed(k, e, clip, rc) {
			v += fmt.Sprintf(",scale=%d:%d,crop=%d:%d",
				even(float64(clip.Width)*rc.ZoomFactor), even(float64(clip.Height)*rc.ZoomFactor), clip.Width, clip.Height)
		}
		g.filters = append(g.filters, fmt.Sprintf("%s,setsar=1[v%d]", v, k))
		fmt.Fprintf(&concatIn, "[v%d]", k)

		if clip.HasAudio {
			d := min(fade, e.Duration()/2)
			g.filters = append(g.filters, fmt.Sprintf(
				"[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS,afade=t=in:st=0:d=%s,afade=t=out:st=%s:d=%s[a%d]",
				secs(e.SourceStart), secs(e.SourceEnd), secs(d), secs(e.Duration()-d), secs(d), k))
			fmt.Fprintf(&concatIn, "[a%d]", k)
		}
	}

	if clip.HasAudio {
		g.filters = append(g.filters, fmt.Sprintf("%sconcat=n=%d:v=1:a=1[base][outa]", concatIn.String(), len(base)))
		g.audio = "outa"
	} else {
		g.filters = append(g.filters, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[base]", concatIn.String(), len(base)))
	}
	cur := "base"

	for j, e := range tl.Layer(models.LayerBroll) {
		g.inputs = append(g.inputs, e.Source)
		b := fmt.Sprintf("[%d:v]trim=duration=%s,setpts=PTS-STARTPTS+%s/TB", j+1, secs(e.Duration()), secs(e.Start))
		if clip.Width > 0 && clip.Height > 0 {
			b += fmt.Sprintf(",scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
				clip.Width, clip.Height, clip.Width, clip.Height)
		}
		g.filters = append(g.filters,
			fmt.Sprintf("%s,setsar=1[b%d]", b, j),
			fmt.Sprintf("[%s][b%d]overlay=eof_action=pass:enable='between(t,%s,%s)'[o%d]", cur, j, secs(e.Start), secs(e.End), j),
		)
		cur = fmt.Sprintf("o%d", j)
	}

	if subtitles != "" {
		g.filters = append(g.filters, fmt.Sprintf("[%s]ass=%s[outv]", cur, subtitles))
		cur = "outv"
	}
	g.video = cur
	return g
}

func joinFilters(filters []string) string {
	return strings.Join(filters, ";")
}

func zoomed(k int, e models.TimelineEntry, clip models.Clip, rc config.RenderConfig) bool {
	return k%2 == 1 &&
		rc.ZoomFactor > 1 &&
		e.Duration() >= config.Seconds(rc.ZoomMinSecs) &&
		clip.Width > 0 && clip.Height > 0
}

func secs(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func even(f float64) int {
	n := int(math.Round(f))
	return n - n%2
}
