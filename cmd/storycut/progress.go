package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nguyentantai21042004/storycut/internal/models"
	"github.com/nguyentantai21042004/storycut/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// lineObserver prints one styled line per event.
type lineObserver struct {
	mu  sync.Mutex
	out io.Writer
}

func newLineObserver(out io.Writer) *lineObserver {
	return &lineObserver{out: out}
}

func (o *lineObserver) printf(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.out, format, args...)
}

func (o *lineObserver) OnStart(runID string, clips []string) {
	o.printf("%s\n%s\n", titleStyle.Render("storycut run "+runID), infoStyle.Render(fmt.Sprintf("%d clips queued", len(clips))))
}

func (o *lineObserver) OnStage(clip string, stage pipeline.Stage) {
	o.printf("%s\n", infoStyle.Render(fmt.Sprintf("  %s: %s", clip, stage)))
}

func (o *lineObserver) OnClipDone(res models.ClipResult) {
	o.printf("%s\n", resultLine(res))
	for _, n := range res.Notes {
		o.printf("%s\n", infoStyle.Render("      note: "+n))
	}
}

func (o *lineObserver) OnFinish(rep models.RunReport) {
	o.printf("%s\n", summaryLine(rep))
}

// resultLine renders a finished clip for both front ends.
func resultLine(res models.ClipResult) string {
	switch res.Status {
	case models.StatusSucceeded:
		line := fmt.Sprintf("  ✓ %s -> %s (%s, %d segments, %d captions, %d overlays)",
			res.Clip, res.Output, res.Duration.Round(100*time.Millisecond), res.Segments, res.Cues, res.Overlays)
		if len(res.Notes) > 0 {
			return warnStyle.Render(line)
		}
		return statusStyle.Render(line)
	case models.StatusSkipped:
		return infoStyle.Render(fmt.Sprintf("  - %s skipped: %s", res.Clip, res.Reason))
	default:
		return errorStyle.Render(fmt.Sprintf("  ✗ %s failed [%s]: %s", res.Clip, res.ErrorKind, res.Reason))
	}
}

func summaryLine(rep models.RunReport) string {
	s := rep.Summary
	parts := []string{
		fmt.Sprintf("%d succeeded", s.Succeeded),
		fmt.Sprintf("%d failed", s.Failed),
		fmt.Sprintf("%d skipped", s.Skipped),
	}
	if s.WithNotes > 0 {
		parts = append(parts, fmt.Sprintf("%d with notes", s.WithNotes))
	}
	text := fmt.Sprintf("Done in %s: %s", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Second), strings.Join(parts, ", "))
	if s.Failed > 0 {
		return errorStyle.Render(text)
	}
	return highlightStyle.Render(text)
}
