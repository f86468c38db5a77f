package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nguyentantai21042004/storycut/internal/models"
	"github.com/nguyentantai21042004/storycut/internal/pipeline"
)

func sampleReport() models.RunReport {
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	rep := models.RunReport{
		ID:         "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Results: []models.ClipResult{
			{Clip: "a.mp4", Status: models.StatusSucceeded, Output: "FINAL_a_hook.mp4", Segments: 3, Cues: 12, Overlays: 1},
			{Clip: "b.mp4", Status: models.StatusFailed, ErrorKind: models.KindCuration, Reason: "quota"},
			{Clip: "c.txt.mp4", Status: models.StatusSkipped, Reason: "output already exists"},
		},
	}
	rep.Finalize()
	return rep
}

func TestLineObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := newLineObserver(&buf)
	rep := sampleReport()

	obs.OnStart(rep.ID, []string{"a.mp4", "b.mp4", "c.txt.mp4"})
	obs.OnStage("a.mp4", pipeline.StageCurate)
	for _, res := range rep.Results {
		obs.OnClipDone(res)
	}
	obs.OnFinish(rep)

	out := buf.String()
	for _, want := range []string{
		"storycut run run-1",
		"3 clips queued",
		"a.mp4: curate",
		"a.mp4 -> FINAL_a_hook.mp4",
		"b.mp4 failed [curation_error]: quota",
		"c.txt.mp4 skipped: output already exists",
		"1 succeeded, 1 failed, 1 skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProgressModel(t *testing.T) {
	cancelled := 0
	var m tea.Model = newProgressModel(func() { cancelled++ })

	m, _ = m.Update(runStartedMsg{runID: "run-1", clips: []string{"a.mp4", "b.mp4"}})
	m, _ = m.Update(stageMsg{clip: "a.mp4", stage: pipeline.StageRender})

	view := m.View()
	if !strings.Contains(view, "a.mp4: render") || !strings.Contains(view, "b.mp4: queued") {
		t.Errorf("unexpected view:\n%s", view)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cancelled != 1 {
		t.Errorf("cancel called %d times, want 1", cancelled)
	}
	if cmd != nil {
		t.Error("program should keep running until the run returns")
	}
	if !strings.Contains(m.View(), "Cancelling") {
		t.Errorf("view should show cancellation:\n%s", m.View())
	}

	rep := sampleReport()
	m, _ = m.Update(clipDoneMsg{result: rep.Results[0]})
	if strings.Contains(m.View(), "a.mp4: render") {
		t.Error("finished clip should not show its last stage")
	}

	m, cmd = m.Update(runDoneMsg{report: rep})
	if cmd == nil {
		t.Fatal("run completion should quit the program")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
	if !strings.Contains(m.View(), "1 failed") {
		t.Errorf("summary missing from view:\n%s", m.View())
	}
}

func TestOptions(t *testing.T) {
	c := commonFlags{noBroll: true}
	opts := c.options()
	if !opts.Captions || opts.Broll || opts.Force {
		t.Errorf("options() = %+v", opts)
	}
}
