package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nguyentantai21042004/storycut/internal/models"
	"github.com/nguyentantai21042004/storycut/internal/pipeline"
)

// Messages sent from pipeline workers to the program.
type (
	runStartedMsg struct {
		runID string
		clips []string
	}
	stageMsg struct {
		clip  string
		stage pipeline.Stage
	}
	clipDoneMsg struct {
		result models.ClipResult
	}
	runDoneMsg struct {
		report models.RunReport
		err    error
	}
)

// teaObserver forwards pipeline progress to a bubbletea program.
type teaObserver struct {
	send func(tea.Msg)
}

func (o teaObserver) OnStart(runID string, clips []string) {
	o.send(runStartedMsg{runID: runID, clips: clips})
}

func (o teaObserver) OnStage(clip string, stage pipeline.Stage) {
	o.send(stageMsg{clip: clip, stage: stage})
}

func (o teaObserver) OnClipDone(res models.ClipResult) {
	o.send(clipDoneMsg{result: res})
}

// OnFinish is covered by runDoneMsg, which also carries the error.
func (o teaObserver) OnFinish(models.RunReport) {}

type progressModel struct {
	runID      string
	clips      []string
	stages     map[string]pipeline.Stage
	results    map[string]models.ClipResult
	report     *models.RunReport
	err        error
	cancel     func()
	cancelling bool
}

func newProgressModel(cancel func()) progressModel {
	return progressModel{
		stages:  make(map[string]pipeline.Stage),
		results: make(map[string]models.ClipResult),
		cancel:  cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.report != nil || m.err != nil {
				return m, tea.Quit
			}
			// Clips in flight finish their current stage first.
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
		}

	case runStartedMsg:
		m.runID = msg.runID
		m.clips = msg.clips

	case stageMsg:
		m.stages[msg.clip] = msg.stage

	case clipDoneMsg:
		m.results[msg.result.Clip] = msg.result
		delete(m.stages, msg.result.Clip)

	case runDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			rep := msg.report
			m.report = &rep
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	title := "storycut"
	if m.runID != "" {
		title += " run " + m.runID
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	for _, clip := range m.clips {
		if res, ok := m.results[clip]; ok {
			b.WriteString(resultLine(res))
		} else if stage, ok := m.stages[clip]; ok {
			b.WriteString(statusStyle.Render(fmt.Sprintf("  … %s: %s", clip, stage)))
		} else {
			b.WriteString(infoStyle.Render("  · " + clip + ": queued"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.report != nil:
		b.WriteString(summaryLine(*m.report))
	case m.cancelling:
		b.WriteString(warnStyle.Render("Cancelling, waiting for running stages..."))
	default:
		b.WriteString(infoStyle.Render(fmt.Sprintf("%d/%d done | Press 'q' or Ctrl+C to cancel", len(m.results), len(m.clips))))
	}
	b.WriteString("\n")
	return b.String()
}

// runWithTUI runs fn under a bubbletea progress view. cancel stops the run.
func runWithTUI(cancel func(), fn func(pipeline.Observer) (models.RunReport, error)) (models.RunReport, error) {
	program := tea.NewProgram(newProgressModel(cancel))

	type outcome struct {
		report models.RunReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		rep, err := fn(teaObserver{send: program.Send})
		done <- outcome{report: rep, err: err}
		program.Send(runDoneMsg{report: rep, err: err})
	}()

	// Without a terminal Run fails early and the run completes silently.
	_, _ = program.Run()
	out := <-done
	return out.report, out.err
}
