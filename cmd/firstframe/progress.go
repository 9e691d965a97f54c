package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"go.jacobcolvin.com/firstframe/extract"
	"go.jacobcolvin.com/firstframe/log"
	"go.jacobcolvin.com/firstframe/preview"
	"go.jacobcolvin.com/firstframe/report"
)

const (
	tailLines     = 6
	thumbCols     = 32
	thumbRows     = 9
	defaultWidth  = 80
	barMinWidth   = 10
	refreshPeriod = 250 * time.Millisecond
)

type startMsg struct{ total int }

type fileDoneMsg struct {
	name  string
	thumb string
	state extract.State
	index int
	total int
}

type runDoneMsg struct{}

type refreshMsg struct{}

// teaObserver forwards extraction progress to a running [tea.Program].
type teaObserver struct {
	send func(tea.Msg)
}

func (o teaObserver) OnStart(total int) {
	o.send(startMsg{total: total})
}

func (o teaObserver) OnFileDone(index, total int, out extract.Outcome) {
	msg := fileDoneMsg{
		name:  out.Video.Name,
		state: out.State,
		index: index,
		total: total,
	}

	// Render here so the event loop never scales images.
	if out.Frame != nil {
		msg.thumb = preview.Thumbnail(out.Frame, thumbCols, thumbRows)
	}

	o.send(msg)
}

func (o teaObserver) OnFinish(*extract.Summary) {}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// progressModel is the bubbletea model for the interactive progress view.
type progressModel struct {
	tail       *log.Tail
	cancel     context.CancelFunc
	dir        string
	last       string
	lastState  extract.State
	thumb      string
	width      int
	total      int
	done       int
	failed     int
	started    bool
	cancelling bool
}

func newProgressModel(dir string, tail *log.Tail, cancel context.CancelFunc) *progressModel {
	return &progressModel{
		dir:    dir,
		tail:   tail,
		cancel: cancel,
		width:  defaultWidth,
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshPeriod, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// Init starts the periodic redraw that picks up new log lines.
func (m *progressModel) Init() tea.Cmd {
	return refresh()
}

// Update handles progress, resize, and cancel messages.
func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelling = true
			m.cancel()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case startMsg:
		m.started = true
		m.total = msg.total

	case fileDoneMsg:
		m.done = msg.index
		m.total = msg.total
		m.last = msg.name
		m.lastState = msg.state

		if msg.state == extract.StateFailed {
			m.failed++
		}

		if msg.thumb != "" {
			m.thumb = msg.thumb
		}

	case runDoneMsg:
		return m, tea.Quit

	case refreshMsg:
		return m, refresh()
	}

	return m, nil
}

// View renders the progress bar, the latest frame, and recent log lines.
func (m *progressModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m *progressModel) render() string {
	var sections []string

	sections = append(sections, titleStyle.Render("firstframe")+" "+m.dir)

	switch {
	case !m.started:
		sections = append(sections, dimStyle.Render("scanning..."))
	case m.total == 0:
		sections = append(sections, dimStyle.Render("no video files found"))
	default:
		pct := report.Percent(m.done, m.total)
		counts := fmt.Sprintf(" %d/%d %3d%%", m.done, m.total, pct)
		sections = append(sections, bar(pct, m.width-lipgloss.Width(counts))+counts)
	}

	if m.last != "" {
		status := okStyle.Render("ok")
		if m.lastState == extract.StateFailed {
			status = failStyle.Render("failed")
		}

		line := fmt.Sprintf("%s %s", status, m.last)
		if m.failed > 0 {
			line += failStyle.Render(fmt.Sprintf("  (%d failed)", m.failed))
		}

		sections = append(sections, line)
	}

	if m.thumb != "" {
		sections = append(sections, m.thumb)
	}

	if m.tail != nil {
		if lines := m.tail.Lines(); len(lines) > 0 {
			sections = append(sections, dimStyle.Render(strings.Join(lines, "\n")))
		}
	}

	help := "q: cancel"
	if m.cancelling {
		help = "cancelling: stopping the current file..."
	}

	sections = append(sections, dimStyle.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// bar draws a percentage bar width cells wide.
func bar(pct, width int) string {
	width = max(width, barMinWidth)
	filled := width * min(max(pct, 0), 100) / 100

	return barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// runWithProgress runs x over src while drawing progress on out. Quitting the
// view cancels the run after the current file.
func runWithProgress(
	ctx context.Context,
	x *extract.Extractor,
	src extract.Source,
	tail *log.Tail,
	in io.Reader,
	out io.Writer,
) (*extract.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		newProgressModel(src.Path(), tail, cancel),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	var (
		summary *extract.Summary
		runErr  error
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		summary, runErr = x.Run(ctx, src, teaObserver{send: p.Send})
		p.Send(runDoneMsg{})
	}()

	_, err := p.Run()

	// The run may still be going if the program failed.
	cancel()
	<-done

	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}

	return summary, runErr
}
