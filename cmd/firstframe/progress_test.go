package main

import (
	"image"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/firstframe/discover"
	"go.jacobcolvin.com/firstframe/extract"
	"go.jacobcolvin.com/firstframe/log"
)

func TestProgressModelUpdate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		msgs  []tea.Msg
		check func(*testing.T, *progressModel, tea.Cmd)
	}{
		"before start": {
			check: func(t *testing.T, m *progressModel, _ tea.Cmd) {
				t.Helper()

				assert.Contains(t, m.render(), "scanning...")
			},
		},
		"empty run": {
			msgs: []tea.Msg{startMsg{total: 0}},
			check: func(t *testing.T, m *progressModel, _ tea.Cmd) {
				t.Helper()

				assert.Contains(t, m.render(), "no video files found")
			},
		},
		"progress": {
			msgs: []tea.Msg{
				startMsg{total: 4},
				fileDoneMsg{name: "a.mp4", state: extract.StateSucceeded, index: 1, total: 4},
				fileDoneMsg{name: "b.avi", state: extract.StateFailed, index: 2, total: 4},
			},
			check: func(t *testing.T, m *progressModel, _ tea.Cmd) {
				t.Helper()

				assert.Equal(t, 2, m.done)
				assert.Equal(t, 1, m.failed)

				out := m.render()
				assert.Contains(t, out, " 2/4  50%")
				assert.Contains(t, out, "b.avi")
				assert.Contains(t, out, "(1 failed)")
			},
		},
		"thumbnail is kept until replaced": {
			msgs: []tea.Msg{
				startMsg{total: 2},
				fileDoneMsg{name: "a.mp4", thumb: "THUMB", state: extract.StateSucceeded, index: 1, total: 2},
				fileDoneMsg{name: "b.avi", state: extract.StateFailed, index: 2, total: 2},
			},
			check: func(t *testing.T, m *progressModel, _ tea.Cmd) {
				t.Helper()

				assert.Equal(t, "THUMB", m.thumb)
			},
		},
		"resize": {
			msgs: []tea.Msg{tea.WindowSizeMsg{Width: 120, Height: 40}},
			check: func(t *testing.T, m *progressModel, _ tea.Cmd) {
				t.Helper()

				assert.Equal(t, 120, m.width)
			},
		},
		"run done quits": {
			msgs: []tea.Msg{runDoneMsg{}},
			check: func(t *testing.T, _ *progressModel, cmd tea.Cmd) {
				t.Helper()

				require.NotNil(t, cmd)
				assert.IsType(t, tea.QuitMsg{}, cmd())
			},
		},
		"refresh reschedules": {
			msgs: []tea.Msg{refreshMsg{}},
			check: func(t *testing.T, _ *progressModel, cmd tea.Cmd) {
				t.Helper()

				assert.NotNil(t, cmd)
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := newProgressModel("/videos", nil, func() {})

			var cmd tea.Cmd

			for _, msg := range tc.msgs {
				_, cmd = m.Update(msg)
			}

			tc.check(t, m, cmd)
		})
	}
}

func TestProgressModelCancel(t *testing.T) {
	t.Parallel()

	for _, key := range []tea.KeyPressMsg{
		{Code: 'q', Text: "q"},
		{Code: 'c', Mod: tea.ModCtrl},
		{Code: tea.KeyEscape},
	} {
		t.Run(key.String(), func(t *testing.T) {
			t.Parallel()

			cancelled := false
			m := newProgressModel("/videos", nil, func() { cancelled = true })

			_, cmd := m.Update(key)

			assert.True(t, cancelled)
			assert.Nil(t, cmd, "the view stays up until the run stops")
			// The running decode is killed, not allowed to finish.
			assert.Contains(t, m.render(), "cancelling: stopping the current file")
			assert.NotContains(t, m.render(), "after the current file")
		})
	}
}

func TestProgressModelShowsLogTail(t *testing.T) {
	t.Parallel()

	tail := log.NewTail(2)
	_, err := tail.Write([]byte("one\ntwo\nthree\n"))
	require.NoError(t, err)

	m := newProgressModel("/videos", tail, func() {})
	out := m.render()

	assert.NotContains(t, out, "one")
	assert.Contains(t, out, "two")
	assert.Contains(t, out, "three")
}

func TestBar(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pct, width int
		wantFilled int
		wantWidth  int
	}{
		"empty":          {pct: 0, width: 20, wantFilled: 0, wantWidth: 20},
		"half":           {pct: 50, width: 20, wantFilled: 10, wantWidth: 20},
		"full":           {pct: 100, width: 20, wantFilled: 20, wantWidth: 20},
		"clamped pct":    {pct: 150, width: 20, wantFilled: 20, wantWidth: 20},
		"narrow minimum": {pct: 50, width: 2, wantFilled: 5, wantWidth: barMinWidth},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := bar(tc.pct, tc.width)

			assert.Equal(t, tc.wantFilled, strings.Count(got, "█"))
			assert.Equal(t, tc.wantWidth, lipgloss.Width(got))
		})
	}
}

func TestTeaObserver(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		msgs []tea.Msg
	)

	obs := teaObserver{send: func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()

		msgs = append(msgs, msg)
	}}

	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))

	obs.OnStart(2)
	obs.OnFileDone(1, 2, extract.Outcome{
		Video: discover.NewVideo("/videos/a.mp4"),
		State: extract.StateSucceeded,
		Frame: frame,
	})
	obs.OnFileDone(2, 2, extract.Outcome{
		Video: discover.NewVideo("/videos/b.avi"),
		State: extract.StateFailed,
	})
	obs.OnFinish(&extract.Summary{})

	require.Len(t, msgs, 3)
	assert.Equal(t, startMsg{total: 2}, msgs[0])

	first, ok := msgs[1].(fileDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "a.mp4", first.name)
	assert.Equal(t, thumbRows, strings.Count(first.thumb, "\n")+1)

	second, ok := msgs[2].(fileDoneMsg)
	require.True(t, ok)
	assert.Empty(t, second.thumb)
	assert.Equal(t, extract.StateFailed, second.state)
}
