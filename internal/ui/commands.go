package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitForNotification() tea.Cmd {
	ch := m.notifications
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return notificationMsg{closed: true}
		}
		return notificationMsg{notification: n}
	}
}

// runSearch takes the generation now, on the update loop, so results are ordered by submission.
func (m *Model) runSearch(query string) tea.Cmd {
	gen := m.ctrl.BeginSearch()
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		return searchMsg{result: m.ctrl.Search(ctx, gen, query)}
	}
}

func (m *Model) loadHome() tea.Cmd {
	return tea.Batch(m.loadFeatured(), m.loadMusic(), m.loadProfile())
}

func (m *Model) loadFeatured() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		featured, err := m.ctrl.Featured(ctx)
		return featuredMsg{featured: featured, err: err}
	}
}

func (m *Model) loadMusic() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		return musicMsg{results: m.ctrl.Music(ctx)}
	}
}

func (m *Model) loadProfile() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		profile, err := m.ctrl.Profile(ctx)
		return profileMsg{profile: profile, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := m.ctrl.History(historyLimit)
		return historyMsg{records: records, err: err}
	}
}

// action runs fn off the update loop and reports note on success.
func (m *Model) action(note string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		if err := fn(ctx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{note: note}
	}
}

func (m *Model) openLogin() tea.Cmd {
	url, open := m.opts.LoginURL, m.opts.Open
	if open == nil || url == "" {
		return nil
	}
	return func() tea.Msg {
		if err := open(url); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{note: "Opened the login page in your browser"}
	}
}
