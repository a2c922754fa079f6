package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/tunedeck/internal/playback"
	"github.com/desertthunder/tunedeck/internal/shared"
)

const (
	connectingText  = "connecting to Spotify..."
	emptyResultText = "No results found. Try another search."
	progressWidth   = 40
)

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("tunedeck"))
	b.WriteString("\n")
	b.WriteString("Log in with Spotify to start listening.\n\n")
	if m.opts.LoginURL != "" {
		b.WriteString(styles.help.Render(m.opts.LoginURL))
		b.WriteString("\n\n")
	}
	if m.banner != "" {
		b.WriteString(styles.err.Render(m.banner))
		b.WriteString("\n\n")
	} else if m.note != "" {
		b.WriteString(styles.ok.Render(m.note))
		b.WriteString("\n\n")
	}
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.quit}))
	return b.String()
}

func (m *Model) renderMain() string {
	sections := []string{m.renderHeader()}
	if line := m.renderBanner(); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.renderBody(), m.renderNowPlaying(), m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	tabs := make([]string, 0, len(views))
	for _, v := range views {
		if v == m.view {
			tabs = append(tabs, styles.activeTab.Render(v.String()))
			continue
		}
		tabs = append(tabs, styles.tab.Render(v.String()))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.profile != nil {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", styles.avatar.Render(m.profile.Initial()))
		if !m.profile.Premium() {
			header += "  " + styles.warn.Render("Premium is required for playback")
		}
	}
	return header
}

func (m *Model) renderBanner() string {
	switch {
	case m.banner != "":
		return styles.err.Render(m.banner)
	case m.connecting():
		return styles.warn.Render(connectingText)
	case m.note != "":
		return styles.ok.Render(m.note)
	}
	return ""
}

func (m *Model) renderBody() string {
	switch m.view {
	case Home:
		tabs := []string{}
		for _, h := range []HomeView{All, Music} {
			if h == m.home {
				tabs = append(tabs, styles.ok.Render("["+h.String()+"]"))
				continue
			}
			tabs = append(tabs, styles.help.Render(" "+h.String()+" "))
		}
		return strings.Join(tabs, " ") + "\n" + m.activeList().View()
	case Search:
		body := m.input.View() + "\n"
		switch {
		case m.searching:
			body += styles.help.Render("Searching...")
		case m.empty:
			body += styles.help.Render(emptyResultText)
		case len(m.tracks) > 0:
			body += m.results.View()
		}
		return body
	case Library:
		if len(m.library.Items()) == 0 {
			return styles.title.Render(Library.String()) + "\n" + styles.help.Render("Nothing played yet.")
		}
		return m.library.View()
	case Create:
		return styles.title.Render(Create.String()) + "\n" + "This page is under construction."
	}
	return ""
}

func (m *Model) renderNowPlaying() string {
	track := m.state.CurrentTrack()
	if track == nil {
		return styles.bar.Render(styles.help.Render("Nothing playing"))
	}

	icon := "▶"
	if m.state.Paused {
		icon = "⏸"
	}
	line := fmt.Sprintf("%s %s · %s  %s / %s", icon, track.Name, track.ArtistNames(),
		shared.FormatDuration(m.position()), shared.FormatDuration(m.state.Duration))
	return styles.bar.Render(line)
}

func (m *Model) renderPlayer() string {
	var b strings.Builder
	track := m.state.CurrentTrack()
	if track == nil {
		b.WriteString(styles.title.Render("Nothing playing"))
		b.WriteString("\n")
	} else {
		b.WriteString(styles.title.Render(track.Name))
		b.WriteString("\n")
		b.WriteString(track.ArtistNames())
		b.WriteString("\n")
		if track.Album.Name != "" {
			b.WriteString(styles.help.Render(track.Album.Name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		pos, dur := m.position(), m.state.Duration
		fmt.Fprintf(&b, "%s %s %s\n", shared.FormatDuration(pos), progressBar(pos, dur, progressWidth), shared.FormatDuration(dur))
	}

	controls := "⏮  ⏯  ⏭"
	if m.state.Playing() {
		controls = "⏮  ⏸  ⏭"
	}
	b.WriteString("\n")
	b.WriteString(controls)
	b.WriteString("\n\n")

	if line := m.renderBanner(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView([]key.Binding{
		m.keys.toggle, m.keys.previous, m.keys.next, m.keys.rewind, m.keys.forward, m.keys.back,
	}))
	return b.String()
}

func (m *Model) renderHelp() string {
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}

	bindings := []key.Binding{}
	switch m.view {
	case Home:
		bindings = append(bindings, m.keys.enter, m.keys.all, m.keys.music)
	case Search:
		if m.input.Focused() {
			return m.help.ShortHelpView([]key.Binding{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
				m.keys.back,
			})
		}
		bindings = append(bindings, m.keys.search, m.keys.enter, m.keys.save)
	case Library:
		bindings = append(bindings, m.keys.enter, m.keys.refresh)
	}
	if m.status == playback.Ready {
		bindings = append(bindings, m.keys.toggle, m.keys.player)
	}
	bindings = append(bindings, m.keys.nextView, m.keys.help, m.keys.quit)
	return m.help.ShortHelpView(bindings)
}

// progressBar draws pos/dur as a fixed-width bar.
func progressBar(pos, dur, width int) string {
	filled := 0
	if dur > 0 {
		filled = min(pos*width/dur, width)
	}
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}
