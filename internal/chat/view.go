package chat

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/cvforge/cvchat/internal/client"
)

// View renders the chat view.
func (m Model) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m Model) renderContent() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.theme.accentStyle().Render(m.opts.Strings.Get("chat.title")))
	sections = append(sections, m.renderTranscript())

	if m.showGate {
		sections = append(sections, m.renderGate())
	} else {
		if m.showSuggest {
			sections = append(sections, m.renderSuggestions())
		}
		sections = append(sections, m.input.View())
	}

	sections = append(sections, m.renderStatus())
	return strings.Join(sections, "\n") + "\n"
}

func (m Model) renderTranscript() string {
	if m.transcript.Len() == 0 {
		return m.theme.hintStyle().Render("No messages yet.")
	}

	var rendered []string
	for _, msg := range m.transcript.Messages() {
		rendered = append(rendered, m.renderMessage(msg))
	}
	out := strings.Join(rendered, "\n")

	// Clip to the window height so the most recent messages stay visible.
	if m.height > 0 {
		avail := m.height - 8
		if avail < 3 {
			avail = 3
		}
		lines := strings.Split(out, "\n")
		if len(lines) > avail {
			lines = lines[len(lines)-avail:]
		}
		out = strings.Join(lines, "\n")
	}
	return out
}

func (m Model) renderMessage(msg Message) string {
	switch msg.Role {
	case RoleUser:
		return m.theme.userStyle().Render("❯ ") + msg.Content

	case RoleSystem:
		return m.theme.hintStyle().Render(msg.Content)
	}

	if msg.Kind == KindError {
		return m.theme.errorStyle().Render(msg.Content)
	}

	out := m.theme.assistantStyle().Render(msg.Content)
	if msg.Kind == KindResult && msg.Result != nil {
		if affordance := m.renderAffordance(msg.Result); affordance != "" {
			out += "\n" + affordance
		}
	}
	return out
}

// renderAffordance renders the action hint attached to a result message:
// the downloaded document, the editor target, or a file preview.
func (m Model) renderAffordance(result *client.CommandResult) string {
	switch result.Type {
	case client.TypePDF:
		doc, err := result.Document()
		if err != nil {
			return ""
		}
		return m.theme.accentStyle().Render("  ↓ "+doc.FileName) + " " +
			m.theme.hintStyle().Render(m.opts.Strings.Get("chat.download_hint")+" "+m.opts.DownloadDir)

	case client.TypeEdit:
		edit, err := result.Edit()
		if err != nil {
			return ""
		}
		return m.theme.accentStyle().Render(
			fmt.Sprintf("  ✎ %s: %s", m.opts.Strings.Get("chat.edit_hint"), edit.Section))

	case client.TypeFileContent:
		file, err := result.FileContent()
		if err != nil {
			return ""
		}
		lines := strings.Split(file.Content, "\n")
		truncated := false
		if len(lines) > filePreviewLines {
			lines = lines[:filePreviewLines]
			truncated = true
		}
		preview := m.theme.hintStyle().Render("  │ " + strings.Join(lines, "\n  │ "))
		if truncated {
			preview += m.theme.hintStyle().Render("\n  │ …")
		}
		return m.theme.accentStyle().Render("  ≡ "+file.Path) + "\n" + preview
	}
	return ""
}

func (m Model) renderSuggestions() string {
	var b strings.Builder
	b.WriteString(m.theme.hintStyle().Render(m.opts.Strings.Get("chat.suggestions_title")))
	for i, s := range m.suggestions {
		b.WriteString("\n")
		if i == m.suggestIndex {
			b.WriteString(m.theme.accentStyle().Render("▸ " + s))
		} else {
			b.WriteString("  " + s)
		}
	}
	return b.String()
}

func (m Model) renderGate() string {
	s := m.opts.Strings

	body := m.theme.accentStyle().Render(s.Get("auth.gate_title")) + "\n\n" +
		s.Get("auth.gate_body") + "\n" +
		m.theme.hintStyle().Render(s.Get("auth.gate_action"))

	if m.signingIn {
		body += "\n\n" + m.spin.View() + " " + s.Get("auth.signing_in") + "…"
	}
	return m.theme.gateStyle().Render(body)
}

func (m Model) renderStatus() string {
	if m.pending {
		return m.spin.View() + " " + m.theme.hintStyle().Render(m.opts.Strings.Get("chat.pending")+"…")
	}
	return m.theme.hintStyle().Render("enter send • tab complete • ctrl+s transcript • ctrl+c quit")
}
