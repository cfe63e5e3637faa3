// Package tui renders an assistant session in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"account-assistant/internal/domain"
	"account-assistant/internal/usecase"
)

const (
	headerHeight = 2
	footerHeight = 5
	minWidth     = 40
)

// Session is the slice of usecase.Session the UI drives.
type Session interface {
	Entries() []domain.ChatEntry
	Pending() bool
	ReportPending() bool
	Account() string
	Accounts() []string
	SelectAccount(accountID string) error
	BeginAsk(question string) (*usecase.PendingAsk, error)
	SubmitReport(ctx context.Context, in usecase.ReportInput) (usecase.ReportOutput, error)
	Clear()
	QuickActions() []usecase.QuickAction
	ShowQuickActions() bool
}

type mode int

const (
	modeChat mode = iota
	modeReport
	modeConfirmClear
)

type askResolvedMsg struct {
	out usecase.AskOutput
}

type reportDoneMsg struct {
	out usecase.ReportOutput
	err error
}

type Model struct {
	ctx     context.Context
	session Session
	mode    mode

	input       textinput.Model
	description textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	categories  []domain.ProblemCategory
	categoryIdx int
	alert       string
	notice      string
	submitting  bool

	width  int
	height int
}

func New(ctx context.Context, session Session) Model {
	input := textinput.New()
	input.Placeholder = "Ask about your account or report a problem..."
	input.CharLimit = 500
	input.Focus()

	description := textinput.New()
	description.Placeholder = "Describe your issue..."
	description.CharLimit = domain.MaxDescriptionLength

	m := Model{
		ctx:         ctx,
		session:     session,
		input:       input,
		description: description,
		viewport:    viewport.New(80, 20),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		categories:  domain.ProblemCategories(),
		categoryIdx: -1,
		width:       80,
		height:      20 + headerHeight + footerHeight,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, minWidth)
		m.height = msg.Height
		m.viewport.Width = m.width
		m.viewport.Height = max(m.height-headerHeight-footerHeight, 3)
		m.input.Width = m.width - 4
		m.description.Width = m.width - 4
		m.refresh()
		return m, nil

	case askResolvedMsg:
		m.refresh()
		return m, nil

	case reportDoneMsg:
		return m.handleReportDone(msg)

	case spinner.TickMsg:
		if !m.session.Pending() && !m.submitting && !m.session.ReportPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeReport:
			return m.updateReport(msg)
		case modeConfirmClear:
			return m.updateConfirmClear(msg)
		default:
			return m.updateChat(msg)
		}
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "enter":
		return m.send(m.input.Value())
	case "ctrl+r":
		return m.openReport()
	case "ctrl+l":
		m.mode = modeConfirmClear
		return m, nil
	case "tab":
		m.cycleAccount()
		return m, nil
	case "f1", "f2", "f3", "f4":
		return m.quickAction(int(msg.String()[1] - '1'))
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send handles a line typed in the input box: either an /account command or
// a question for the assistant.
func (m Model) send(line string) (tea.Model, tea.Cmd) {
	line = strings.TrimSpace(line)
	if line == "/account" || strings.HasPrefix(line, "/account ") {
		rest := strings.TrimPrefix(line, "/account")
		m.input.Reset()
		if err := m.session.SelectAccount(rest); err != nil {
			m.notice = "Unknown account " + strings.TrimSpace(rest)
		}
		return m, nil
	}

	p, err := m.session.BeginAsk(line)
	if err != nil {
		// Empty input or a reply still pending: nothing to do.
		return m, nil
	}
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(resolveAsk(m.ctx, p), m.spinner.Tick)
}

func resolveAsk(ctx context.Context, p *usecase.PendingAsk) tea.Cmd {
	return func() tea.Msg {
		return askResolvedMsg{out: p.Resolve(ctx)}
	}
}

func (m Model) quickAction(i int) (tea.Model, tea.Cmd) {
	actions := m.session.QuickActions()
	if !m.session.ShowQuickActions() || i < 0 || i >= len(actions) {
		return m, nil
	}
	if actions[i].OpensReport {
		return m.openReport()
	}
	return m.send(actions[i].Query)
}

func (m *Model) cycleAccount() {
	accounts := m.session.Accounts()
	if len(accounts) == 0 {
		m.notice = "Type /account <id> to change account"
		return
	}
	next := accounts[(slices.Index(accounts, m.session.Account())+1)%len(accounts)]
	_ = m.session.SelectAccount(next)
}

func (m Model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k := msg.String(); k == "y" || k == "Y" {
		m.session.Clear()
	}
	m.mode = modeChat
	m.refresh()
	return m, nil
}

func (m Model) openReport() (tea.Model, tea.Cmd) {
	m.mode = modeReport
	m.categoryIdx = -1
	m.alert = ""
	m.description.Reset()
	m.input.Blur()
	return m, m.description.Focus()
}

func (m Model) closeReport() Model {
	m.mode = modeChat
	m.alert = ""
	m.description.Blur()
	m.input.Focus()
	return m
}

func (m Model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	submitting := m.submitting || m.session.ReportPending()
	switch msg.String() {
	case "esc":
		if submitting {
			return m, nil
		}
		return m.closeReport(), nil
	case "up":
		if !submitting {
			m.categoryIdx = max(m.categoryIdx-1, 0)
		}
		return m, nil
	case "down":
		if !submitting {
			m.categoryIdx = min(m.categoryIdx+1, len(m.categories)-1)
		}
		return m, nil
	case "enter":
		if submitting || m.categoryIdx < 0 || strings.TrimSpace(m.description.Value()) == "" {
			return m, nil
		}
		m.alert = ""
		m.submitting = true
		in := usecase.ReportInput{
			Category:    m.categories[m.categoryIdx],
			Description: m.description.Value(),
		}
		return m, tea.Batch(submitReport(m.ctx, m.session, in), m.spinner.Tick)
	}
	if submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.description, cmd = m.description.Update(msg)
	return m, cmd
}

func submitReport(ctx context.Context, s Session, in usecase.ReportInput) tea.Cmd {
	return func() tea.Msg {
		out, err := s.SubmitReport(ctx, in)
		return reportDoneMsg{out: out, err: err}
	}
}

func (m Model) handleReportDone(msg reportDoneMsg) (tea.Model, tea.Cmd) {
	var usecaseErr *usecase.Error
	isUsecaseErr := errors.As(msg.err, &usecaseErr)
	if isUsecaseErr && usecaseErr.Code == usecase.ErrorBusy {
		// Another submission owns the form; its result decides the outcome.
		return m, nil
	}
	m.submitting = false
	if msg.err != nil {
		m.alert = "Submission Failed: " + usecase.ReportFailedMessage
		if isUsecaseErr && usecaseErr.Code == usecase.ErrorInvalidInput {
			m.alert = "Please choose a problem type and describe the issue (max 500 characters)."
		}
		return m, nil
	}
	m = m.closeReport()
	m.refresh()
	return m, nil
}

// refresh re-renders the conversation into the viewport and scrolls to the end.
func (m *Model) refresh() {
	m.viewport.SetContent(renderEntries(m.session.Entries(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if m.mode == modeReport {
		b.WriteString(m.reportView())
		return b.String()
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.session.Pending() {
		b.WriteString(m.spinner.View() + metaStyle.Render(" Assistant is typing..."))
	}
	b.WriteString("\n")

	switch {
	case m.mode == modeConfirmClear:
		b.WriteString(alertStyle.Render("Clear Chat: are you sure you want to clear all messages? (y/n)"))
	case m.notice != "":
		b.WriteString(metaStyle.Render(m.notice))
	case m.session.ShowQuickActions():
		b.WriteString(m.quickActionsView())
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(metaStyle.Render("enter send • tab account • ctrl+r report issue • ctrl+l clear • ctrl+c quit"))
	return b.String()
}

func (m Model) headerView() string {
	title := headerStyle.Render("Account Assistant")
	account := accountStyle.Render("Account " + m.session.Account())
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(account), 0)
	return title + barStyle.Render(strings.Repeat(" ", gap)) + account
}

func (m Model) quickActionsView() string {
	parts := []string{titleStyle.Render("Quick actions:")}
	for i, a := range m.session.QuickActions() {
		parts = append(parts, fmt.Sprintf("[F%d] %s", i+1, a.Title))
	}
	return strings.Join(parts, "  ")
}

func (m Model) reportView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Report a Problem"))
	b.WriteString(metaStyle.Render("  account " + m.session.Account()))
	b.WriteString("\n\nProblem type:\n")
	for i, c := range m.categories {
		line := "  ( ) " + c.Label()
		if i == m.categoryIdx {
			line = chosenStyle.Render("  (•) " + c.Label())
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\nDescription:\n")
	b.WriteString(m.description.View())
	b.WriteString("\n\n")
	if m.submitting || m.session.ReportPending() {
		b.WriteString(m.spinner.View() + " Submitting report...\n")
	}
	if m.alert != "" {
		b.WriteString(alertStyle.Render(m.alert) + "\n")
	}
	b.WriteString(metaStyle.Render("↑/↓ choose type • enter submit • esc cancel"))
	return b.String()
}

func renderEntries(entries []domain.ChatEntry, width int) string {
	bubbleWidth := max(width*3/4, minWidth/2)
	rendered := make([]string, 0, len(entries))
	for _, e := range entries {
		meta := e.CreatedAt.Format("15:04")
		if e.RowCount != nil {
			meta += fmt.Sprintf(" • %d rows", *e.RowCount)
		}

		var bubble string
		switch {
		case e.FromUser:
			bubble = userBubble.Width(min(lipgloss.Width(e.Text)+2, bubbleWidth)).Render(e.Text)
		case e.IsError:
			bubble = errorBubble.Width(bubbleWidth).Render(e.Text)
		default:
			bubble = botBubble.Width(bubbleWidth).Render(e.Text)
		}
		block := lipgloss.JoinVertical(lipgloss.Left, bubble, metaStyle.Render(meta))
		if e.FromUser {
			block = lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
		}
		rendered = append(rendered, block)
	}
	return strings.Join(rendered, "\n\n")
}
