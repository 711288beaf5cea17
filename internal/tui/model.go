// Package tui provides the Bubble Tea flashcard review interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/flashcards/internal/ledger"
	"github.com/verte-zerg/flashcards/internal/model"
)

// Reporter persists a single answer outcome before returning.
type Reporter interface {
	ReportAnswer(cardID string, correct bool) (ledger.CardStats, error)
}

// SessionRecorder stores a finished review session.
type SessionRecorder interface {
	InsertSession(ctx context.Context, stats model.SessionStats) (int64, error)
}

// Model implements the Bubble Tea review UI.
type Model struct {
	cards    []model.Card
	deckPath string
	reporter Reporter
	sessions SessionRecorder
	now      func() time.Time

	keys keyMap
	help help.Model

	width  int
	height int

	index    int
	revealed bool
	showHint bool
	status   string
	failed   bool

	startedAt time.Time
	seen      map[string]struct{}
	correct   int
	incorrect int
	saved     bool
	saveErr   error
}

const contentFactor = 0.70

var finishedCard = model.Card{Prompt: "Finished"}

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	hiddenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8CB4D8")).Italic(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardBoxStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// NewModel constructs a review TUI model over cards in the given order.
// sessions may be nil, in which case session history is not kept.
func NewModel(cards []model.Card, deckPath string, reporter Reporter, sessions SessionRecorder) *Model {
	return &Model{
		cards:     cards,
		deckPath:  deckPath,
		reporter:  reporter,
		sessions:  sessions,
		now:       time.Now,
		keys:      defaultKeyMap(),
		help:      help.New(),
		status:    "Consider the answer, then press space to show it.",
		startedAt: time.Now(),
		seen:      map[string]struct{}{},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.finishSession()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.nextCard()
		case key.Matches(msg, m.keys.Show):
			m.showAnswer()
		case key.Matches(msg, m.keys.Hint):
			m.toggleHint()
		case key.Matches(msg, m.keys.Restart):
			m.restart()
		case key.Matches(msg, m.keys.Correct):
			m.mark(true)
		case key.Matches(msg, m.keys.Incorrect):
			m.mark(false)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := 0
	if m.width > 0 {
		contentWidth = max(int(float64(m.width)*contentFactor), 1)
	}
	card := m.renderCard(contentWidth)
	status := m.renderStatus()
	footer := m.renderFooter()
	helpView := m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{card, status, footer, helpView}, "\n")
	}
	bottom := lipgloss.JoinVertical(lipgloss.Center, status, footer, helpView)
	bodyHeight := max(m.height-lipgloss.Height(bottom), 1)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, card)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, bottom)
}

// Finished reports whether the review has moved past the last card.
func (m *Model) Finished() bool {
	return m.index >= len(m.cards)
}

// SaveError returns the error from persisting the session on quit, if any.
func (m *Model) SaveError() error {
	return m.saveErr
}

func (m *Model) current() model.Card {
	if m.Finished() {
		return finishedCard
	}
	return m.cards[m.index]
}

func (m *Model) nextCard() {
	if m.Finished() {
		m.setStatus("Deck finished, press r to restart.")
		return
	}
	m.index++
	m.revealed = false
	m.showHint = false
	if m.Finished() {
		m.setStatus("Deck finished, press r to restart or q to quit.")
		return
	}
	m.setStatus("Switched to a new question, consider the answer then press space to show it.")
}

func (m *Model) showAnswer() {
	if m.Finished() {
		m.setStatus("Deck finished, press r to restart.")
		return
	}
	m.revealed = true
	m.setStatus("Showing answer, please indicate if you got the answer correct.")
}

func (m *Model) toggleHint() {
	if m.Finished() {
		return
	}
	card := m.current()
	if card.Hint == "" {
		m.setStatus("No hint for this card.")
		return
	}
	m.showHint = !m.showHint
}

func (m *Model) restart() {
	m.index = 0
	m.revealed = false
	m.showHint = false
	m.setStatus("Restarting the deck.")
}

func (m *Model) mark(correct bool) {
	if m.Finished() {
		m.setStatus("Deck finished, nothing to mark. Press r to restart.")
		return
	}
	card := m.current()
	stats, err := m.reporter.ReportAnswer(card.ID, correct)
	if err != nil {
		m.status = fmt.Sprintf("failed to record answer for %s: %v", card.ID, err)
		m.failed = true
		return
	}
	m.seen[card.ID] = struct{}{}
	verdict := "incorrect"
	if correct {
		m.correct++
		verdict = "correct"
	} else {
		m.incorrect++
	}
	m.setStatus(fmt.Sprintf("question: %s marked %s (%d/%d correct overall)", card.ID, verdict, stats.CorrectCount, stats.Reviews()))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) finishSession() {
	if m.saved || m.sessions == nil || m.correct+m.incorrect == 0 {
		return
	}
	m.saved = true
	endedAt := m.now()
	stats := model.SessionStats{
		StartedAt:  m.startedAt,
		EndedAt:    endedAt,
		DeckPath:   m.deckPath,
		CardsSeen:  len(m.seen),
		Correct:    m.correct,
		Incorrect:  m.incorrect,
		DurationMs: endedAt.Sub(m.startedAt).Milliseconds(),
	}
	if _, err := m.sessions.InsertSession(context.Background(), stats); err != nil {
		m.saveErr = fmt.Errorf("failed to save session: %w", err)
	}
}

func (m *Model) renderCard(width int) string {
	card := m.current()
	wrap := func(s string) string {
		if width <= 0 {
			return s
		}
		return wrapText(s, width)
	}
	lines := []string{
		labelStyle.Render("Prompt:") + " " + promptStyle.Render(wrap(card.Prompt)),
	}
	if m.Finished() {
		return cardBoxStyle.Render(strings.Join(lines, "\n"))
	}
	if m.revealed {
		lines = append(lines, labelStyle.Render("Answer:")+" "+answerStyle.Render(wrap(card.Answer)))
		if card.Evidence != "" {
			lines = append(lines, labelStyle.Render("Evidence:")+" "+hintStyle.Render(wrap(card.Evidence)))
		}
	} else {
		lines = append(lines, labelStyle.Render("Answer:")+" "+hiddenStyle.Render("?"))
	}
	if m.showHint && card.Hint != "" {
		lines = append(lines, labelStyle.Render("Hint:")+" "+hintStyle.Render(wrap(card.Hint)))
	}
	return cardBoxStyle.Render(strings.Join(lines, "\n\n"))
}

func (m *Model) renderStatus() string {
	if m.failed {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m *Model) renderFooter() string {
	position := fmt.Sprintf("Card %d/%d", min(m.index+1, len(m.cards)), len(m.cards))
	if m.Finished() {
		position = fmt.Sprintf("Finished %d cards", len(m.cards))
	}
	segments := []string{
		position,
		fmt.Sprintf("Session %d correct · %d incorrect", m.correct, m.incorrect),
	}
	if total := m.correct + m.incorrect; total > 0 {
		segments = append(segments, fmt.Sprintf("%.1f%%", float64(m.correct)/float64(total)*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
