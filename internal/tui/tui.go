// Package tui renders a live blackjack table in the terminal and lets the
// user start, pause and reset auto-play.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/autojack/internal/controller"
	"github.com/lox/autojack/internal/deck"
	"github.com/lox/autojack/internal/game"
)

// Game is the part of the controller the viewer drives
type Game interface {
	ToggleAutoPlay() bool
	Reset()
	Subscribe() (<-chan controller.Snapshot, func())
}

// snapshotMsg carries a new snapshot into the update loop
type snapshotMsg controller.Snapshot

// Model is the Bubble Tea model for the table view
type Model struct {
	game   Game
	logger *log.Logger

	updates     <-chan controller.Snapshot
	unsubscribe func()

	snap    controller.Snapshot
	history viewport.Model

	width    int
	height   int
	quitting bool
}

// NewModel creates a viewer subscribed to game
func NewModel(g Game, logger *log.Logger) *Model {
	updates, unsubscribe := g.Subscribe()

	vp := viewport.New(80, game.HistoryLimit)

	return &Model{
		game:        g,
		logger:      logger.WithPrefix("tui"),
		updates:     updates,
		unsubscribe: unsubscribe,
		history:     vp,
	}
}

// Init starts listening for snapshots
func (m *Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

func (m *Model) waitForSnapshot() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// Snapshot returns the last snapshot the model received
func (m *Model) Snapshot() controller.Snapshot {
	return m.snap
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = controller.Snapshot(msg)
		m.history.SetContent(renderHistory(m.snap.History))
		cmds = append(cmds, m.waitForSnapshot())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.Width = max(20, msg.Width-4)
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.unsubscribe()
			return m, tea.Quit
		case " ", "p":
			on := m.game.ToggleAutoPlay()
			m.logger.Debug("Toggled auto-play", "on", on)
		case "r":
			m.game.Reset()
		}
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.snap
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("AI Blackjack"))
	b.WriteString("\n\n")
	b.WriteString(renderScoreboard(s))
	b.WriteString("\n\n")

	dealerScore := fmt.Sprintf("%d", s.Dealer.Score)
	b.WriteString(TitleStyle.Render("Dealer's Hand") + " " + InfoStyle.Render("("+dealerScore+")"))
	b.WriteString("\n")
	b.WriteString(HandStyle.Render(renderCards(s.Dealer.Cards, s.Dealer.HideFirstCard)))
	b.WriteString("\n\n")

	b.WriteString(StatusStyle.Render(s.Status))
	b.WriteString("\n\n")

	hands := make([]string, len(s.PlayerHands))
	for i, h := range s.PlayerHands {
		style := HandStyle
		if s.State == game.StatePlayer && i == s.ActiveHand {
			style = ActiveHandStyle
		}
		title := fmt.Sprintf("Player Hand %d (%d)", i+1, h.Score)
		hands[i] = lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), style.Render(renderCards(h.Cards, false)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, spaced(hands)...))
	b.WriteString("\n\n")

	b.WriteString(TitleStyle.Render("Recent Games"))
	b.WriteString("\n")
	b.WriteString(m.history.View())
	b.WriteString("\n\n")

	action := "Start Auto-Play"
	if s.AutoPlay {
		action = "Stop Auto-Play"
	}
	b.WriteString(InfoStyle.Render(fmt.Sprintf("space: %s • r: Reset Game • q: quit", action)))

	return b.String()
}

func renderScoreboard(s controller.Snapshot) string {
	items := []string{
		SuccessStyle.Render(fmt.Sprintf("Wins: %d", s.Stats.Wins)),
		ErrorStyle.Render(fmt.Sprintf("Losses: %d", s.Stats.Losses)),
		SuccessStyle.Render("Total Won: $" + s.Stats.TotalWon.StringFixed(2)),
		ErrorStyle.Render("Total Lost: $" + s.Stats.TotalLost.StringFixed(2)),
		WarningStyle.Render("Wallet: $" + s.Wallet.StringFixed(2)),
		WarningStyle.Render(fmt.Sprintf("Current Bet: $%d", s.Bet)),
	}
	return strings.Join(items, "  ")
}

func renderCards(cards []deck.Card, hideFirst bool) string {
	if len(cards) == 0 {
		return InfoStyle.Render("--")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		switch {
		case i == 0 && hideFirst:
			parts[i] = HiddenCardStyle.Render("??")
		case c.IsRed():
			parts[i] = RedCardStyle.Render(c.String())
		default:
			parts[i] = BlackCardStyle.Render(c.String())
		}
	}
	return strings.Join(parts, " ")
}

func renderHistory(entries []controller.HistoryEntry) string {
	if len(entries) == 0 {
		return InfoStyle.Render("No games played yet.")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		scores := make([]string, len(e.PlayerScores))
		for j, sc := range e.PlayerScores {
			scores[j] = fmt.Sprintf("%d", sc)
		}
		winner := string(e.Winner)
		switch e.Winner {
		case game.WinnerPlayer:
			winner = SuccessStyle.Render(winner)
		case game.WinnerDealer:
			winner = ErrorStyle.Render(winner)
		default:
			winner = WarningStyle.Render(winner)
		}
		lines[i] = fmt.Sprintf("%-6s Player: %s  Dealer: %d  Bet: $%d  Wallet: $%s",
			winner, strings.Join(scores, ", "), e.DealerScore, e.Bet, e.Wallet.StringFixed(2))
	}
	return strings.Join(lines, "\n")
}

func spaced(blocks []string) []string {
	out := make([]string, 0, len(blocks)*2)
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, b)
	}
	return out
}
