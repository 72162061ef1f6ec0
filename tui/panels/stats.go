package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/wipeout/internal/engine"
	"github.com/zappabad/wipeout/tui/styles"
)

// StatsPanel displays the account and position read model.
type StatsPanel struct {
	snap engine.Snapshot

	focused bool
	width   int
	height  int
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel() *StatsPanel {
	return &StatsPanel{}
}

// Init initializes the panel.
func (p *StatsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *StatsPanel) Update(msg tea.Msg) (*StatsPanel, tea.Cmd) {
	return p, nil
}

// SetSnapshot replaces the state being shown.
func (p *StatsPanel) SetSnapshot(snap engine.Snapshot) { p.snap = snap }

// SetFocused sets the focus state.
func (p *StatsPanel) SetFocused(focused bool) { p.focused = focused }

// SetSize sets the panel dimensions.
func (p *StatsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *StatsPanel) line(label, value string) string {
	return styles.LabelStyle.Render(fmt.Sprintf("%-14s", label)) + styles.ValueStyle.Render(value)
}

// View renders the panel.
func (p *StatsPanel) View() string {
	s := p.snap
	var content strings.Builder

	switch s.Phase {
	case engine.PhaseBankrupt:
		content.WriteString(styles.BankruptStyle.Render("*** BANKRUPT ***"))
		content.WriteString("\n")
		if s.RescuePending {
			content.WriteString(styles.WarningStyle.Render(fmt.Sprintf("Ad playing... %3.0f%%", s.RescueProgress*100)))
		} else if s.RescueCooldown > 0 {
			content.WriteString(styles.TimeStyle.Render("Rescue in " + styles.FormatClock(s.RescueCooldown)))
		} else {
			content.WriteString(styles.WarningStyle.Render("Press r to watch an ad"))
		}
		content.WriteString("\n\n")
	case engine.PhaseIdle:
		if s.NextRoundIn > 0 {
			content.WriteString(styles.WarningStyle.Render("Next round in " + styles.FormatClock(s.NextRoundIn)))
			content.WriteString("\n\n")
		}
	default:
		clock := styles.FormatClock(s.Remaining)
		if s.Liquidated {
			content.WriteString(styles.BankruptStyle.Render("LIQUIDATED  " + clock))
		} else {
			content.WriteString(styles.ValueStyle.Render("⏱ " + clock))
		}
		content.WriteString("\n\n")
	}

	content.WriteString(p.line("Round", fmt.Sprintf("#%d @ %dx", s.RoundNumber, s.Leverage)))
	content.WriteString("\n")
	content.WriteString(p.line("Cash", styles.FormatMoney(s.Cash)))
	content.WriteString("\n")
	content.WriteString(p.line("Position", fmt.Sprintf("%.4f", s.PositionSize)))
	content.WriteString("\n")

	entry := "N/A"
	if s.AvgEntryPrice > 0 {
		entry = styles.FormatMoney(s.AvgEntryPrice)
	}
	content.WriteString(p.line("Entry", entry))
	content.WriteString("\n")

	pnlStyle := styles.PnlUpStyle
	if s.UnrealizedPnl < 0 {
		pnlStyle = styles.PnlDownStyle
	}
	pnl := fmt.Sprintf("%s (%.2f%%)", styles.FormatMoney(s.UnrealizedPnl), s.PnlPercent)
	content.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%-14s", "Unreal. P&L")) + pnlStyle.Render(pnl))
	content.WriteString("\n")
	content.WriteString(p.line("Margin used", styles.FormatMoney(s.MarginUsed)))
	content.WriteString("\n\n")

	content.WriteString(p.line("Balance", styles.FormatMoney(s.Balance)))
	content.WriteString("\n")
	content.WriteString(p.line("All-time high", styles.FormatMoney(s.AllTimeHigh)))
	content.WriteString("\n")

	lastStyle := styles.PnlUpStyle
	if s.LastRoundPnl < 0 {
		lastStyle = styles.PnlDownStyle
	}
	content.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%-14s", "Last round")) + lastStyle.Render(styles.FormatMoney(s.LastRoundPnl)))
	content.WriteString("\n")
	content.WriteString(p.line("Bankruptcies", fmt.Sprintf("%d", s.BankruptCount)))

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("💼 Account", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}
