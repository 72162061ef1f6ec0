package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/wipeout/internal/engine"
	"github.com/zappabad/wipeout/tui/panels"
	"github.com/zappabad/wipeout/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusChart PanelFocus = 0
	FocusStats PanelFocus = 1
	FocusTrade PanelFocus = 2
	FocusNews  PanelFocus = 3
)

const panelCount = 4

// snapshotMsg carries one engine read model into the TUI.
type snapshotMsg engine.Snapshot

// Model is the main TUI application model.
type Model struct {
	eng *engine.Engine

	chartPanel *panels.ChartPanel
	statsPanel *panels.StatsPanel
	tradePanel *panels.TradePanel
	newsPanel  *panels.NewsPanel

	focusedPanel PanelFocus

	width  int
	height int
	ready  bool
}

// NewModel creates a new TUI model bound to the engine.
func NewModel(eng *engine.Engine) *Model {
	m := &Model{
		eng:          eng,
		chartPanel:   panels.NewChartPanel(),
		statsPanel:   panels.NewStatsPanel(),
		tradePanel:   panels.NewTradePanel(),
		newsPanel:    panels.NewNewsPanel(),
		focusedPanel: FocusTrade,
	}
	m.applyFocus()
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.chartPanel.Init(),
		m.statsPanel.Init(),
		m.tradePanel.Init(),
		m.newsPanel.Init(),
		m.listenSnapshots(),
	)
}

// listenSnapshots waits for the next engine snapshot.
func (m *Model) listenSnapshots() tea.Cmd {
	snapshots := m.eng.Snapshots()
	return func() tea.Msg {
		snap, ok := <-snapshots
		if !ok {
			return tea.QuitMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.tradePanel.Editing() && msg.String() != "ctrl+c" {
			// Keystrokes belong to the quantity field until it is left.
			var cmd tea.Cmd
			m.tradePanel, cmd = m.tradePanel.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab":
			m.focusedPanel = (m.focusedPanel + 1) % panelCount
			m.applyFocus()

		case "shift+tab":
			m.focusedPanel--
			if m.focusedPanel < 0 {
				m.focusedPanel = panelCount - 1
			}
			m.applyFocus()

		case "f1":
			m.setFocus(FocusChart)
		case "f2":
			m.setFocus(FocusStats)
		case "f3":
			m.setFocus(FocusTrade)
		case "f4":
			m.setFocus(FocusNews)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case snapshotMsg:
		snap := engine.Snapshot(msg)
		m.chartPanel.SetCandles(snap.Candles, snap.Price, snap.ActiveEvent)
		m.statsPanel.SetSnapshot(snap)
		m.tradePanel.SetSnapshot(snap)
		m.newsPanel.SetItems(m.eng.News(40))
		cmds = append(cmds, m.listenSnapshots())

	case panels.TradeMsg:
		switch msg.Action {
		case panels.ActionBuy:
			m.eng.Buy(msg.Qty)
		case panels.ActionSell:
			m.eng.Sell(msg.Qty)
		case panels.ActionPanicSell:
			m.eng.PanicSell()
		case panels.ActionRescue:
			m.eng.RequestRescue()
		case panels.ActionSetLeverage:
			m.eng.SetLeverage(msg.Leverage)
		}
	}

	var cmd tea.Cmd
	m.chartPanel, cmd = m.chartPanel.Update(msg)
	cmds = append(cmds, cmd)
	m.statsPanel, cmd = m.statsPanel.Update(msg)
	cmds = append(cmds, cmd)
	m.tradePanel, cmd = m.tradePanel.Update(msg)
	cmds = append(cmds, cmd)
	m.newsPanel, cmd = m.newsPanel.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(f PanelFocus) {
	m.focusedPanel = f
	m.applyFocus()
}

func (m *Model) applyFocus() {
	m.chartPanel.SetFocused(m.focusedPanel == FocusChart)
	m.statsPanel.SetFocused(m.focusedPanel == FocusStats)
	m.tradePanel.SetFocused(m.focusedPanel == FocusTrade)
	m.newsPanel.SetFocused(m.focusedPanel == FocusNews)
}

func (m *Model) layout() {
	if !m.ready {
		return
	}

	topHeight := (m.height - 1) * 3 / 5
	bottomHeight := m.height - 1 - topHeight

	chartWidth := m.width * 2 / 3
	statsWidth := m.width - chartWidth
	tradeWidth := m.width / 3
	newsWidth := m.width - tradeWidth

	m.chartPanel.SetSize(chartWidth, topHeight)
	m.statsPanel.SetSize(statsWidth, topHeight)
	m.tradePanel.SetSize(tradeWidth, bottomHeight)
	m.newsPanel.SetSize(newsWidth, bottomHeight)
}

// View renders the whole application.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.chartPanel.View(), m.statsPanel.View())
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.tradePanel.View(), m.newsPanel.View())

	status := m.statusBar()

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, status)
}

func (m *Model) statusBar() string {
	var b strings.Builder
	b.WriteString(styles.StatusBarKeyStyle.Render("tab"))
	b.WriteString(" focus  ")
	b.WriteString(styles.StatusBarKeyStyle.Render("f1-f4"))
	b.WriteString(" panels  ")
	b.WriteString(styles.StatusBarKeyStyle.Render("q"))
	b.WriteString(" quit")
	return styles.StatusBarStyle.Width(m.width).Render(b.String())
}
