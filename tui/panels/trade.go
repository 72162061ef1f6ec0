package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/wipeout/internal/engine"
	"github.com/zappabad/wipeout/tui/styles"
)

// TradeAction is a command emitted by the trade panel.
type TradeAction int

const (
	ActionBuy TradeAction = iota
	ActionSell
	ActionPanicSell
	ActionRescue
	ActionSetLeverage
)

// TradeMsg asks the application to run a trading command.
type TradeMsg struct {
	Action   TradeAction
	Qty      float64
	Leverage int
}

// TradePanel handles quantity entry and the trading keys.
type TradePanel struct {
	qtyInput textinput.Model
	editing  bool

	leverage int
	snap     engine.Snapshot

	focused bool
	width   int
	height  int
}

// NewTradePanel creates a new trade panel.
func NewTradePanel() *TradePanel {
	qty := textinput.New()
	qty.Placeholder = "Quantity"
	qty.Width = 10
	qty.CharLimit = 12
	qty.SetValue("10")

	return &TradePanel{
		qtyInput: qty,
		leverage: 1,
	}
}

// Init initializes the panel.
func (p *TradePanel) Init() tea.Cmd {
	return textinput.Blink
}

// SetSnapshot keeps the panel in sync with the engine.
func (p *TradePanel) SetSnapshot(snap engine.Snapshot) {
	p.snap = snap
	p.leverage = snap.Leverage
}

// Editing reports whether the quantity field is capturing keystrokes.
func (p *TradePanel) Editing() bool { return p.editing }

// SetFocused sets the focus state.
func (p *TradePanel) SetFocused(focused bool) {
	p.focused = focused
	if !focused {
		p.editing = false
		p.qtyInput.Blur()
	}
}

// SetSize sets the panel dimensions.
func (p *TradePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Qty parses the quantity field; invalid input yields 0.
func (p *TradePanel) Qty() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.qtyInput.Value()), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func emit(msg TradeMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Update handles messages for the panel.
func (p *TradePanel) Update(msg tea.Msg) (*TradePanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.editing {
		switch {
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("enter", "esc"))):
			p.editing = false
			p.qtyInput.Blur()
			return p, nil
		default:
			var cmd tea.Cmd
			p.qtyInput, cmd = p.qtyInput.Update(msg)
			return p, cmd
		}
	}

	switch {
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("e"))):
		p.editing = true
		return p, p.qtyInput.Focus()

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("b"))):
		return p, emit(TradeMsg{Action: ActionBuy, Qty: p.Qty()})

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("s"))):
		return p, emit(TradeMsg{Action: ActionSell, Qty: p.Qty()})

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("p"))):
		return p, emit(TradeMsg{Action: ActionPanicSell})

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("r"))):
		return p, emit(TradeMsg{Action: ActionRescue})

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("+", "="))):
		lv := p.leverage + 1
		if lv > 100 {
			lv = 100
		}
		return p, emit(TradeMsg{Action: ActionSetLeverage, Leverage: lv})

	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("-"))):
		lv := p.leverage - 1
		if lv < 1 {
			lv = 1
		}
		return p, emit(TradeMsg{Action: ActionSetLeverage, Leverage: lv})
	}

	return p, nil
}

// View renders the panel.
func (p *TradePanel) View() string {
	var content strings.Builder

	inputStyle := styles.InputStyle
	if p.editing {
		inputStyle = styles.FocusedInputStyle
	}
	content.WriteString(styles.LabelStyle.Render("Qty "))
	content.WriteString(inputStyle.Render(p.qtyInput.View()))
	content.WriteString(styles.LabelStyle.Render(fmt.Sprintf("  Leverage %dx", p.leverage)))
	content.WriteString("\n\n")

	content.WriteString(styles.BuyStyle.Render("[b] Buy"))
	content.WriteString("  ")
	content.WriteString(styles.SellStyle.Render("[s] Sell"))
	content.WriteString("  ")
	content.WriteString(styles.WarningStyle.Render("[p] Panic sell"))
	content.WriteString("\n")
	content.WriteString(styles.LabelStyle.Render("[e] edit qty  [+/-] leverage  [r] ad rescue"))

	if p.snap.Liquidated {
		content.WriteString("\n\n")
		content.WriteString(styles.BankruptStyle.Render("Trading disabled: liquidated"))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🎮 Trade", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}
