package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/wipeout/internal/feed"
	"github.com/zappabad/wipeout/tui/styles"
)

// NewsPanel displays the notification feed, newest first.
type NewsPanel struct {
	items        []feed.Item
	scrollOffset int

	focused bool
	width   int
	height  int
}

// NewNewsPanel creates a new news panel.
func NewNewsPanel() *NewsPanel {
	return &NewsPanel{}
}

// Init initializes the panel.
func (p *NewsPanel) Init() tea.Cmd {
	return nil
}

// SetItems replaces the feed contents. Items arrive in chronological
// order and are shown newest first.
func (p *NewsPanel) SetItems(items []feed.Item) {
	reversed := make([]feed.Item, len(items))
	for i, it := range items {
		reversed[len(items)-1-i] = it
	}
	p.items = reversed
	if p.scrollOffset >= len(p.items) {
		p.scrollOffset = 0
	}
}

// SetFocused sets the focus state.
func (p *NewsPanel) SetFocused(focused bool) { p.focused = focused }

// SetSize sets the panel dimensions.
func (p *NewsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Update handles messages for the panel.
func (p *NewsPanel) Update(msg tea.Msg) (*NewsPanel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !p.focused {
		return p, nil
	}
	switch {
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("up", "k"))):
		if p.scrollOffset > 0 {
			p.scrollOffset--
		}
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("down", "j"))):
		if p.scrollOffset < len(p.items)-1 {
			p.scrollOffset++
		}
	}
	return p, nil
}

func categoryStyle(c feed.Category) lipgloss.Style {
	switch c {
	case feed.CategoryBuy:
		return styles.FeedBuyStyle
	case feed.CategorySell:
		return styles.FeedSellStyle
	case feed.CategoryError:
		return styles.FeedErrorStyle
	case feed.CategorySystem:
		return styles.FeedSystemStyle
	case feed.CategoryEvent:
		return styles.FeedEventStyle
	default:
		return styles.FeedInfoStyle
	}
}

// View renders the panel.
func (p *NewsPanel) View() string {
	var content strings.Builder

	if len(p.items) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("Nothing has happened yet"))
	} else {
		visible := p.height - 4
		if visible < 1 {
			visible = 1
		}

		end := p.scrollOffset + visible
		if end > len(p.items) {
			end = len(p.items)
		}

		for i := p.scrollOffset; i < end; i++ {
			item := p.items[i]

			msg := item.Message
			if p.width > 15 && len(msg) > p.width-15 {
				msg = msg[:p.width-18] + "..."
			}

			timeStyled := styles.TimeStyle.Render(item.Time.Format("15:04:05"))
			content.WriteString(fmt.Sprintf("%s %s", timeStyled, categoryStyle(item.Category).Render(msg)))
			if i < end-1 {
				content.WriteString("\n")
			}
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📰 Feed", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}
