package panels

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zappabad/wipeout/internal/candle"
	"github.com/zappabad/wipeout/tui/styles"
)

// ChartPanel displays the round's candlestick chart.
type ChartPanel struct {
	candles []candle.Candle
	price   float64
	event   string

	focused bool
	width   int
	height  int
}

// NewChartPanel creates a new chart panel.
func NewChartPanel() *ChartPanel {
	return &ChartPanel{}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) {
	return p, nil
}

// SetCandles replaces the series being drawn.
func (p *ChartPanel) SetCandles(candles []candle.Candle, price float64, event string) {
	p.candles = candles
	p.price = price
	p.event = event
}

// SetFocused sets the focus state.
func (p *ChartPanel) SetFocused(focused bool) { p.focused = focused }

// SetSize sets the panel dimensions.
func (p *ChartPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel.
func (p *ChartPanel) View() string {
	var content strings.Builder

	chartWidth := p.width - 12 // leave room for the price axis
	chartHeight := p.height - 6
	if chartHeight < 5 {
		chartHeight = 5
	}

	if len(p.candles) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("Waiting for the round to start..."))
	} else {
		content.WriteString(p.renderChart(chartWidth, chartHeight))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := fmt.Sprintf("📉 Price %.2f", p.price)
	if p.event != "" {
		title += "  " + styles.FeedEventStyle.Render("⚡ "+p.event)
	}
	panel := lipgloss.JoinVertical(lipgloss.Left, styles.RenderTitle(title, p.focused), content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *ChartPanel) renderChart(width, height int) string {
	// Each candle takes two columns: the candle and a space.
	candleWidth := 2
	candlesToShow := width / candleWidth
	if candlesToShow < 1 {
		candlesToShow = 1
	}

	displayCandles := p.candles
	if len(displayCandles) > candlesToShow {
		displayCandles = displayCandles[len(displayCandles)-candlesToShow:]
	}

	minPrice := displayCandles[0].Low
	maxPrice := displayCandles[0].High
	for _, c := range displayCandles {
		if c.Low < minPrice {
			minPrice = c.Low
		}
		if c.High > maxPrice {
			maxPrice = c.High
		}
	}

	// Pad the visible range so candles never touch the frame.
	priceRange := maxPrice - minPrice
	if priceRange == 0 {
		priceRange = 1
	}
	padding := priceRange * 0.1
	minPrice -= padding
	maxPrice += padding

	chartHeight := height - 3
	if chartHeight < 5 {
		chartHeight = 5
	}

	var result strings.Builder

	for row := 0; row < chartHeight; row++ {
		rowPrice := p.yToPrice(row, minPrice, maxPrice, chartHeight)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8.2f │", rowPrice)))

		for _, c := range displayCandles {
			char := p.candleChar(c, rowPrice, minPrice, maxPrice, chartHeight)

			style := styles.CandleUpStyle
			if c.Close < c.Open {
				style = styles.CandleDownStyle
			}
			result.WriteString(style.Render(string(char)))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	for range displayCandles {
		result.WriteString(styles.ChartAxisStyle.Render("──"))
	}
	result.WriteString("\n")

	// Time axis with sparse labels.
	result.WriteString(styles.ChartAxisStyle.Render("          "))
	for i, c := range displayCandles {
		if i == 0 || i == len(displayCandles)-1 || i%5 == 0 {
			secs := int(c.Start / time.Second)
			result.WriteString(styles.ChartLabelStyle.Render(fmt.Sprintf("%d", secs%100)))
		} else {
			result.WriteString("  ")
		}
	}

	return result.String()
}

// candleChar picks the glyph for one candle at one chart row.
func (p *ChartPanel) candleChar(c candle.Candle, rowPrice, minPrice, maxPrice float64, height int) rune {
	bodyTop := c.Open
	bodyBottom := c.Close
	if c.Close > c.Open {
		bodyTop = c.Close
		bodyBottom = c.Open
	}

	// Tolerance because continuous prices map onto discrete rows.
	tolerance := (maxPrice - minPrice) / float64(height*2)

	if rowPrice <= bodyTop+tolerance && rowPrice >= bodyBottom-tolerance {
		return '┃'
	}
	if rowPrice <= c.High+tolerance && rowPrice > bodyTop {
		return '│'
	}
	if rowPrice >= c.Low-tolerance && rowPrice < bodyBottom {
		return '│'
	}
	return ' '
}

func (p *ChartPanel) yToPrice(y int, minPrice, maxPrice float64, height int) float64 {
	if height <= 1 {
		return minPrice
	}
	ratio := float64(y) / float64(height-1)
	return maxPrice - ratio*(maxPrice-minPrice)
}
