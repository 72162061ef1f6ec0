package styles

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7C3AED") // Purple
	AccentColor  = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	LongColor    = lipgloss.Color("#10B981") // Green
	ShortColor   = lipgloss.Color("#EF4444") // Red
	NeutralColor = lipgloss.Color("#6B7280") // Gray

	// Background colors
	BackgroundColor  = lipgloss.Color("#1F2937")
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = lipgloss.Color("#7C3AED")

	// Text colors
	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)
)

// Trading styles
var (
	BuyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(LongColor)

	SellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ShortColor)

	PnlUpStyle = lipgloss.NewStyle().
			Foreground(LongColor)

	PnlDownStyle = lipgloss.NewStyle().
			Foreground(ShortColor)

	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	BankruptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ShortColor)

	TimeStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)
)

// Feed category styles
var (
	FeedInfoStyle   = lipgloss.NewStyle().Foreground(TextColor)
	FeedBuyStyle    = lipgloss.NewStyle().Foreground(LongColor)
	FeedSellStyle   = lipgloss.NewStyle().Foreground(ShortColor)
	FeedErrorStyle  = lipgloss.NewStyle().Bold(true).Foreground(ShortColor)
	FeedSystemStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	FeedEventStyle  = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
)

// Chart styles
var (
	CandleUpStyle = lipgloss.NewStyle().
			Foreground(LongColor)

	CandleDownStyle = lipgloss.NewStyle().
			Foreground(ShortColor)

	ChartAxisStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ChartLabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)
)

// Input styles
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)
)

// RenderTitle renders a panel title bar.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// FormatMoney renders a dollar amount.
func FormatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatClock renders a duration as mm:ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
