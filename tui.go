package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type WindowScoreMsg struct{ Score float64 }
type AudioLevelMsg struct{ Level float64 }
type SpeechRatioMsg struct{ Ratio float64 }
type AlertMsg struct {
	Event AlertEvent
	Score float64
}
type SessionTickMsg struct{ Duration float64 }
type ModeLineMsg struct{ Text string }   // scoring mode info
type DeviceLineMsg struct{ Text string } // microphone device name
type LogMsg struct{ Text string }
type tickMsg time.Time

const (
	historyLen   = 60 // ~30s of windows in the sparkline
	eventLogKeep = 8
)

type tuiModel struct {
	frame           int
	score           float64
	history         []float64
	audioLevel      float64
	speechRatio     float64
	alertActive     bool
	alertCount      int
	sessionDuration float64
	windowCount     int
	width, height   int
	modeLine        string
	deviceLine      string
	events          []string
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	styleCalm   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarm   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleHot    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleAlert  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleFaint  = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleInfo   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleMarker = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func NewTUIProgram() *tea.Program {
	m := tuiModel{}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case WindowScoreMsg:
		m.score = msg.Score
		m.windowCount++
		m.history = append(m.history, msg.Score)
		if len(m.history) > historyLen {
			m.history = m.history[len(m.history)-historyLen:]
		}

	case AudioLevelMsg:
		m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4

	case SpeechRatioMsg:
		m.speechRatio = msg.Ratio

	case AlertMsg:
		switch msg.Event {
		case AlertRaised:
			m.alertActive = true
			m.alertCount++
			m.events = pushEvent(m.events, fmt.Sprintf("ALERT raised at %.3f", msg.Score))
		case AlertRepeat:
			m.events = pushEvent(m.events, fmt.Sprintf("alert ongoing at %.3f", msg.Score))
		case AlertCleared:
			m.alertActive = false
			m.events = pushEvent(m.events, fmt.Sprintf("alert cleared at %.3f", msg.Score))
		}

	case SessionTickMsg:
		m.sessionDuration = msg.Duration

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case LogMsg:
		m.events = pushEvent(m.events, msg.Text)
	}
	return m, nil
}

func pushEvent(events []string, text string) []string {
	stamp := time.Now().Format("15:04:05")
	events = append(events, stamp+"  "+text)
	if len(events) > eventLogKeep {
		events = events[len(events)-eventLogKeep:]
	}
	return events
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score > 0.7:
		return styleHot
	case score >= 0.5:
		return styleWarm
	default:
		return styleCalm
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	gaugeWidth := m.width - 12
	if gaugeWidth > 60 {
		gaugeWidth = 60
	}
	if gaugeWidth < 20 {
		gaugeWidth = 20
	}

	var b strings.Builder
	b.WriteString("\n")

	// Status line. The alert banner blinks so it reads from across a room.
	if m.alertActive {
		banner := fmt.Sprintf(" ▲ EMERGENCY  score %.3f ", m.score)
		if m.frame%8 < 4 {
			b.WriteString(styleAlert.Render(banner))
		} else {
			b.WriteString(styleHot.Render(banner))
		}
	} else {
		b.WriteString(styleDim.Render(fmt.Sprintf(" ○ monitoring  %s", fmtDuration(m.sessionDuration))))
	}
	b.WriteString("\n\n")

	// Score gauge with a threshold marker at 0.7.
	b.WriteString(" " + renderGauge(m.score, gaugeWidth))
	b.WriteString(scoreStyle(m.score).Render(fmt.Sprintf("  %.3f", m.score)))
	b.WriteString("\n")

	// Sparkline of recent windows.
	if len(m.history) > 0 {
		b.WriteString(" " + renderSparkline(m.history, gaugeWidth))
		b.WriteString(styleFaint.Render(fmt.Sprintf("  %d windows", m.windowCount)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Mic level and speech activity.
	levelBar := renderLevel(m.audioLevel, 20)
	b.WriteString(styleDim.Render(fmt.Sprintf(" mic  %s   speech %3.0f%%", levelBar, m.speechRatio*100)))
	b.WriteString("\n\n")

	if m.modeLine != "" {
		b.WriteString(" " + styleInfo.Render(m.modeLine) + "\n")
	}
	if m.deviceLine != "" {
		b.WriteString(" " + styleDim.Render(m.deviceLine) + "\n")
	}
	if m.alertCount > 0 {
		b.WriteString(" " + styleDim.Render(fmt.Sprintf("alerts this session: %d", m.alertCount)) + "\n")
	}
	b.WriteString("\n")

	// Recent events.
	for _, ev := range m.events {
		b.WriteString(" " + styleFaint.Render(ev) + "\n")
	}
	if len(m.events) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(" " + styleFaint.Render("q to quit") + "\n")
	b.WriteString(" " + styleFaint.Render("callwatch "+version) + "\n")

	return b.String()
}

// renderGauge draws score as a filled bar with a tick where the alert
// threshold sits.
func renderGauge(score float64, width int) string {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	filled := int(score * float64(width))
	marker := int(0.7 * float64(width))

	style := scoreStyle(score)
	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == marker:
			b.WriteString(styleMarker.Render("┊"))
		case i < filled:
			b.WriteString(style.Render("█"))
		default:
			b.WriteString(styleFaint.Render("░"))
		}
	}
	return b.String()
}

func renderSparkline(history []float64, width int) string {
	start := 0
	if len(history) > width {
		start = len(history) - width
	}
	var b strings.Builder
	for _, v := range history[start:] {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		idx := int(v * float64(len(sparkRunes)-1))
		b.WriteString(scoreStyle(v).Render(string(sparkRunes[idx])))
	}
	return b.String()
}

func renderLevel(level float64, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * float64(width))
	return strings.Repeat("▮", filled) + strings.Repeat("▯", width-filled)
}

func fmtDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return d.String()
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func logToTUI(format string, args ...interface{}) {
	tuiSend(LogMsg{Text: fmt.Sprintf(format, args...)})
}
