// Package termview 在终端里渲染朗读高亮
package termview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"anan/internal/highlight"
	"anan/internal/textseg"
)

var (
	spokenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7a7a7a"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1e1e1e")).Background(lipgloss.Color("#ffd166")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0e0e0"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ecae6")).Italic(true)
)

type part int

const (
	spoken part = iota
	current
	pending
)

type cell struct {
	text string
	part part
}

// View 一段回答在终端中的样子
type View struct {
	u     *textseg.Utterance
	width int
}

func New(u *textseg.Utterance, width int) *View {
	if width <= 0 {
		width = 80
	}
	return &View{u: u, width: width}
}

// Render 按帧把文本分成已读、正在读、未读三段，折行后返回
func (v *View) Render(f highlight.Frame) string {
	cells := v.cells(f)
	lines := wrap(cells, v.width)

	var b strings.Builder
	for _, line := range lines {
		for _, c := range line {
			b.WriteString(style(c.part).Render(c.text))
		}
		b.WriteByte('\n')
	}
	b.WriteString(statusStyle.Render(v.status(f)))
	return b.String()
}

// Plain 不带样式，已读和正在读的部分用方括号标出，便于测试和日志
func (v *View) Plain(f highlight.Frame) string {
	var b strings.Builder
	for _, c := range v.cells(f) {
		switch c.part {
		case current:
			b.WriteString("[" + c.text + "]")
		default:
			b.WriteString(c.text)
		}
	}
	return b.String()
}

func (v *View) status(f highlight.Frame) string {
	total := len(v.u.Sentences)
	switch {
	case f.Failed:
		return "playback failed"
	case f.Cancelled:
		return "stopped"
	case f.Finished:
		return "done"
	}
	return fmt.Sprintf("sentence %d/%d  %3.0f%%", f.Sentence+1, total, f.Progress*100)
}

func (v *View) cells(f highlight.Frame) []cell {
	runes := []rune(v.u.Text)
	if f.Finished {
		return []cell{{text: v.u.Text, part: spoken}}
	}

	// 中文按字，英文日文按词
	if v.u.UsesWeights() || f.Token < 0 {
		cells := make([]cell, 0, len(runes))
		for i, r := range runes {
			p := pending
			if i < f.Char {
				p = spoken
			} else if i == f.Char {
				p = current
			}
			cells = append(cells, cell{text: string(r), part: p})
		}
		return cells
	}

	cells := make([]cell, 0, 2*len(v.u.Tokens))
	pos := 0
	for i, t := range v.u.Tokens {
		if t.Start > pos {
			gap := pending
			if i <= f.Token {
				gap = spoken
			}
			cells = append(cells, cell{text: string(runes[pos:t.Start]), part: gap})
		}
		p := partFor(i, f.Token)
		if !t.IsWord && i > f.Token {
			p = pending
		}
		cells = append(cells, cell{text: t.Text, part: p})
		pos = t.Start + t.Length
	}
	if pos < len(runes) {
		cells = append(cells, cell{text: string(runes[pos:]), part: pending})
	}
	return cells
}

func partFor(i, token int) part {
	switch {
	case i < token:
		return spoken
	case i == token:
		return current
	}
	return pending
}

func style(p part) lipgloss.Style {
	switch p {
	case spoken:
		return spokenStyle
	case current:
		return currentStyle
	}
	return pendingStyle
}

// wrap 按显示宽度折行，CJK 字符占两格
func wrap(cells []cell, width int) [][]cell {
	var lines [][]cell
	var line []cell
	used := 0
	for _, c := range cells {
		for _, r := range c.text {
			if r == '\n' {
				lines = append(lines, line)
				line, used = nil, 0
				continue
			}
			w := runewidth.RuneWidth(r)
			if used+w > width && used > 0 {
				lines = append(lines, line)
				line, used = nil, 0
			}
			if n := len(line); n > 0 && line[n-1].part == c.part {
				line[n-1].text += string(r)
			} else {
				line = append(line, cell{text: string(r), part: c.part})
			}
			used += w
		}
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// Width 文本的显示宽度
func Width(s string) int {
	return runewidth.StringWidth(s)
}
