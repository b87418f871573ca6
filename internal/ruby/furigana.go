// Package ruby 给文本加注音：日文振假名、中文注音符号
package ruby

import (
	"regexp"
	"strings"

	"anan/internal/textseg"
)

// Segment 一段基础文字和它的注音，Ruby 为空表示无注音
type Segment struct {
	Base string `json:"base"`
	Ruby string `json:"ruby,omitempty"`
}

var rubyTagRe = regexp.MustCompile(`(?s)<ruby>(.*?)<rt>(.*?)</rt></ruby>`)
var rpTagRe = regexp.MustCompile(`<rp>[^<]*</rp>`)

// Normalize 把 HTML ruby 标记统一成 漢字(かな) 写法
func Normalize(text string) string {
	text = rpTagRe.ReplaceAllString(text, "")
	return rubyTagRe.ReplaceAllString(text, "$1($2)")
}

func isOpen(r rune) bool  { return r == '(' || r == '（' }
func isClose(r rune) bool { return r == ')' || r == '）' }

func isBase(r rune) bool {
	return textseg.IsCJKIdeograph(r) || r == '々'
}

// ParseFurigana 解析 漢字(かな)。括号前紧挨着的汉字串作为基础文字；
// 前面没有汉字或括号不闭合时按普通文字处理
func ParseFurigana(text string) []Segment {
	runes := []rune(Normalize(text))
	segments := make([]Segment, 0, len(runes))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !isOpen(r) {
			segments = append(segments, Segment{Base: string(r)})
			continue
		}

		end := -1
		for j := i + 1; j < len(runes); j++ {
			if isClose(runes[j]) {
				end = j
				break
			}
		}

		// 回收括号前的汉字
		start := len(segments)
		for start > 0 && segments[start-1].Ruby == "" && isSingleBase(segments[start-1].Base) {
			start--
		}
		if end < 0 || start == len(segments) || end == i+1 {
			segments = append(segments, Segment{Base: string(r)})
			continue
		}

		var base strings.Builder
		for _, s := range segments[start:] {
			base.WriteString(s.Base)
		}
		segments = append(segments[:start], Segment{
			Base: base.String(),
			Ruby: string(runes[i+1 : end]),
		})
		i = end
	}
	return segments
}

func isSingleBase(s string) bool {
	r := []rune(s)
	return len(r) == 1 && isBase(r[0])
}

// Plain 去掉注音后的文本，也是送去合成和高亮的文本
func Plain(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Base)
	}
	return b.String()
}

// StripFurigana 等价于 Plain(ParseFurigana(text))
func StripFurigana(text string) string {
	return Plain(ParseFurigana(text))
}
