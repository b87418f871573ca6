package ruby

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// 读音取数字声调写法（如 ni3），再转成注音
var tone3Args = func() pinyin.Args {
	a := pinyin.NewArgs()
	a.Style = pinyin.Tone3
	return a
}()

var bopomofoInitials = []struct {
	latin string
	zhuyin string
}{
	// 双字母声母在前
	{"zh", "ㄓ"}, {"ch", "ㄔ"}, {"sh", "ㄕ"},
	{"b", "ㄅ"}, {"p", "ㄆ"}, {"m", "ㄇ"}, {"f", "ㄈ"},
	{"d", "ㄉ"}, {"t", "ㄊ"}, {"n", "ㄋ"}, {"l", "ㄌ"},
	{"g", "ㄍ"}, {"k", "ㄎ"}, {"h", "ㄏ"},
	{"j", "ㄐ"}, {"q", "ㄑ"}, {"x", "ㄒ"},
	{"r", "ㄖ"}, {"z", "ㄗ"}, {"c", "ㄘ"}, {"s", "ㄙ"},
}

var bopomofoFinals = map[string]string{
	"a": "ㄚ", "o": "ㄛ", "e": "ㄜ", "ê": "ㄝ",
	"ai": "ㄞ", "ei": "ㄟ", "ao": "ㄠ", "ou": "ㄡ",
	"an": "ㄢ", "en": "ㄣ", "ang": "ㄤ", "eng": "ㄥ",
	"er": "ㄦ", "ong": "ㄨㄥ",
	"i": "ㄧ", "ia": "ㄧㄚ", "ie": "ㄧㄝ", "iao": "ㄧㄠ", "iou": "ㄧㄡ",
	"ian": "ㄧㄢ", "in": "ㄧㄣ", "iang": "ㄧㄤ", "ing": "ㄧㄥ", "iong": "ㄩㄥ",
	"u": "ㄨ", "ua": "ㄨㄚ", "uo": "ㄨㄛ", "uai": "ㄨㄞ", "uei": "ㄨㄟ",
	"uan": "ㄨㄢ", "uen": "ㄨㄣ", "uang": "ㄨㄤ", "ueng": "ㄨㄥ",
	"ü": "ㄩ", "üe": "ㄩㄝ", "üan": "ㄩㄢ", "ün": "ㄩㄣ",
}

// y/w 开头的音节还原成带介音的韵母
var bopomofoZeroInitial = map[string]string{
	"yi": "i", "ya": "ia", "ye": "ie", "yao": "iao", "you": "iou",
	"yan": "ian", "yin": "in", "yang": "iang", "ying": "ing", "yong": "iong",
	"yu": "ü", "yue": "üe", "yuan": "üan", "yun": "ün",
	"wu": "u", "wa": "ua", "wo": "uo", "wai": "uai", "wei": "uei",
	"wan": "uan", "wen": "uen", "wang": "uang", "weng": "ueng",
}

// 声调符号，一声不标，轻声点在前面
var bopomofoTones = map[byte]string{'2': "ˊ", '3': "ˇ", '4': "ˋ"}

// Bopomofo 每个字一个 Segment，汉字带注音符号，空白和标点等不注音
func Bopomofo(text string) []Segment {
	segments := make([]Segment, 0, len(text))
	for _, r := range text {
		seg := Segment{Base: string(r)}
		if unicode.Is(unicode.Han, r) {
			if py := pinyin.SinglePinyin(r, tone3Args); len(py) > 0 {
				seg.Ruby = PinyinToBopomofo(py[0])
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

// PinyinToBopomofo 把数字声调拼音（ni3、lv4、de）转成注音（ㄋㄧˇ、ㄌㄩˋ、˙ㄉㄜ）。
// 无法识别的音节返回空串
func PinyinToBopomofo(syllable string) string {
	s := strings.ToLower(strings.TrimSpace(syllable))
	if s == "" {
		return ""
	}

	tone := byte('5')
	if last := s[len(s)-1]; last >= '0' && last <= '5' {
		tone = last
		s = s[:len(s)-1]
	}
	s = strings.NewReplacer("v", "ü", "u:", "ü").Replace(s)

	initial, final := splitSyllable(s)
	if initial == "" && final == "" {
		return ""
	}

	var b strings.Builder
	if tone == '5' || tone == '0' {
		b.WriteString("˙")
	}
	b.WriteString(initial)
	if final != "" {
		zhuyin, ok := bopomofoFinals[final]
		if !ok {
			return ""
		}
		b.WriteString(zhuyin)
	}
	b.WriteString(bopomofoTones[tone])
	return b.String()
}

func splitSyllable(s string) (initial, final string) {
	if f, ok := bopomofoZeroInitial[s]; ok {
		return "", f
	}
	if _, ok := bopomofoFinals[s]; ok {
		return "", s
	}

	for _, in := range bopomofoInitials {
		if !strings.HasPrefix(s, in.latin) {
			continue
		}
		rest := s[len(in.latin):]
		switch in.latin {
		case "zh", "ch", "sh", "r", "z", "c", "s":
			// zhi、ci 等只写声母
			if rest == "i" {
				return in.zhuyin, ""
			}
		case "j", "q", "x":
			if strings.HasPrefix(rest, "u") {
				rest = "ü" + rest[1:]
			}
		}
		switch rest {
		case "iu":
			rest = "iou"
		case "ui":
			rest = "uei"
		case "un":
			rest = "uen"
		}
		return in.zhuyin, rest
	}
	return "", ""
}
