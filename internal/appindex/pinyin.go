package appindex

import (
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"
)

var pinyinArgs = gopinyin.NewArgs()

// heteronymOverrides fixes characters whose dictionary-first reading is not
// the one used in app names (音乐 is yinyue, not yinle; 银行 is yinhang).
var heteronymOverrides = map[rune]string{
	'乐': "yue",
	'行': "hang",
}

// ToPinyin converts a mixed CJK/Latin name into (full, initials):
// each Hanyu character contributes its full syllable and its first letter,
// each alphanumeric character its lowercase form in both, everything else is
// skipped.
//
//	微信          -> ("weixin", "wx")
//	QQ音乐        -> ("qqyinyue", "qqyy")
//	Chrome 浏览器 -> ("chromeliulanqi", "chromellq")
func ToPinyin(text string) (full, initials string) {
	var f, ini strings.Builder
	for _, r := range text {
		if syl := pinyinFor(r); syl != "" {
			f.WriteString(syl)
			ini.WriteByte(syl[0])
			continue
		}
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			lower := unicode.ToLower(r)
			f.WriteRune(lower)
			ini.WriteRune(lower)
		}
	}
	return f.String(), ini.String()
}

func pinyinFor(r rune) string {
	if syl, ok := heteronymOverrides[r]; ok {
		return syl
	}
	syls := gopinyin.SinglePinyin(r, pinyinArgs)
	if len(syls) == 0 {
		return ""
	}
	return syls[0]
}
