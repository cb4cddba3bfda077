package reading

import "strings"

// monographs maps single katakana to Hepburn romaji.
var monographs = map[rune]string{
	'ア': "a", 'イ': "i", 'ウ': "u", 'エ': "e", 'オ': "o",
	'カ': "ka", 'キ': "ki", 'ク': "ku", 'ケ': "ke", 'コ': "ko",
	'ガ': "ga", 'ギ': "gi", 'グ': "gu", 'ゲ': "ge", 'ゴ': "go",
	'サ': "sa", 'シ': "shi", 'ス': "su", 'セ': "se", 'ソ': "so",
	'ザ': "za", 'ジ': "ji", 'ズ': "zu", 'ゼ': "ze", 'ゾ': "zo",
	'タ': "ta", 'チ': "chi", 'ツ': "tsu", 'テ': "te", 'ト': "to",
	'ダ': "da", 'ヂ': "ji", 'ヅ': "zu", 'デ': "de", 'ド': "do",
	'ナ': "na", 'ニ': "ni", 'ヌ': "nu", 'ネ': "ne", 'ノ': "no",
	'ハ': "ha", 'ヒ': "hi", 'フ': "fu", 'ヘ': "he", 'ホ': "ho",
	'バ': "ba", 'ビ': "bi", 'ブ': "bu", 'ベ': "be", 'ボ': "bo",
	'パ': "pa", 'ピ': "pi", 'プ': "pu", 'ペ': "pe", 'ポ': "po",
	'マ': "ma", 'ミ': "mi", 'ム': "mu", 'メ': "me", 'モ': "mo",
	'ヤ': "ya", 'ユ': "yu", 'ヨ': "yo",
	'ラ': "ra", 'リ': "ri", 'ル': "ru", 'レ': "re", 'ロ': "ro",
	'ワ': "wa", 'ヰ': "i", 'ヱ': "e", 'ヲ': "o", 'ン': "n",
	'ヴ': "vu",
	'ァ': "a", 'ィ': "i", 'ゥ': "u", 'ェ': "e", 'ォ': "o",
	'ャ': "ya", 'ュ': "yu", 'ョ': "yo", 'ヮ': "wa",
}

// digraphs maps a katakana followed by a small kana to one syllable.
var digraphs = map[string]string{
	"キャ": "kya", "キュ": "kyu", "キョ": "kyo",
	"ギャ": "gya", "ギュ": "gyu", "ギョ": "gyo",
	"シャ": "sha", "シュ": "shu", "ショ": "sho", "シェ": "she",
	"ジャ": "ja", "ジュ": "ju", "ジョ": "jo", "ジェ": "je",
	"チャ": "cha", "チュ": "chu", "チョ": "cho", "チェ": "che",
	"ヂャ": "ja", "ヂュ": "ju", "ヂョ": "jo",
	"ニャ": "nya", "ニュ": "nyu", "ニョ": "nyo",
	"ヒャ": "hya", "ヒュ": "hyu", "ヒョ": "hyo",
	"ビャ": "bya", "ビュ": "byu", "ビョ": "byo",
	"ピャ": "pya", "ピュ": "pyu", "ピョ": "pyo",
	"ミャ": "mya", "ミュ": "myu", "ミョ": "myo",
	"リャ": "rya", "リュ": "ryu", "リョ": "ryo",
	"ファ": "fa", "フィ": "fi", "フェ": "fe", "フォ": "fo",
	"ティ": "ti", "ディ": "di", "トゥ": "tu", "ドゥ": "du",
	"ウィ": "wi", "ウェ": "we", "ウォ": "wo",
	"ヴァ": "va", "ヴィ": "vi", "ヴェ": "ve", "ヴォ": "vo",
}

// toKatakana shifts hiragana into the katakana block.
func toKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + 0x60
		}
		return r
	}, s)
}

// IsKana reports whether s is non-empty and made only of kana.
func IsKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'ぁ' && r <= 'ゖ') && !(r >= 'ァ' && r <= 'ヺ') && r != 'ー' {
			return false
		}
	}
	return true
}

// Syllables romanizes a kana string into Hepburn syllables, one per mora.
// A sokuon doubles the next consonant and ー repeats the previous vowel.
func Syllables(kana string) []string {
	runes := []rune(toKatakana(kana))
	out := []string{}
	geminate := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == 'ッ' {
			geminate = true
			continue
		}
		if r == 'ー' {
			if n := len(out); n > 0 {
				last := out[n-1]
				out = append(out, last[len(last)-1:])
			}
			continue
		}

		var syl string
		if i+1 < len(runes) {
			if d, ok := digraphs[string(runes[i:i+2])]; ok {
				syl = d
				i++
			}
		}
		if syl == "" {
			m, ok := monographs[r]
			if !ok {
				geminate = false
				out = append(out, string(r))
				continue
			}
			syl = m
		}

		if geminate {
			if strings.HasPrefix(syl, "ch") {
				syl = "t" + syl
			} else if c := syl[0]; !strings.ContainsRune("aeioun", rune(c)) {
				syl = string(c) + syl
			}
			geminate = false
		}
		out = append(out, syl)
	}
	return out
}

// Romanize joins the syllables of kana.
func Romanize(kana string) string {
	return strings.Join(Syllables(kana), "")
}
