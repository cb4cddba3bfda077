package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

// GeneratedWord is one vocabulary record produced by the model.
type GeneratedWord struct {
	Kanji      string         `json:"kanji"`
	Romaji     string         `json:"romaji"`
	Vietnamese string         `json:"vietnamese"`
	JLPTLevel  string         `json:"jlpt_level"`
	Parts      []storage.Part `json:"parts"`
}

// Strategy names the step of the recovery chain that produced the words.
type Strategy string

const (
	StrategyStrict   Strategy = "strict"
	StrategyJSON5    Strategy = "json5"
	StrategyHuJSON   Strategy = "hujson"
	StrategyScanner  Strategy = "scanner"
	StrategyFallback Strategy = "fallback"
)

// ParseResult is the outcome of RecoverWords.
type ParseResult struct {
	Words    []GeneratedWord
	Strategy Strategy
}

var (
	thinkBlock    = regexp.MustCompile(`<think>[\s\S]*?</think>`)
	jsonCandidate = regexp.MustCompile(`(?s)(\[.*\]|\{.*\})`)
)

var requiredWordFields = []string{"kanji", "romaji", "vietnamese", "jlpt_level", "parts"}

type decodeFunc func(data []byte, v any) error

func decodeHuJSON(data []byte, v any) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(std, v)
}

var decoders = []struct {
	strategy Strategy
	decode   decodeFunc
}{
	{StrategyStrict, json.Unmarshal},
	{StrategyJSON5, json5.Unmarshal},
	{StrategyHuJSON, decodeHuJSON},
}

// cleanResponse drops reasoning blocks and markdown fences.
func cleanResponse(text string) string {
	text = thinkBlock.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// decodeWords accepts either an array of records or a single record.
func decodeWords(decode decodeFunc, data []byte) []GeneratedWord {
	var words []GeneratedWord
	if err := decode(data, &words); err == nil && len(words) > 0 {
		return words
	}
	var one GeneratedWord
	if err := decode(data, &one); err == nil && one.Kanji != "" {
		return []GeneratedWord{one}
	}
	return nil
}

// scanObjects returns every top-level {...} in text that decodes strictly,
// has all record fields, and has not been seen with the same kanji and level.
func scanObjects(text string) []GeneratedWord {
	var found []GeneratedWord
	seen := make(map[[2]string]bool)
	depth := 0
	start := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth != 0 || start < 0 {
				continue
			}
			obj := []byte(text[start : i+1])
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(obj, &fields); err != nil {
				continue
			}
			complete := true
			for _, f := range requiredWordFields {
				if _, ok := fields[f]; !ok {
					complete = false
					break
				}
			}
			if !complete {
				continue
			}
			var w GeneratedWord
			if err := json.Unmarshal(obj, &w); err != nil {
				continue
			}
			key := [2]string{w.Kanji, w.JLPTLevel}
			if seen[key] {
				continue
			}
			seen[key] = true
			found = append(found, w)
		}
	}
	return found
}

// RecoverWords extracts vocabulary records from a raw model response,
// trying progressively more lenient parsers before the fallback list for level.
func RecoverWords(text, level string) ParseResult {
	cleaned := cleanResponse(text)

	if candidate := jsonCandidate.FindString(cleaned); candidate != "" {
		for _, d := range decoders {
			if words := decodeWords(d.decode, []byte(candidate)); len(words) > 0 {
				return ParseResult{Words: words, Strategy: d.strategy}
			}
		}
	}

	if words := scanObjects(cleaned); len(words) > 0 {
		return ParseResult{Words: words, Strategy: StrategyScanner}
	}

	return ParseResult{Words: FallbackWords(level), Strategy: StrategyFallback}
}

func part(kanji string, romaji ...string) storage.Part {
	return storage.Part{Kanji: kanji, Romaji: romaji}
}

var fallbackVocabulary = map[string][]GeneratedWord{
	"N5": {
		{Kanji: "水", Romaji: "mizu", Vietnamese: "nước", JLPTLevel: "N5", Parts: []storage.Part{part("水", "mi", "zu")}},
		{Kanji: "食べる", Romaji: "taberu", Vietnamese: "ăn", JLPTLevel: "N5", Parts: []storage.Part{part("食", "ta"), part("べ", "be"), part("る", "ru")}},
		{Kanji: "大きい", Romaji: "ōkii", Vietnamese: "to", JLPTLevel: "N5", Parts: []storage.Part{part("大", "ō"), part("き", "ki"), part("い", "i")}},
	},
	"N4": {
		{Kanji: "準備", Romaji: "junbi", Vietnamese: "chuẩn bị", JLPTLevel: "N4", Parts: []storage.Part{part("準", "jun"), part("備", "bi")}},
		{Kanji: "説明", Romaji: "setsumei", Vietnamese: "giải thích", JLPTLevel: "N4", Parts: []storage.Part{part("説", "setsu"), part("明", "mei")}},
		{Kanji: "大切", Romaji: "taisetsu", Vietnamese: "quan trọng", JLPTLevel: "N4", Parts: []storage.Part{part("大", "tai"), part("切", "setsu")}},
	},
	"N3": {
		{Kanji: "改善", Romaji: "kaizen", Vietnamese: "cải thiện", JLPTLevel: "N3", Parts: []storage.Part{part("改", "kai"), part("善", "zen")}},
		{Kanji: "確認", Romaji: "kakunin", Vietnamese: "xác nhận", JLPTLevel: "N3", Parts: []storage.Part{part("確", "kaku"), part("認", "nin")}},
		{Kanji: "理解", Romaji: "rikai", Vietnamese: "hiểu", JLPTLevel: "N3", Parts: []storage.Part{part("理", "ri"), part("解", "kai")}},
	},
	"N2": {
		{Kanji: "実現", Romaji: "jitsugen", Vietnamese: "thực hiện", JLPTLevel: "N2", Parts: []storage.Part{part("実", "jitsu"), part("現", "gen")}},
		{Kanji: "影響", Romaji: "eikyō", Vietnamese: "ảnh hưởng", JLPTLevel: "N2", Parts: []storage.Part{part("影", "ei"), part("響", "kyō")}},
		{Kanji: "開発", Romaji: "kaihatsu", Vietnamese: "phát triển", JLPTLevel: "N2", Parts: []storage.Part{part("開", "kai"), part("発", "hatsu")}},
	},
	"N1": {
		{Kanji: "継続", Romaji: "keizoku", Vietnamese: "tiếp tục", JLPTLevel: "N1", Parts: []storage.Part{part("継", "kei"), part("続", "zoku")}},
		{Kanji: "促進", Romaji: "sokushin", Vietnamese: "thúc đẩy", JLPTLevel: "N1", Parts: []storage.Part{part("促", "soku"), part("進", "shin")}},
		{Kanji: "維持", Romaji: "iji", Vietnamese: "duy trì", JLPTLevel: "N1", Parts: []storage.Part{part("維", "i"), part("持", "ji")}},
	},
}

// FallbackWords returns a copy of the built-in list for level (N5 when unknown).
func FallbackWords(level string) []GeneratedWord {
	words, ok := fallbackVocabulary[level]
	if !ok {
		words = fallbackVocabulary["N5"]
	}
	out := make([]GeneratedWord, len(words))
	copy(out, words)
	return out
}
