// Package reading derives word breakdowns and romanization from Japanese
// text using morphological analysis.
package reading

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

// Analyzer tokenizes text with the IPA dictionary.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer loads the dictionary and returns an analyzer.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Token is one analyzed unit.
type Token struct {
	Surface string
	Reading string // katakana
	POS     string
}

// Tokens splits text into tokens, dropping whitespace.
func (a *Analyzer) Tokens(text string) []Token {
	var out []Token
	for _, tok := range a.t.Tokenize(text) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		features := tok.Features()
		t := Token{Surface: tok.Surface}
		if len(features) > 0 {
			t.POS = features[0]
		}
		// IPA feature 7 is the katakana reading.
		if len(features) > 7 && features[7] != "*" {
			t.Reading = features[7]
		} else if IsKana(tok.Surface) {
			t.Reading = toKatakana(tok.Surface)
		}
		out = append(out, t)
	}
	return out
}

// Breakdown returns one part per token with its romaji syllables, plus the
// romanization of the whole word. Tokens without a reading keep their surface
// form lowercased as the only syllable.
func (a *Analyzer) Breakdown(word string) ([]storage.Part, string) {
	parts := []storage.Part{}
	var romaji strings.Builder
	for _, tok := range a.Tokens(word) {
		var syl []string
		if tok.Reading != "" {
			syl = Syllables(tok.Reading)
		} else {
			syl = []string{strings.ToLower(tok.Surface)}
		}
		parts = append(parts, storage.Part{Kanji: tok.Surface, Romaji: syl})
		romaji.WriteString(strings.Join(syl, ""))
	}
	return parts, romaji.String()
}
