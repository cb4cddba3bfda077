package reading

import (
	"reflect"
	"testing"
)

func TestSyllables(t *testing.T) {
	tests := []struct {
		kana string
		want []string
	}{
		{"ヤマ", []string{"ya", "ma"}},
		{"たべる", []string{"ta", "be", "ru"}},
		{"ガッコウ", []string{"ga", "kko", "u"}},
		{"キョウ", []string{"kyo", "u"}},
		{"マッチャ", []string{"ma", "tcha"}},
		{"コーヒー", []string{"ko", "o", "hi", "i"}},
		{"シンブン", []string{"shi", "n", "bu", "n"}},
		{"ジュンビ", []string{"ju", "n", "bi"}},
		{"ABC", []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		if got := Syllables(tt.kana); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Syllables(%q) = %v, want %v", tt.kana, got, tt.want)
		}
	}
}

func TestRomanize(t *testing.T) {
	if got := Romanize("ちゃっと"); got != "chatto" {
		t.Errorf("Romanize = %q, want chatto", got)
	}
	if got := Romanize("いっちょう"); got != "itchou" {
		t.Errorf("Romanize = %q, want itchou", got)
	}
}

func TestIsKana(t *testing.T) {
	for s, want := range map[string]bool{
		"ひらがな": true,
		"カタカナー": true,
		"漢字": false,
		"": false,
		"かa": false,
	} {
		if got := IsKana(s); got != want {
			t.Errorf("IsKana(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestAnalyzerBreakdown(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}

	parts, romaji := a.Breakdown("山")
	if romaji != "yama" {
		t.Errorf("romaji = %q, want yama", romaji)
	}
	if len(parts) != 1 || parts[0].Kanji != "山" || !reflect.DeepEqual(parts[0].Romaji, []string{"ya", "ma"}) {
		t.Errorf("parts = %+v", parts)
	}

	parts, romaji = a.Breakdown("学校へ行く")
	if romaji != "gakkouheiku" {
		t.Errorf("romaji = %q, want gakkouheiku", romaji)
	}
	if len(parts) != 3 || parts[0].Kanji != "学校" {
		t.Errorf("parts = %+v", parts)
	}
}

func TestAnalyzerTokensSkipsWhitespace(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}
	for _, tok := range a.Tokens("猫 が いる") {
		if tok.Surface == " " {
			t.Error("whitespace token returned")
		}
	}
}
