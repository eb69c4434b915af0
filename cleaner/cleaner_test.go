package cleaner

import (
	"testing"

	"github.com/ieee0824/corpusprep/corpus"
)

func TestCSJKana(t *testing.T) {
	c, err := For(corpus.CSJ, corpus.LabelKana)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"filler and disfluency", "(F えー)きょう(D は)あめ", "えーきょうはあめ"},
		{"uncertain", "(? あめ)がふる", "あめがふる"},
		{"uncertain alternatives", "(? あめ,あね)がふる", "あめがふる"},
		{"mispronunciation keeps true form", "(W ガッコ;ガッコウ)ニ", "ガッコウニ"},
		{"alphanumeric keeps read form", "(A エービーシー;ABC)デス", "ABCデス"},
		{"nested", "(F (D え)ー)ト", "えート"},
		{"nested inside alternative", "(W (F ア)ノ;アノ)", "アノ"},
		{"pause removed", "ソウ<P:00123.456-00124.001>デス", "ソウデス"},
		{"spaces removed", "ソウ デス　ネ", "ソウデスネ"},
		{"unreadable tag discards", "(R ×××)デス", ""},
		{"cross mark discards", "ソ×デス", ""},
		{"unterminated tag", "(F えー", "えー"},
		{"stray close", "あめ)がふる", "あめがふる"},
		{"stray angle", "あめ<がふる", "あめがふる"},
		{"bare parens", "(えー)です", "えーです"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Clean(tt.raw); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCSJKanji(t *testing.T) {
	c, err := For(corpus.CSJ, corpus.LabelKanji)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		raw  string
		want string
	}{
		{"(W 学校;学校)に", "学校に"},
		{"(W がっこ;学校)に", "がっこに"},
		{"ＡＢＣ１２３です", "ABC123です"},
		{"ＡＢ＿Ｃです", "ABCです"},
		{"(F えー)今日(D は)雨", "えー今日は雨"},
	}
	for _, tt := range tests {
		if got := c.Clean(tt.raw); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := map[corpus.Kind][]string{
		corpus.CSJ: {
			"(F えー)きょう(D は)あめ",
			"(W (F ア)ノ;アノ)(? カ,ガ)<H>",
			"((((F あ",
			"))あ((い;う)え",
			"(A ニジュウ;２０)ネン",
		},
		corpus.Switchboard: {
			"[laughter] i [laughter-think] so {uh} th[e]- the [noise] one_1",
			"<b_aside> [ex/except] that <e_aside>",
			"[[weird]] input ]",
		},
		corpus.Librispeech: {"HE HOPED THERE WOULD BE STEW"},
		corpus.TIMIT:       {"She had your dark suit in greasy wash water all year."},
	}
	labels := map[corpus.Kind]corpus.LabelType{
		corpus.CSJ:         corpus.LabelKana,
		corpus.Switchboard: corpus.LabelWord,
		corpus.Librispeech: corpus.LabelCharacter,
		corpus.TIMIT:       corpus.LabelCharacter,
	}
	for kind, raws := range inputs {
		c, err := For(kind, labels[kind])
		if err != nil {
			t.Fatal(err)
		}
		for _, raw := range raws {
			once := c.Clean(raw)
			twice := c.Clean(once)
			if once != twice {
				t.Errorf("%v: Clean not idempotent for %q: %q then %q", kind, raw, once, twice)
			}
		}
	}
}

func TestSwitchboard(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"[silence]", ""},
		{"Yeah [laughter] i [laughter-think] so", "yeah i think so"},
		{"{uh} that's th[e]- the one", "uh that's th- the one"},
		{"[ex/except] that_1", "except that"},
		{"<b_aside> okay <e_aside>", "okay"},
		{"[vocalized-noise] right [noise]", "right"},
		{"new_york city", "new york city"},
	}
	for _, tt := range tests {
		if got := Switchboard(tt.raw); got != tt.want {
			t.Errorf("Switchboard(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTIMIT(t *testing.T) {
	got := TIMIT("Don't ask me to carry an oily rag like that.")
	want := "don't ask me to carry an oily rag like that"
	if got != want {
		t.Errorf("TIMIT = %q, want %q", got, want)
	}
}

func TestForUnknownLabel(t *testing.T) {
	if _, err := For(corpus.Librispeech, corpus.LabelKana); err == nil {
		t.Error("expected error for librispeech kana")
	}
	if _, err := For(corpus.Kind(42), corpus.LabelWord); err == nil {
		t.Error("expected error for unknown corpus")
	}
}
