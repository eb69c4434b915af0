package lexicon

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownKana is returned when a kana symbol has no phone mapping.
var ErrUnknownKana = errors.New("kana not in phone map")

// p is a shorthand to build a phoneme slice.
func p(ps ...Phoneme) []Phoneme { return ps }

// kanaPhonemes maps katakana strings to phoneme sequences.
// Two-character entries (yōon) are checked before single characters (longest match).
var kanaPhonemes = []struct {
	kana     string
	phonemes []Phoneme
}{
	// 拗音 (2文字)
	{"キャ", p(PhonK, PhonY, PhonA)},
	{"キュ", p(PhonK, PhonY, PhonU)},
	{"キョ", p(PhonK, PhonY, PhonO)},
	{"ギャ", p(PhonG, PhonY, PhonA)},
	{"ギュ", p(PhonG, PhonY, PhonU)},
	{"ギョ", p(PhonG, PhonY, PhonO)},
	{"シャ", p(PhonSh, PhonA)},
	{"シュ", p(PhonSh, PhonU)},
	{"ショ", p(PhonSh, PhonO)},
	{"ジャ", p(PhonJ, PhonA)},
	{"ジュ", p(PhonJ, PhonU)},
	{"ジョ", p(PhonJ, PhonO)},
	{"チャ", p(PhonCh, PhonA)},
	{"チュ", p(PhonCh, PhonU)},
	{"チョ", p(PhonCh, PhonO)},
	{"ニャ", p(PhonN, PhonY, PhonA)},
	{"ニュ", p(PhonN, PhonY, PhonU)},
	{"ニョ", p(PhonN, PhonY, PhonO)},
	{"ヒャ", p(PhonH, PhonY, PhonA)},
	{"ヒュ", p(PhonH, PhonY, PhonU)},
	{"ヒョ", p(PhonH, PhonY, PhonO)},
	{"ビャ", p(PhonB, PhonY, PhonA)},
	{"ビュ", p(PhonB, PhonY, PhonU)},
	{"ビョ", p(PhonB, PhonY, PhonO)},
	{"ピャ", p(PhonP, PhonY, PhonA)},
	{"ピュ", p(PhonP, PhonY, PhonU)},
	{"ピョ", p(PhonP, PhonY, PhonO)},
	{"ミャ", p(PhonM, PhonY, PhonA)},
	{"ミュ", p(PhonM, PhonY, PhonU)},
	{"ミョ", p(PhonM, PhonY, PhonO)},
	{"リャ", p(PhonR, PhonY, PhonA)},
	{"リュ", p(PhonR, PhonY, PhonU)},
	{"リョ", p(PhonR, PhonY, PhonO)},
	{"ティ", p(PhonT, PhonI)},
	{"ディ", p(PhonD, PhonI)},
	{"ファ", p(PhonF, PhonA)},
	{"フィ", p(PhonF, PhonI)},
	{"フェ", p(PhonF, PhonE)},
	{"フォ", p(PhonF, PhonO)},
	{"フュ", p(PhonF, PhonY, PhonU)},
	// 外来語拗音
	{"チェ", p(PhonCh, PhonE)},
	{"シェ", p(PhonSh, PhonE)},
	{"ジェ", p(PhonJ, PhonE)},
	{"ウィ", p(PhonU, PhonI)},
	{"ウェ", p(PhonU, PhonE)},
	{"ウォ", p(PhonU, PhonO)},
	{"ヴァ", p(PhonB, PhonA)},
	{"ヴィ", p(PhonB, PhonI)},
	{"ヴェ", p(PhonB, PhonE)},
	{"ヴォ", p(PhonB, PhonO)},
	{"トゥ", p(PhonT, PhonU)},
	{"ドゥ", p(PhonD, PhonU)},
	{"デュ", p(PhonD, PhonY, PhonU)},
	{"テュ", p(PhonT, PhonY, PhonU)},
	{"ツァ", p(PhonTs, PhonA)},
	{"ツィ", p(PhonTs, PhonI)},
	{"ツェ", p(PhonTs, PhonE)},
	{"ツォ", p(PhonTs, PhonO)},
	{"イェ", p(PhonI, PhonE)},
	{"クァ", p(PhonK, PhonW, PhonA)},
	{"グァ", p(PhonG, PhonW, PhonA)},

	// 単独カナ
	// ア行
	{"ア", p(PhonA)},
	{"イ", p(PhonI)},
	{"ウ", p(PhonU)},
	{"エ", p(PhonE)},
	{"オ", p(PhonO)},
	// カ行
	{"カ", p(PhonK, PhonA)},
	{"キ", p(PhonK, PhonI)},
	{"ク", p(PhonK, PhonU)},
	{"ケ", p(PhonK, PhonE)},
	{"コ", p(PhonK, PhonO)},
	// ガ行
	{"ガ", p(PhonG, PhonA)},
	{"ギ", p(PhonG, PhonI)},
	{"グ", p(PhonG, PhonU)},
	{"ゲ", p(PhonG, PhonE)},
	{"ゴ", p(PhonG, PhonO)},
	// サ行
	{"サ", p(PhonS, PhonA)},
	{"シ", p(PhonSh, PhonI)},
	{"ス", p(PhonS, PhonU)},
	{"セ", p(PhonS, PhonE)},
	{"ソ", p(PhonS, PhonO)},
	// ザ行
	{"ザ", p(PhonZ, PhonA)},
	{"ジ", p(PhonJ, PhonI)},
	{"ズ", p(PhonZ, PhonU)},
	{"ゼ", p(PhonZ, PhonE)},
	{"ゾ", p(PhonZ, PhonO)},
	// タ行
	{"タ", p(PhonT, PhonA)},
	{"チ", p(PhonCh, PhonI)},
	{"ツ", p(PhonTs, PhonU)},
	{"テ", p(PhonT, PhonE)},
	{"ト", p(PhonT, PhonO)},
	// ダ行
	{"ダ", p(PhonD, PhonA)},
	{"ヂ", p(PhonJ, PhonI)},
	{"ヅ", p(PhonZ, PhonU)},
	{"デ", p(PhonD, PhonE)},
	{"ド", p(PhonD, PhonO)},
	// ナ行
	{"ナ", p(PhonN, PhonA)},
	{"ニ", p(PhonN, PhonI)},
	{"ヌ", p(PhonN, PhonU)},
	{"ネ", p(PhonN, PhonE)},
	{"ノ", p(PhonN, PhonO)},
	// ハ行
	{"ハ", p(PhonH, PhonA)},
	{"ヒ", p(PhonH, PhonI)},
	{"フ", p(PhonF, PhonU)},
	{"ヘ", p(PhonH, PhonE)},
	{"ホ", p(PhonH, PhonO)},
	// バ行
	{"バ", p(PhonB, PhonA)},
	{"ビ", p(PhonB, PhonI)},
	{"ブ", p(PhonB, PhonU)},
	{"ベ", p(PhonB, PhonE)},
	{"ボ", p(PhonB, PhonO)},
	// パ行
	{"パ", p(PhonP, PhonA)},
	{"ピ", p(PhonP, PhonI)},
	{"プ", p(PhonP, PhonU)},
	{"ペ", p(PhonP, PhonE)},
	{"ポ", p(PhonP, PhonO)},
	// マ行
	{"マ", p(PhonM, PhonA)},
	{"ミ", p(PhonM, PhonI)},
	{"ム", p(PhonM, PhonU)},
	{"メ", p(PhonM, PhonE)},
	{"モ", p(PhonM, PhonO)},
	// ヤ行
	{"ヤ", p(PhonY, PhonA)},
	{"ユ", p(PhonY, PhonU)},
	{"ヨ", p(PhonY, PhonO)},
	// ラ行
	{"ラ", p(PhonR, PhonA)},
	{"リ", p(PhonR, PhonI)},
	{"ル", p(PhonR, PhonU)},
	{"レ", p(PhonR, PhonE)},
	{"ロ", p(PhonR, PhonO)},
	// ワ行
	{"ワ", p(PhonW, PhonA)},
	{"ヲ", p(PhonO)},
	// 小文字母音 (外来語フォールバック)
	{"ァ", p(PhonA)},
	{"ィ", p(PhonI)},
	{"ゥ", p(PhonU)},
	{"ェ", p(PhonE)},
	{"ォ", p(PhonO)},
	// 特殊
	{"ン", p(PhonNg)},
	{"ッ", p(PhonQ)},
	{"ー", p(PhonLong)},
	// ヴ (外来語)
	{"ヴ", p(PhonB, PhonU)},
}

// PhoneMap converts kana strings to phone sequences by greedy longest match,
// trying two-character entries (yōon, foreign combinations) before single
// characters.
type PhoneMap struct {
	two map[string][]Phoneme
	one map[string][]Phoneme
}

// NewPhoneMap creates an empty map.
func NewPhoneMap() *PhoneMap {
	return &PhoneMap{
		two: make(map[string][]Phoneme),
		one: make(map[string][]Phoneme),
	}
}

var defaultMap = func() *PhoneMap {
	m := NewPhoneMap()
	for _, e := range kanaPhonemes {
		if err := m.Add(e.kana, e.phonemes); err != nil {
			panic(err)
		}
	}
	return m
}()

// DefaultPhoneMap returns the built-in katakana table.
func DefaultPhoneMap() *PhoneMap { return defaultMap }

// Add registers a one- or two-character kana entry.
func (m *PhoneMap) Add(kana string, phonemes []Phoneme) error {
	kana = ToKatakana(kana)
	switch len([]rune(kana)) {
	case 1:
		m.one[kana] = phonemes
	case 2:
		m.two[kana] = phonemes
	default:
		return errors.Errorf("kana entry %q: want 1 or 2 characters", kana)
	}
	return nil
}

// Len returns the number of entries.
func (m *PhoneMap) Len() int { return len(m.one) + len(m.two) }

// Phones converts kana (katakana or hiragana) to phonemes.
// A symbol absent from the map yields ErrUnknownKana.
func (m *PhoneMap) Phones(kana string) ([]Phoneme, error) {
	runes := []rune(ToKatakana(kana))
	var result []Phoneme
	for i := 0; i < len(runes); {
		// Try 2-char match first (longest match)
		if i+1 < len(runes) {
			if ph, ok := m.two[string(runes[i:i+2])]; ok {
				result = append(result, ph...)
				i += 2
				continue
			}
		}
		key := string(runes[i : i+1])
		ph, ok := m.one[key]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownKana, "%q in %q", key, kana)
		}
		result = append(result, ph...)
		i++
	}
	return result, nil
}

// KanaToPhonemes converts kana with the built-in table.
func KanaToPhonemes(kana string) ([]Phoneme, error) {
	return defaultMap.Phones(kana)
}

// ToKatakana folds hiragana to katakana; other runes are unchanged.
func ToKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + 0x60
		}
		return r
	}, s)
}

// LoadPhoneMap reads a phone map replacing the built-in table.
// Format: kana<TAB>phone1 phone2 ... (one entry per line, # comments).
func LoadPhoneMap(r io.Reader) (*PhoneMap, error) {
	m := NewPhoneMap()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) < 2 {
			return nil, errors.Errorf("line %d: expected 2 tab-separated fields, got %d", lineNum, len(parts))
		}
		fields := strings.Fields(parts[1])
		phonemes := make([]Phoneme, len(fields))
		for i, f := range fields {
			phonemes[i] = Phoneme(f)
		}
		if err := m.Add(parts[0], phonemes); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadPhoneMapFile is a convenience wrapper that opens a file path.
func LoadPhoneMapFile(path string) (*PhoneMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPhoneMap(f)
}
