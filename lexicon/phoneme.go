package lexicon

import "strings"

// Phoneme represents a Japanese phoneme.
type Phoneme string

const (
	// Silence and pause
	PhonSil Phoneme = "sil" // silence
	PhonSP  Phoneme = "sp"  // short pause

	// Vowels
	PhonA Phoneme = "a"
	PhonI Phoneme = "i"
	PhonU Phoneme = "u"
	PhonE Phoneme = "e"
	PhonO Phoneme = "o"

	// Stops (voiceless/voiced)
	PhonK Phoneme = "k"
	PhonG Phoneme = "g"
	PhonT Phoneme = "t"
	PhonD Phoneme = "d"
	PhonP Phoneme = "p"
	PhonB Phoneme = "b"

	// Fricatives
	PhonS Phoneme = "s"
	PhonZ Phoneme = "z"
	PhonH Phoneme = "h"
	PhonF Phoneme = "f" // [ɸ] as in ふ

	// Affricates
	PhonCh Phoneme = "ch" // [tɕ] as in ち
	PhonTs Phoneme = "ts" // [ts] as in つ
	PhonJ  Phoneme = "j"  // [dʑ] as in じ

	// Nasals
	PhonM  Phoneme = "m"
	PhonN  Phoneme = "n"
	PhonNg Phoneme = "ng" // moraic nasal ん

	// Liquid
	PhonR Phoneme = "r" // Japanese flap

	// Glides
	PhonY Phoneme = "y"
	PhonW Phoneme = "w"

	// Sibilant
	PhonSh Phoneme = "sh" // [ɕ] as in し

	// Special morae
	PhonQ    Phoneme = "q"    // geminate っ
	PhonLong Phoneme = "long" // long vowel ー
)

// AllPhonemes returns the built-in phoneme inventory, silence first.
func AllPhonemes() []Phoneme {
	return []Phoneme{
		PhonSil, PhonSP,
		PhonA, PhonI, PhonU, PhonE, PhonO,
		PhonK, PhonG, PhonT, PhonD, PhonP, PhonB,
		PhonS, PhonZ, PhonH, PhonF,
		PhonCh, PhonTs, PhonJ,
		PhonM, PhonN, PhonNg,
		PhonR,
		PhonY, PhonW,
		PhonSh,
		PhonQ, PhonLong,
	}
}

// Symbols converts phonemes to their label symbols.
func Symbols(ps []Phoneme) []string {
	ss := make([]string, len(ps))
	for i, p := range ps {
		ss[i] = string(p)
	}
	return ss
}

// PhoneString joins a phoneme sequence with single spaces.
func PhoneString(ps []Phoneme) string { return strings.Join(Symbols(ps), " ") }
