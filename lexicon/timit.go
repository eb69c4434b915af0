package lexicon

// TIMITPhones lists the 61 phones of the TIMIT transcriptions.
var TIMITPhones = []string{"iy", "ih", "eh", "ae", "ix", "ax", "ah", "uw", "ux", "uh", "ao", "aa", "ey",
	"ay", "oy", "aw", "ow", "l", "el", "r", "y", "w", "er", "axr", "m", "em", "n", "nx", "en", "ng",
	"eng", "ch", "jh", "dh", "b", "d", "dx", "g", "p", "t", "k", "z", "zh", "v", "f", "th", "s", "sh",
	"hh", "hv", "pcl", "tcl", "kcl", "bcl", "dcl", "gcl", "epi", "h#", "pau", "q", "ax-h"}

// timitFold collapses the 61 TIMIT phones to the 39-phone recognition set
// (Lee & Hon, 1989). Phones not listed map to themselves; "q" is removed.
var timitFold = map[string]string{
	"ao":   "aa",
	"ax":   "ah",
	"ax-h": "ah",
	"axr":  "er",
	"hv":   "hh",
	"ix":   "ih",
	"el":   "l",
	"em":   "m",
	"en":   "n",
	"nx":   "n",
	"eng":  "ng",
	"zh":   "sh",
	"ux":   "uw",
	"pcl":  "sil",
	"tcl":  "sil",
	"kcl":  "sil",
	"bcl":  "sil",
	"dcl":  "sil",
	"gcl":  "sil",
	"h#":   "sil",
	"pau":  "sil",
	"epi":  "sil",
	"q":    "",
}

// FoldTIMIT maps a 61-set phone to the 39-set. ok is false when the phone
// is dropped from the folded transcription.
func FoldTIMIT(phone string) (folded string, ok bool) {
	if f, found := timitFold[phone]; found {
		return f, f != ""
	}
	return phone, true
}

// FoldTIMITSequence folds a phone sequence and merges the adjacent
// silences that closures produce.
func FoldTIMITSequence(phones []string) []string {
	out := make([]string, 0, len(phones))
	for _, ph := range phones {
		f, ok := FoldTIMIT(ph)
		if !ok {
			continue
		}
		if f == "sil" && len(out) > 0 && out[len(out)-1] == "sil" {
			continue
		}
		out = append(out, f)
	}
	return out
}
