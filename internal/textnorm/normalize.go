package textnorm

import (
	"strings"
	"unicode"
)

// Generic prefixes users attach to entity names. Stripped before structured
// lookups so "Dr. Ahmed" and "Ahmed" hit the same rows.
var genericPrefixes = []string{
	"hospital ",
	"clinic ",
	"center ",
	"centre ",
	"dr. ",
	"dr ",
	"doctor ",
	"prof. ",
	"prof ",
	"professor ",
	"مستشفى ",
	"مستشفي ",
	"عيادة ",
	"مركز ",
	"دكتور ",
	"دكتورة ",
	"د. ",
	"الدكتور ",
	"الدكتورة ",
}

// Normalize folds a question into its canonical search form: Arabic
// diacritics removed, alef/ya/ta-marbuta variants unified, tatweel dropped,
// whitespace collapsed, letters lowercased.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r >= 0x064B && r <= 0x065F: // harakat and Quranic marks
			continue
		case r == 0x0640: // tatweel
			continue
		case r == 'أ' || r == 'إ' || r == 'آ' || r == 'ٱ':
			r = 'ا'
		case r == 'ى':
			r = 'ي'
		case r == 'ة':
			r = 'ه'
		}
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			if b.Len() > 0 {
				b.WriteRune(' ')
			}
			space = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// CleanTerm normalizes an entity name and strips one leading generic prefix
// ("Dr", "Hospital", "مستشفى", ...). Prefixes are matched after
// normalization, so "Dr." and "dr" behave the same.
func CleanTerm(s string) string {
	out := Normalize(s)
	for _, p := range genericPrefixes {
		p = Normalize(p) + " "
		if strings.HasPrefix(out, p) {
			out = strings.TrimPrefix(out, p)
			break
		}
	}
	return strings.TrimSpace(out)
}

// IsArabic reports whether the text is predominantly Arabic script. Used as
// the language hint when the caller supplies none.
func IsArabic(s string) bool {
	arabic, letters := 0, 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Arabic, r) {
			arabic++
		}
	}
	return letters > 0 && arabic*2 > letters
}
