// Package assessment models EGRA learner records and derives per-item and
// per-letter results from the raw survey export cells.
package assessment

// Domain identifies one section of the EGRA instrument.
type Domain string

const (
	Letters  Domain = "letters"
	NonWords Domain = "nonwords"
	Words    Domain = "words"
)

// Domains lists the instrument sections in administration order.
var Domains = []Domain{Letters, NonWords, Words}

// Round identifies the assessment attempt. Round a2 is a reassessment of
// the same learner later in the year; when its score is present it replaces
// a1 entirely.
type Round string

const (
	RoundA1 Round = "a1"
	RoundA2 Round = "a2"
)

// letterItems is the letter chart of the assessment instrument. The chart
// order is fixed per instrument but deliberately does not follow the
// teaching sequence, and labels mix upper and lower case; lowercasing a
// label yields the canonical letter.
var letterItems = []string{
	"M", "a", "S", "e", "b", "O", "l", "i", "K", "u",
	"p", "H", "z", "N", "d", "Y", "f", "W", "v", "X",
	"g", "T", "q", "R", "c", "J",
}

// nonWordItems is the invented-syllable chart (50 items).
var nonWordItems = []string{
	"ba", "be", "bi", "bo", "bu",
	"la", "le", "li", "lo", "lu",
	"ma", "me", "mi", "mo", "mu",
	"ka", "ke", "ki", "ko", "ku",
	"pa", "pe", "pi", "po", "pu",
	"sa", "se", "si", "so", "su",
	"ha", "he", "hi", "ho", "hu",
	"za", "ze", "zi", "zo", "zu",
	"na", "ne", "ni", "no", "nu",
	"da", "de", "di", "do", "du",
}

// wordItems is the real-word chart (50 items).
var wordItems = []string{
	"umama", "utata", "usisi", "ubhuti", "imoto",
	"ikati", "inja", "ihashe", "ibhola", "incwadi",
	"usana", "umfundi", "ititshala", "isikolo", "ikhaya",
	"amanzi", "ukutya", "isitya", "imbiza", "umlilo",
	"ilanga", "inyanga", "izulu", "umoya", "intaka",
	"intlanzi", "igusha", "ibhokhwe", "inkomo", "ihagu",
	"umthi", "intyatyambo", "ingca", "amatye", "indlela",
	"ibhasi", "uloliwe", "isitulo", "itafile", "ucango",
	"ifestile", "ibhedi", "ingubo", "isihlangu", "iminwe",
	"iinwele", "amehlo", "indlebe", "impumlo", "umlomo",
}

// Items returns the fixed item-label chart for a domain. Index 1 in the
// column convention corresponds to the first element of the returned slice.
func Items(d Domain) []string {
	switch d {
	case Letters:
		return letterItems
	case NonWords:
		return nonWordItems
	case Words:
		return wordItems
	}
	return nil
}

// ItemCount returns the number of items on a domain's chart.
func ItemCount(d Domain) int {
	return len(Items(d))
}

// ItemLabel returns the chart label at the given 1-based index, or "" when
// the index is outside the chart.
func ItemLabel(d Domain, index int) string {
	items := Items(d)
	if index < 1 || index > len(items) {
		return ""
	}
	return items[index-1]
}
