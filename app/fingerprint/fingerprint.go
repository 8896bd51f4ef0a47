package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"unicode"

	"github.com/lysyi3m/deal-comb/app/fetch"
)

// Item is a candidate annotated with its content fingerprint and the
// normalized signature used for similarity comparison.
type Item struct {
	fetch.Candidate

	Fingerprint string
	Signature   string
	HotScore    float64
}

// Run derives a stable fingerprint and comparable signature from a
// candidate. Two fetches of an unchanged item yield the same fingerprint
// even if surface formatting differs. Pure function; a malformed or empty
// title degrades to a fingerprint over the URL alone.
func Run(c fetch.Candidate) Item {
	signature := Normalize(c.Title)

	content := signature + "|" + domain(c.URL)
	if signature == "" {
		content = c.URL
	}

	hash := sha256.Sum256([]byte(content))

	return Item{
		Candidate:   c,
		Fingerprint: hex.EncodeToString(hash[:]),
		Signature:   signature,
		HotScore:    HotScore(c.Title + " " + c.Body),
	}
}

// Normalize case-folds the title, strips punctuation and collapses
// whitespace runs, producing the signature text similarity runs over.
func Normalize(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
