package matcher

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reBracketed     = regexp.MustCompile(`[(\[{][^)\]}]*[)\]}]`)
	reVersionSuffix = regexp.MustCompile(`\s+[-–—]\s+[^-–—]*\b(remaster(ed)?|live|mono|stereo|version|edit|mix|demo|acoustic|instrumental|bonus track|deluxe)\b.*$`)
	reFeatSuffix    = regexp.MustCompile(`\s+(feat\.|ft\.|featuring)\s+.*$`)
	reApostrophe    = regexp.MustCompile("['’`]")
	reNonWord       = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reArtistSplit   = regexp.MustCompile(`\s*(,|;|&|\s(feat\.?|ft\.?|featuring)\s)\s*`)
	reSegmentSplit  = regexp.MustCompile(`\s+[-–—|]\s+`)
)

func stripDiacritics(s string) string {
	t := norm.NFD.String(s)
	out := make([]rune, 0, len(t))
	for _, r := range t {
		if unicode.IsMark(r) {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// squash lowercases, strips diacritics and punctuation, and collapses whitespace.
func squash(s string) string {
	s = stripDiacritics(strings.ToLower(s))
	s = reApostrophe.ReplaceAllString(s, "")
	s = reNonWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Normalize returns the comparison form of a title, album or artist string.
//
// The value is lowercased, diacritics are removed, bracketed segments such as "(Remastered)",
// "[Live]" or "(feat. X)" are dropped along with trailing " - Remastered 2009" style version
// suffixes, punctuation becomes whitespace and whitespace is collapsed.
func Normalize(s string) string {
	s = stripDiacritics(strings.ToLower(s))
	s = reBracketed.ReplaceAllString(s, " ")
	s = reVersionSuffix.ReplaceAllString(s, "")
	s = reFeatSuffix.ReplaceAllString(s, "")
	s = reApostrophe.ReplaceAllString(s, "")
	s = reNonWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeTitle is [Normalize], falling back to the punctuation-stripped title when the
// bracket and suffix rules would leave nothing (a track literally named "(Intro)").
func NormalizeTitle(s string) string {
	if n := Normalize(s); n != "" {
		return n
	}
	return squash(s)
}

// PrimaryArtist returns the normalized first artist of a credit such as "A, B" or "A feat. B".
func PrimaryArtist(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	if parts := reArtistSplit.Split(s, 2); len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		s = parts[0]
	}
	return Normalize(s)
}

// NormalizeTrackKey builds the "title|artist" key used to compare playlists.
func NormalizeTrackKey(title, artist string) string {
	return NormalizeTitle(title) + "|" + PrimaryArtist(artist)
}

// segments splits "Artist - Title" style strings and normalizes each part.
func segments(s string) []string {
	parts := reSegmentSplit.Split(s, -1)
	if len(parts) < 2 {
		return nil
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func sortedTokens(n string) string {
	toks := strings.Fields(n)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// containsWords reports whether needle appears in haystack on word boundaries.
func containsWords(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
