package track

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Version qualifiers in parentheses or brackets: "(Full Mix)", "[Stem 2]",
	// "(Radio Edit)", "(30s)", "(Instrumental)"
	bracketVersionRe = regexp.MustCompile(`(?i)\s*[\(\[][^)\]]*?(full mix|full|stem|alt|edit|remix|instrumental|vocal|version|mix|underscore|sting|bumper|\d+\s*s(ec(ond)?s?)?)[^)\]]*[\)\]]`)

	// Trailing version markers after a hyphen, underscore or space:
	// "Track - Full Mix", "track_stem", "Track 30s"
	trailingVersionRe = regexp.MustCompile(`(?i)[\s_-]+(full( mix)?|stem(s)?( ?\d+)?|alt( ?\d+)?|edit|remix|instrumental|vocal(s)?|mix|version|underscore|sting|bumper|no (vox|drums|perc)|\d+\s*s(ec(ond)?s?)?)$`)

	// Production tokens dropped by the loose key regardless of position
	looseTokenRe = regexp.MustCompile(`(?i)\b(stem(s)?|fx|sfx|riser(s)?|drone(s)?|sweetener(s)?)\b`)

	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeKey canonicalizes a raw track name into a stable matching key.
// Deterministic, pure and idempotent: the output contains only [a-z0-9], so
// normalizing an already-normalized key is a no-op. Empty input stays empty.
func NormalizeKey(name string) string {
	if name == "" {
		return ""
	}

	s := norm.NFC.String(name)
	s = strings.ToLower(s)

	// Qualifiers stack ("Track (Full Mix) (30s)" or "Track - Stem - Alt"),
	// so strip until a fixed point
	prev := ""
	for s != prev {
		prev = s
		s = bracketVersionRe.ReplaceAllString(s, " ")
		s = trailingVersionRe.ReplaceAllString(s, "")
	}

	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = nonAlnumRe.ReplaceAllString(s, "")

	return s
}

// LooseKey applies a lighter normalization that additionally drops stem/fx
// production tokens wherever they appear. Used only for the containment test.
func LooseKey(name string) string {
	if name == "" {
		return ""
	}

	s := norm.NFC.String(name)
	s = strings.ToLower(s)
	s = bracketVersionRe.ReplaceAllString(s, " ")
	s = looseTokenRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = nonAlnumRe.ReplaceAllString(s, "")

	return s
}

// SameTrack reports whether two raw names refer to the same track: their
// loose keys are equal or one contains the other. The containment rule is
// intentionally permissive and produces false positives on very short names
// (e.g. "Hit" is contained in "Fire Thunder Hit"); callers that cannot
// tolerate that must compare NormalizeKey values for equality instead.
func SameTrack(a, b string) bool {
	ka := LooseKey(a)
	kb := LooseKey(b)
	if ka == "" || kb == "" {
		return false
	}
	return ka == kb || strings.Contains(ka, kb) || strings.Contains(kb, ka)
}

// NormalizeCatalog canonicalizes a catalog code for use as a pattern key
func NormalizeCatalog(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeLibrary canonicalizes a library name for use as a pattern key
func NormalizeLibrary(library string) string {
	return strings.ToLower(strings.TrimSpace(library))
}
