package valuation

import (
	"strings"

	"fantasy-pricing-lab/internal/domain"
)

// closerSaves is the normalized saves total that makes a reliever a closer.
const closerSaves = 10

var hitterPositions = map[string]string{
	"C":    domain.PosCatcher,
	"1B":   domain.PosFirstBase,
	"2B":   domain.PosSecondBase,
	"3B":   domain.PosThirdBase,
	"SS":   domain.PosShortstop,
	"OF":   domain.PosOutfield,
	"LF":   domain.PosOutfield,
	"CF":   domain.PosOutfield,
	"RF":   domain.PosOutfield,
	"DH":   domain.PosDesignated,
	"UT":   domain.PosDesignated,
	"UTIL": domain.PosDesignated,
}

// primaryToken returns the first listed position of a multi-position string.
func primaryToken(raw string) string {
	tokens := strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool {
		return r == '/' || r == ',' || r == '-' || r == ' '
	})
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// NormalizePosition maps a raw position to the fixed vocabulary for a role.
// Hitters outside the vocabulary become DH. Pitchers split into SP, RP and CL.
func NormalizePosition(raw string, role domain.Role, isStarter bool, saves float64) string {
	token := primaryToken(raw)
	if role == domain.RolePitcher {
		switch {
		case token == domain.PosCloser:
			return domain.PosCloser
		case isStarter:
			return domain.PosStarter
		case saves >= closerSaves:
			return domain.PosCloser
		}
		return domain.PosReliever
	}
	if pos, ok := hitterPositions[token]; ok {
		return pos
	}
	return domain.PosDesignated
}
