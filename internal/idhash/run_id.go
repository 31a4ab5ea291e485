package idhash

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"

	"fantasy-pricing-lab/internal/domain"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(league_id|season|data_version)
// Returns the base58-encoded hash.
func ComputeRunID(leagueID string, season int, dataVersion string) string {
	data := fmt.Sprintf("%s|%d|%s",
		leagueID,
		season,
		dataVersion,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// ComputeDataVersion hashes everything a pricing run depends on: the player
// pool (independent of input order) and the league configuration.
// Returns the base58-encoded hash.
func ComputeDataVersion(pool []domain.PlayerRecord, cfg domain.LeagueConfig) string {
	lines := make([]string, len(pool))
	for i, p := range pool {
		lines[i] = playerLine(p)
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}

	// encoding/json sorts map keys, so the config encodes deterministically.
	cfgJSON, _ := json.Marshal(cfg)
	h.Write(cfgJSON)

	return base58.Encode(h.Sum(nil))
}

func playerLine(p domain.PlayerRecord) string {
	var b strings.Builder
	b.WriteString(p.PlayerID)
	for _, s := range []string{p.Name, p.Position, p.Team} {
		b.WriteByte('|')
		b.WriteString(s)
	}
	b.WriteString("|" + strconv.FormatBool(p.IsPitcher))
	b.WriteString("|" + strconv.FormatBool(p.EligibleForDualEvaluation))
	for _, line := range []domain.StatLine{p.Current, p.Prior, p.TwoYearsAgo} {
		b.WriteByte('|')
		b.WriteString(statLine(line))
	}
	return b.String()
}

// statLine renders non-zero stats in key order.
func statLine(line domain.StatLine) string {
	keys := make([]string, 0, len(line))
	for k, v := range line {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(line[k], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
