package domain

// Role is the evaluation role of a player entry.
type Role string

const (
	RoleHitter  Role = "hitter"
	RolePitcher Role = "pitcher"
)

// String returns the string representation of Role.
func (r Role) String() string {
	return string(r)
}

// PlayerRecord is one player of the input pool after ingestion.
// Stat keys are canonical; alias resolution happens before a record is built.
type PlayerRecord struct {
	PlayerID                  string   // stable external id
	Name                      string   // display name
	Position                  string   // raw position as listed by the data source
	Team                      string   // MLB team abbreviation
	IsPitcher                 bool     // primary role
	EligibleForDualEvaluation bool     // valued as both hitter and pitcher
	Current                   StatLine // current season
	Prior                     StatLine // previous season
	TwoYearsAgo               StatLine // season before the previous one
}

// Clone returns a deep copy of the record.
func (p PlayerRecord) Clone() PlayerRecord {
	out := p
	out.Current = p.Current.Clone()
	out.Prior = p.Prior.Clone()
	out.TwoYearsAgo = p.TwoYearsAgo.Clone()
	return out
}

// PrimaryRole returns the role implied by IsPitcher.
func (p PlayerRecord) PrimaryRole() Role {
	if p.IsPitcher {
		return RolePitcher
	}
	return RoleHitter
}

// Roles returns every role the player is evaluated in, primary first.
func (p PlayerRecord) Roles() []Role {
	if !p.EligibleForDualEvaluation {
		return []Role{p.PrimaryRole()}
	}
	if p.IsPitcher {
		return []Role{RolePitcher, RoleHitter}
	}
	return []Role{RoleHitter, RolePitcher}
}

// ClonePool deep-copies a pool so callers' slices are never aliased.
func ClonePool(pool []PlayerRecord) []PlayerRecord {
	out := make([]PlayerRecord, len(pool))
	for i := range pool {
		out[i] = pool[i].Clone()
	}
	return out
}
