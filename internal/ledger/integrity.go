package ledger

import (
	"fmt"

	"github.com/smashpoint/league/internal/domain"
)

// IntegrityReport holds the outcome of a referential check over a document.
type IntegrityReport struct {
	Revision   int64            `json:"revision"`
	Invariants []InvariantCheck `json:"invariants"`
	AllPassed  bool             `json:"all_passed"`
}

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// CheckIntegrity validates the document invariants:
//  1. unique ids: no collection holds the same id twice
//  2. match references: every match names two distinct known players
//  3. bracket references: every bracket slot names known players
//  4. bracket keys: (season, round, slot) is unique
//  5. account bindings: every account belongs to a known player
func CheckIntegrity(doc *domain.Document) IntegrityReport {
	players := doc.PlayerIndex()
	report := IntegrityReport{Revision: doc.Revision}

	report.add(checkUniqueIDs(doc))
	report.add(checkMatchReferences(doc, players))
	report.add(checkBracketReferences(doc, players))
	report.add(checkBracketKeys(doc))
	report.add(checkAccountBindings(doc, players))

	report.AllPassed = true
	for _, c := range report.Invariants {
		if !c.Passed {
			report.AllPassed = false
			break
		}
	}
	return report
}

func (r *IntegrityReport) add(c InvariantCheck) {
	r.Invariants = append(r.Invariants, c)
}

func checkUniqueIDs(doc *domain.Document) InvariantCheck {
	seen := make(map[string]struct{})
	var dup string
	mark := func(id string) {
		if _, ok := seen[id]; ok && dup == "" {
			dup = id
		}
		seen[id] = struct{}{}
	}
	for _, p := range doc.Players {
		mark(p.ID)
	}
	for _, m := range doc.Matches {
		mark(m.ID)
	}
	for _, tm := range doc.TournamentMatches {
		mark(tm.ID)
	}
	for _, n := range doc.News {
		mark(n.ID)
	}
	for _, c := range doc.CommunityPosts {
		mark(c.ID)
	}
	for _, a := range doc.Accounts {
		mark(a.ID)
	}
	for _, t := range doc.TACRequests {
		mark(t.ID)
	}
	if dup != "" {
		return InvariantCheck{Name: "unique_ids", Detail: fmt.Sprintf("duplicate id %s", dup)}
	}
	return InvariantCheck{Name: "unique_ids", Passed: true}
}

func checkMatchReferences(doc *domain.Document, players map[string]domain.Player) InvariantCheck {
	for _, m := range doc.Matches {
		_, okA := players[m.PlayerAID]
		_, okB := players[m.PlayerBID]
		if !okA || !okB {
			return InvariantCheck{Name: "match_references", Detail: fmt.Sprintf("match %s references an unknown player", m.ID)}
		}
		if m.PlayerAID == m.PlayerBID {
			return InvariantCheck{Name: "match_references", Detail: fmt.Sprintf("match %s has the same player on both sides", m.ID)}
		}
		if m.WinnerID != m.PlayerAID && m.WinnerID != m.PlayerBID {
			return InvariantCheck{Name: "match_references", Detail: fmt.Sprintf("match %s winner is not a participant", m.ID)}
		}
	}
	return InvariantCheck{Name: "match_references", Passed: true}
}

func checkBracketReferences(doc *domain.Document, players map[string]domain.Player) InvariantCheck {
	known := func(id string) bool {
		if id == "" {
			return true
		}
		_, ok := players[id]
		return ok
	}
	for _, tm := range doc.TournamentMatches {
		if !known(tm.Player1ID) || !known(tm.Player2ID) || !known(tm.WinnerID) {
			return InvariantCheck{Name: "bracket_references", Detail: fmt.Sprintf("bracket slot %s references an unknown player", tm.ID)}
		}
	}
	return InvariantCheck{Name: "bracket_references", Passed: true}
}

func checkBracketKeys(doc *domain.Document) InvariantCheck {
	seen := make(map[domain.TournamentKey]string, len(doc.TournamentMatches))
	for _, tm := range doc.TournamentMatches {
		if other, ok := seen[tm.TournamentKey]; ok {
			return InvariantCheck{Name: "bracket_keys", Detail: fmt.Sprintf("slots %s and %s share %s %s #%d", other, tm.ID, tm.Season, tm.Round, tm.Slot)}
		}
		seen[tm.TournamentKey] = tm.ID
	}
	return InvariantCheck{Name: "bracket_keys", Passed: true}
}

func checkAccountBindings(doc *domain.Document, players map[string]domain.Player) InvariantCheck {
	for _, a := range doc.Accounts {
		if _, ok := players[a.PlayerID]; !ok {
			return InvariantCheck{Name: "account_bindings", Detail: fmt.Sprintf("account %s is bound to unknown player %s", a.ID, a.PlayerID)}
		}
	}
	return InvariantCheck{Name: "account_bindings", Passed: true}
}
