package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smashpoint/league/internal/ledger"
	"github.com/smashpoint/league/internal/repository"
)

// CopyResult summarises a document copy between backends.
type CopyResult struct {
	SourceRevision    int64 `json:"source_revision"`
	StoredRevision    int64 `json:"stored_revision"`
	Players           int   `json:"players"`
	Matches           int   `json:"matches"`
	TournamentMatches int   `json:"tournament_matches"`
	Accounts          int   `json:"accounts"`
	DryRun            bool  `json:"dry_run"`
}

// Copier moves the league document from one backend to another during a cutover,
// typically from the JSON file into postgres or object storage.
type Copier struct {
	from   repository.DocumentRepository
	to     repository.DocumentRepository
	logger *slog.Logger
}

// NewCopier creates a Copier.
func NewCopier(from, to repository.DocumentRepository, logger *slog.Logger) *Copier {
	return &Copier{from: from, to: to, logger: logger}
}

// Copy reads the source document, checks its integrity and writes it to the destination.
// A destination that already holds a document is only replaced when force is set, and the
// replacement continues the destination's revision sequence so optimistic backends accept it.
// A legacy source without a revision is stored at revision 1 so it reads as occupied.
func (c *Copier) Copy(ctx context.Context, force, dryRun bool) (CopyResult, error) {
	src, err := c.from.Load(ctx)
	if err != nil {
		return CopyResult{}, fmt.Errorf("load source: %w", err)
	}

	report := ledger.CheckIntegrity(src)
	if !report.AllPassed {
		var failed []string
		for _, inv := range report.Invariants {
			if !inv.Passed {
				failed = append(failed, inv.Name)
			}
		}
		return CopyResult{}, fmt.Errorf("source document fails integrity checks: %s", strings.Join(failed, ", "))
	}

	dst, err := c.to.Load(ctx)
	if err != nil {
		return CopyResult{}, fmt.Errorf("load destination: %w", err)
	}
	occupied := !dst.IsEmpty()
	if occupied && !force {
		return CopyResult{}, fmt.Errorf("destination already holds a document at revision %d (%d players, %d matches); use force to replace it",
			dst.Revision, len(dst.Players), len(dst.Matches))
	}

	result := CopyResult{
		SourceRevision:    src.Revision,
		StoredRevision:    max(src.Revision, 1),
		Players:           len(src.Players),
		Matches:           len(src.Matches),
		TournamentMatches: len(src.TournamentMatches),
		Accounts:          len(src.Accounts),
		DryRun:            dryRun,
	}
	if occupied {
		result.StoredRevision = dst.Revision + 1
	}
	if dryRun {
		c.logger.Info("dry run, destination untouched", "source_revision", result.SourceRevision, "players", result.Players, "matches", result.Matches)
		return result, nil
	}

	src.Revision = result.StoredRevision
	if err := c.to.Save(ctx, src); err != nil {
		return CopyResult{}, fmt.Errorf("save destination: %w", err)
	}

	c.logger.Info("ledger document copied",
		"source_revision", result.SourceRevision,
		"stored_revision", result.StoredRevision,
		"players", result.Players,
		"matches", result.Matches,
		"tournament_matches", result.TournamentMatches,
	)
	return result, nil
}
