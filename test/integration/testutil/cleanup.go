//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll removes the stored ledger document.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := env.Pool.Exec(ctx, "TRUNCATE TABLE ledger_document"); err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
