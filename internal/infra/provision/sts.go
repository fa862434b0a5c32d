// Where: curstack/internal/infra/provision/sts.go
// What: Caller identity preflight.
// Why: Applying a plan with credentials for the wrong account produces
//      resources with wrong-account policies; fail before the first write.
package provision

import (
	"context"
	"fmt"
)

// STSAPI resolves the account behind the active credentials.
type STSAPI interface {
	CallerAccount(ctx context.Context) (string, error)
}

func (s *session) verifyAccount(ctx context.Context) error {
	caller, err := s.clients.STS.CallerAccount(ctx)
	if err != nil {
		return fmt.Errorf("resolve caller identity: %w", err)
	}
	if caller != s.cfg.AccountID {
		return fmt.Errorf("credentials belong to account %s, configuration targets %s", caller, s.cfg.AccountID)
	}
	return nil
}
