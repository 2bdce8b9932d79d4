package runtime

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/aretw0/gantry/pkg/domain"
)

// mintPublishToken issues the short-lived, identity-based publish credential
// for a run whose job holds id-token: write. The subject binds the token to
// this specific run; it never outlives e.tokenTTL.
func (e *Engine) mintPublishToken(run *domain.Run) domain.PublishToken {
	now := e.now()

	buf := make([]byte, 32)
	_, _ = rand.Read(buf) // rand.Read does not fail on supported platforms

	return domain.PublishToken{
		RunID:     run.ID,
		Subject:   "run:" + run.WorkflowName + ":" + run.ID,
		Audience:  "package-registry",
		Value:     hex.EncodeToString(buf),
		IssuedAt:  now,
		ExpiresAt: now.Add(e.tokenTTL),
	}
}
