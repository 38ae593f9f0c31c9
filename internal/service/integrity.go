package service

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

const (
	// The document is signed but no signature row (or an empty signed path) exists.
	IntegrityMissingSignature = "signature_missing"
	// The signature row points at an artifact the storage backend does not have.
	IntegritySignedArtifactMissing = "signed_artifact_missing"
)

type IntegrityIssue struct {
	DocumentID string
	Reason     string
	Locator    string
}

// IntegrityReporter receives inconsistencies that retrieval recovered from locally.
type IntegrityReporter interface {
	Report(ctx context.Context, issue IntegrityIssue)
}

type integrityReporter struct {
	sentry bool
}

// NewIntegrityReporter logs every issue as a warning and, when Sentry is
// initialized, also captures it there since warnings never reach the Sentry log handler.
func NewIntegrityReporter(sentryEnabled bool) IntegrityReporter {
	return &integrityReporter{sentry: sentryEnabled}
}

func (r *integrityReporter) Report(ctx context.Context, issue IntegrityIssue) {
	slog.WarnContext(ctx, "document integrity issue",
		"document_id", issue.DocumentID,
		"reason", issue.Reason,
		"locator", issue.Locator,
	)

	if !r.sentry {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("document_id", issue.DocumentID)
		scope.SetTag("integrity_reason", issue.Reason)
		hub.CaptureMessage("document integrity issue: " + issue.Reason)
	})
}
