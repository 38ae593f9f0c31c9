package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrityReporter_LogsWarning(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewIntegrityReporter(false).Report(context.Background(), IntegrityIssue{
		DocumentID: "d3",
		Reason:     IntegrityMissingSignature,
		Locator:    "/files/d3.pdf",
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "document_id=d3")
	assert.Contains(t, out, "reason="+IntegrityMissingSignature)
	assert.Contains(t, out, "locator=/files/d3.pdf")
}

func TestIntegrityReporter_CapturesSentryWarning(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	err := sentry.Init(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
			return nil // recorded, never sent
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sentry.Init(sentry.ClientOptions{}) })

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewIntegrityReporter(true).Report(context.Background(), IntegrityIssue{
		DocumentID: "d5",
		Reason:     IntegritySignedArtifactMissing,
		Locator:    "/api/document-files/gone",
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, sentry.LevelWarning, event.Level)
	assert.Equal(t, "document integrity issue: "+IntegritySignedArtifactMissing, event.Message)
	assert.Equal(t, "d5", event.Tags["document_id"])
	assert.Equal(t, IntegritySignedArtifactMissing, event.Tags["integrity_reason"])
}

func TestIntegrityReporter_SkipsSentryWhenDisabled(t *testing.T) {
	captured := 0
	err := sentry.Init(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			captured++
			return nil
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sentry.Init(sentry.ClientOptions{}) })

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewIntegrityReporter(false).Report(context.Background(), IntegrityIssue{DocumentID: "d6", Reason: IntegrityMissingSignature})

	assert.Zero(t, captured)
}
