package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hmartin/llmsuggest/internal/backend"
	"github.com/hmartin/llmsuggest/internal/scratch"
)

type fakeBackend struct {
	generateResult string
	explainResult  string
	err            error
	prereqErr      error
	block          bool
}

func (f *fakeBackend) Name() string              { return "fake" }
func (f *fakeBackend) CheckPrerequisites() error { return f.prereqErr }

func (f *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.generateResult, f.err
}

func (f *fakeBackend) Explain(ctx context.Context, command string) (string, error) {
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.explainResult, f.err
}

func newSlot(t *testing.T) *scratch.Slot {
	t.Helper()
	slot, err := scratch.NewSlot()
	require.NoError(t, err)
	t.Cleanup(func() { slot.Remove() })
	return slot
}

func TestStartWritesResult(t *testing.T) {
	slot := newSlot(t)
	b := &fakeBackend{generateResult: "find . -type f"}

	task, err := Start(context.Background(), b, backend.ModeGenerate, "list files", slot, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, task.Wait(context.Background()))

	got, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, "find . -type f", got)
}

func TestStartReturnsHandleImmediately(t *testing.T) {
	slot := newSlot(t)
	b := &fakeBackend{block: true}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	task, err := Start(ctx, b, backend.ModeGenerate, "list files", slot, zap.NewNop())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	select {
	case <-task.Done():
		t.Fatal("task finished while backend was blocked")
	default:
	}
	cancel()
	<-task.Done()
}

func TestBackendErrorWrittenAsGenerateText(t *testing.T) {
	slot := newSlot(t)
	b := &fakeBackend{err: errors.New("API request failed: boom")}

	task, err := Start(context.Background(), b, backend.ModeGenerate, "list files", slot, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, task.Wait(context.Background()))

	got, err := slot.Read()
	require.NoError(t, err)
	// A failed generate yields a harmless echo command for the buffer.
	assert.Equal(t, `echo "API request failed: boom"`, got)
}

func TestBackendErrorWrittenAsExplainText(t *testing.T) {
	slot := newSlot(t)
	b := &fakeBackend{err: errors.New("boom")}

	task, err := Start(context.Background(), b, backend.ModeExplain, "ls", slot, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, task.Wait(context.Background()))

	got, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, "ERROR: boom", got)
}

func TestPrerequisiteErrorWrittenAsText(t *testing.T) {
	slot := newSlot(t)
	b := &fakeBackend{prereqErr: errors.New(backend.MissingPrerequisites + " no API key")}

	task, err := Start(context.Background(), b, backend.ModeGenerate, "list files", slot, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, task.Wait(context.Background()))

	got, err := slot.Read()
	require.NoError(t, err)
	assert.Contains(t, got, backend.MissingPrerequisites)
}

func TestWaitHonorsCancellation(t *testing.T) {
	slot := newSlot(t)
	b := &fakeBackend{block: true}

	waitCtx, cancelWait := context.WithCancel(context.Background())
	task, err := Start(context.Background(), b, backend.ModeGenerate, "list files", slot, zap.NewNop())
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancelWait()
	}()

	err = task.Wait(waitCtx)
	require.ErrorIs(t, err, context.Canceled)

	// Cancelling the wait also terminates the background work.
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("background task did not terminate after cancellation")
	}
}

func TestStartRejectsInvalidMode(t *testing.T) {
	slot := newSlot(t)
	_, err := Start(context.Background(), &fakeBackend{}, backend.Mode("bogus"), "x", slot, zap.NewNop())
	require.Error(t, err)
}

func TestStartRejectsInvalidInput(t *testing.T) {
	slot := newSlot(t)
	_, err := Start(context.Background(), &fakeBackend{}, backend.ModeGenerate, "bad\x00input", slot, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}
