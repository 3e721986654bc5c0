package audit

import (
	"VaultKeeper/internal/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Create(ctx context.Context, rec *model.AuditRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockAuditRepo) ListByOwner(ctx context.Context, ownerID int64, limit int) ([]model.AuditRecord, error) {
	args := m.Called(ctx, ownerID, limit)
	if v, ok := args.Get(0).([]model.AuditRecord); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRecorder_PersistsAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := new(mockAuditRepo)
	r.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.AuditRecord) bool {
		_, leaked := rec.Metadata["password"]
		return rec.OwnerID == 7 &&
			rec.Level == "info" &&
			rec.Message == "vault entry created" &&
			rec.Metadata["website"] == "Google" &&
			!leaked &&
			rec.ID != ""
	})).Return(nil).Once()

	rec := NewRecorder(r, zap.New(core).Sugar())
	rec.Record(context.Background(), LevelInfo, "vault entry created", 7, map[string]any{
		"website":  "Google",
		"password": "P1",
	})

	r.AssertExpectations(t)
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, int64(7), ctx["owner_id"])
		assert.Equal(t, "Google", ctx["website"])
		_, leaked := ctx["password"]
		assert.False(t, leaked)
	}
}

func TestRecorder_RepoErrorIsSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := new(mockAuditRepo)
	r.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	rec := NewRecorder(r, zap.New(core).Sugar())
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), LevelWarn, "something odd", 1, nil)
	})
	assert.Len(t, logs.FilterLevelExact(zapcore.WarnLevel).All(), 1)
	assert.Len(t, logs.FilterLevelExact(zapcore.ErrorLevel).All(), 1)
}

func TestRecorder_NilRepoLogsOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := NewRecorder(nil, zap.New(core).Sugar())
	rec.Record(context.Background(), LevelError, "boom", 3, map[string]any{"secretHint": "x", "id": "e1"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		_, leaked := entries[0].ContextMap()["secretHint"]
		assert.False(t, leaked)
		assert.Equal(t, "e1", entries[0].ContextMap()["id"])
	}
}
