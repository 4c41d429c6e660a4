package usecases

import (
	"context"
	"encoding/json"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

// SnapshotUseCase exports and imports the flag context together with overrides.
type SnapshotUseCase struct {
	overrideRepo feature.OverrideRepository
	flags        *flags.Flags
	logger       logger.Interface
}

func NewSnapshotUseCase(overrideRepo feature.OverrideRepository, fl *flags.Flags, logger logger.Interface) *SnapshotUseCase {
	return &SnapshotUseCase{
		overrideRepo: overrideRepo,
		flags:        fl,
		logger:       logger,
	}
}

func (uc *SnapshotUseCase) Export() flags.Snapshot {
	return uc.flags.Export()
}

// ExportJSON renders the snapshot as indented JSON.
func (uc *SnapshotUseCase) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(uc.flags.Export(), "", "  ")
	if err != nil {
		return nil, errors.NewInternalError("failed to encode snapshot")
	}
	return data, nil
}

// Import validates data, stores its overrides and applies it. A snapshot
// without an overrides object leaves stored overrides untouched.
func (uc *SnapshotUseCase) Import(ctx context.Context, data []byte, actor string) (*dto.ImportSnapshotResponse, error) {
	uc.logger.Infow("executing import snapshot use case", "actor", actor, "bytes", len(data))

	s, err := flags.ParseSnapshot(data)
	if err != nil {
		return nil, errors.NewValidationError("invalid snapshot", err.Error())
	}

	if s.Overrides != nil {
		if err := uc.overrideRepo.ReplaceAll(ctx, toOverrides(s.Overrides, actor)); err != nil {
			uc.logger.Errorw("failed to persist imported overrides", "error", err)
			return nil, errors.NewInternalError("failed to save overrides")
		}
	}

	uc.flags.Import(s)

	return &dto.ImportSnapshotResponse{
		Overrides:       len(uc.flags.GetOverrides()),
		ContextReplaced: s.Context != nil,
	}, nil
}
