package handlers

import (
	"context"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
)

// Service interfaces for FeatureHandler - enables unit testing with mocks.

type featureService interface {
	ListEnabled(evalCtx flags.EvalContext, locale dto.Locale) []*dto.FeatureResponse
	GetStatus(evalCtx flags.EvalContext, id string, locale dto.Locale) (*dto.FeatureStatusResponse, error)
	Categories() *dto.CategoriesResponse
	LoadFeature(ctx context.Context, evalCtx flags.EvalContext, id string) (*dto.LoadResultResponse, error)
}

// flagWatcher is the subset of flags.Flags used to stream changes.
type flagWatcher interface {
	Subscribe(id string, l flags.Listener) (unsubscribe func())
	IsEnabledFor(evalCtx flags.EvalContext, id string) bool
}
