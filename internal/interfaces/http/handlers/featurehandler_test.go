package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/flags"
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/interfaces/http/handlers/testutil"
	"github.com/bodrix-ai/bodrix/internal/shared/constants"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
)

type mockFeatureService struct {
	listEnabledFn func(evalCtx flags.EvalContext, locale dto.Locale) []*dto.FeatureResponse
	getStatusFn   func(evalCtx flags.EvalContext, id string, locale dto.Locale) (*dto.FeatureStatusResponse, error)
	categoriesFn  func() *dto.CategoriesResponse
	loadFeatureFn func(ctx context.Context, evalCtx flags.EvalContext, id string) (*dto.LoadResultResponse, error)
}

func (m *mockFeatureService) ListEnabled(evalCtx flags.EvalContext, locale dto.Locale) []*dto.FeatureResponse {
	if m.listEnabledFn != nil {
		return m.listEnabledFn(evalCtx, locale)
	}
	return nil
}

func (m *mockFeatureService) GetStatus(evalCtx flags.EvalContext, id string, locale dto.Locale) (*dto.FeatureStatusResponse, error) {
	if m.getStatusFn != nil {
		return m.getStatusFn(evalCtx, id, locale)
	}
	return &dto.FeatureStatusResponse{ID: id}, nil
}

func (m *mockFeatureService) Categories() *dto.CategoriesResponse {
	if m.categoriesFn != nil {
		return m.categoriesFn()
	}
	return &dto.CategoriesResponse{}
}

func (m *mockFeatureService) LoadFeature(ctx context.Context, evalCtx flags.EvalContext, id string) (*dto.LoadResultResponse, error) {
	if m.loadFeatureFn != nil {
		return m.loadFeatureFn(ctx, evalCtx, id)
	}
	return nil, nil
}

// mockWatcher records the listener so tests can fire it once the stream is open.
type mockWatcher struct {
	mu           sync.Mutex
	enabled      bool
	listener     flags.Listener
	subscribed   chan struct{}
	unsubscribed bool
}

func newMockWatcher(enabled bool) *mockWatcher {
	return &mockWatcher{enabled: enabled, subscribed: make(chan struct{})}
}

func (m *mockWatcher) Subscribe(id string, l flags.Listener) func() {
	m.mu.Lock()
	m.listener = l
	m.mu.Unlock()
	close(m.subscribed)
	return func() {
		m.mu.Lock()
		m.unsubscribed = true
		m.mu.Unlock()
	}
}

func (m *mockWatcher) IsEnabledFor(evalCtx flags.EvalContext, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *mockWatcher) flip(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	l := m.listener
	m.mu.Unlock()
	l(enabled)
}

func TestFeatureHandler_ListFeatures(t *testing.T) {
	var gotCtx flags.EvalContext
	var gotLocale dto.Locale
	svc := &mockFeatureService{
		listEnabledFn: func(evalCtx flags.EvalContext, locale dto.Locale) []*dto.FeatureResponse {
			gotCtx, gotLocale = evalCtx, locale
			return []*dto.FeatureResponse{{ID: "ai-chat", Name: "المحادثة الذكية", Locale: locale, Direction: locale.Direction()}}
		},
	}
	h := NewFeatureHandler(svc, newMockWatcher(true), logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodGet, "/features", nil)
	c.Request.Header.Set(constants.HeaderAcceptLanguage, "ar-SA,ar;q=0.9,en;q=0.5")
	testutil.SetEvalContext(c, flags.EvalContext{UserID: "u1", UserPermissions: []string{"chat:use"}, Environment: flags.EnvProduction})

	h.ListFeatures(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", gotCtx.UserID)
	assert.Equal(t, dto.LocaleArabic, gotLocale)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var features []dto.FeatureResponse
	require.NoError(t, json.Unmarshal(resp.Data, &features))
	require.Len(t, features, 1)
	assert.Equal(t, "rtl", features[0].Direction)
}

func TestFeatureHandler_GetFeature(t *testing.T) {
	svc := &mockFeatureService{
		getStatusFn: func(evalCtx flags.EvalContext, id string, locale dto.Locale) (*dto.FeatureStatusResponse, error) {
			if id == "ghost" {
				return nil, errors.NewNotFoundError("feature not found", id)
			}
			return &dto.FeatureStatusResponse{ID: id, Enabled: true}, nil
		},
	}
	h := NewFeatureHandler(svc, newMockWatcher(true), logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodGet, "/features/ai-chat", nil)
	testutil.SetURLParam(c, "id", "ai-chat")
	h.GetFeature(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enabled":true`)

	c, w = testutil.NewTestContext(http.MethodGet, "/features/ghost", nil)
	testutil.SetURLParam(c, "id", "ghost")
	h.GetFeature(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, string(errors.ErrorTypeNotFound), resp.Error.Type)
}

func TestFeatureHandler_LoadFeature(t *testing.T) {
	tests := []struct {
		name     string
		result   *dto.LoadResultResponse
		err      error
		wantCode int
	}{
		{
			name:     "loaded",
			result:   &dto.LoadResultResponse{FeatureID: "ai-chat", Success: true, Component: "communications/ai-chat"},
			wantCode: http.StatusOK,
		},
		{
			name:     "failed load is reported in the result",
			result:   &dto.LoadResultResponse{FeatureID: "ai-chat", Error: "Feature dependencies not met: webhooks"},
			wantCode: http.StatusOK,
		},
		{
			name:     "not available to caller",
			err:      errors.NewForbiddenError("feature is not available"),
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockFeatureService{
				loadFeatureFn: func(ctx context.Context, evalCtx flags.EvalContext, id string) (*dto.LoadResultResponse, error) {
					assert.Equal(t, "ai-chat", id)
					return tt.result, tt.err
				},
			}
			h := NewFeatureHandler(svc, newMockWatcher(true), logger.NewNop())

			c, w := testutil.NewTestContext(http.MethodPost, "/features/ai-chat/load", nil)
			testutil.SetURLParam(c, "id", "ai-chat")
			h.LoadFeature(c)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.result != nil {
				assert.Contains(t, w.Body.String(), tt.result.FeatureID)
			}
		})
	}
}

func TestFeatureHandler_ListCategories(t *testing.T) {
	svc := &mockFeatureService{
		categoriesFn: func() *dto.CategoriesResponse {
			return &dto.CategoriesResponse{Categories: []feature.Category{feature.CategoryAnalytics}}
		},
	}
	h := NewFeatureHandler(svc, newMockWatcher(true), logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodGet, "/features/categories", nil)
	h.ListCategories(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"analytics"`)
}

func TestFeatureHandler_WatchFeature(t *testing.T) {
	watcher := newMockWatcher(true)
	h := NewFeatureHandler(&mockFeatureService{}, watcher, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	c, w := testutil.NewTestContext(http.MethodGet, "/features/ai-chat/watch", nil)
	c.Request = c.Request.WithContext(ctx)
	testutil.SetURLParam(c, "id", "ai-chat")

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.WatchFeature(c)
	}()

	select {
	case <-watcher.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never subscribed")
	}

	watcher.flip(true) // unchanged decisions are not re-sent
	watcher.flip(false)
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not stop after client disconnect")
	}

	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:flag"))
	assert.Contains(t, body, `{"feature_id":"ai-chat","enabled":true}`)
	assert.Contains(t, body, `{"feature_id":"ai-chat","enabled":false}`)
	assert.True(t, watcher.unsubscribed)
}

func TestFeatureHandler_WatchUnknownFeature(t *testing.T) {
	svc := &mockFeatureService{
		getStatusFn: func(flags.EvalContext, string, dto.Locale) (*dto.FeatureStatusResponse, error) {
			return nil, errors.NewNotFoundError("feature not found")
		},
	}
	watcher := newMockWatcher(true)
	h := NewFeatureHandler(svc, watcher, logger.NewNop())

	c, w := testutil.NewTestContext(http.MethodGet, "/features/ghost/watch", nil)
	testutil.SetURLParam(c, "id", "ghost")
	h.WatchFeature(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, watcher.listener)
}
