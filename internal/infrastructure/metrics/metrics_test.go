package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/application/feature/loader"
)

func TestObserveLoad(t *testing.T) {
	m := New()

	m.ObserveLoad(loader.OutcomeLoaded, 10*time.Millisecond)
	m.ObserveLoad(loader.OutcomeLoaded, 20*time.Millisecond)
	m.ObserveLoad(loader.OutcomeDisabled, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loadsTotal.WithLabelValues("loaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadsTotal.WithLabelValues("disabled")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.loadDuration))
}

func TestSetLoadedFeatures(t *testing.T) {
	m := New()

	m.SetLoadedFeatures(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.loadedFeatures))

	m.SetLoadedFeatures(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.loadedFeatures))
}

func TestHandler_ExposesLoaderMetrics(t *testing.T) {
	m := New()
	m.ObserveLoad(loader.OutcomeCached, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bodrix_feature_loader_loads_total{outcome="cached"} 1`)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/features/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/features/a", "/features/b", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/features/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
