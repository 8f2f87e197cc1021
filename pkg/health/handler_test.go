// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type metricHandler struct {
	Metric
	http.Handler
}

func TestHandler(t *testing.T) {
	t.Run("will return the metric", func(t *testing.T) {
		t.Run("if it implements http.Handler", func(t *testing.T) {
			m := metricHandler{
				Metric: staticMetric(true),
				Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusAccepted)
				}),
			}

			w := httptest.NewRecorder()
			Handler(m).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, http.StatusAccepted, w.Result().StatusCode)
		})
	})

	testCases := []struct {
		Name   string
		Method string
		Metric Metric
		Status int
	}{
		{
			Name:   "will return 200 if the metric is healthy",
			Method: http.MethodGet,
			Metric: staticMetric(true),
			Status: http.StatusOK,
		},
		{
			Name:   "will return 200 for a HEAD request if the metric is healthy",
			Method: http.MethodHead,
			Metric: staticMetric(true),
			Status: http.StatusOK,
		},
		{
			Name:   "will return 503 if the metric is unhealthy",
			Method: http.MethodGet,
			Metric: MetricFunc(func(ctx context.Context) bool { return false }),
			Status: http.StatusServiceUnavailable,
		},
		{
			Name:   "will return 405 if the method is not GET or HEAD",
			Method: http.MethodPost,
			Metric: staticMetric(true),
			Status: http.StatusMethodNotAllowed,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(testCase.Method, "/health", nil)

			Handler(testCase.Metric).ServeHTTP(w, r)

			assert.Equal(t, testCase.Status, w.Result().StatusCode)
		})
	}
}
