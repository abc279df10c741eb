package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/courses/:slug", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/courses/:slug", "204"))
	for _, slug := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/"+slug, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/courses/:slug", "204"))
	assert.Equal(t, 2.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(enrollmentTransitions.WithLabelValues("requested", "enrolled"))
	RecordTransition("requested", "enrolled")
	assert.Equal(t, 1.0, testutil.ToFloat64(enrollmentTransitions.WithLabelValues("requested", "enrolled"))-before)

	failed := testutil.ToFloat64(mailSent.WithLabelValues("contact_reply", "error"))
	RecordMail("contact_reply", errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(mailSent.WithLabelValues("contact_reply", "error"))-failed)
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordEnrollmentRequest()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "academy_enrollment_requests_total")
}
