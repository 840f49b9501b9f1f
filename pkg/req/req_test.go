package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

type sampleBody struct {
	Name   string `json:"name" validate:"required,max=50"`
	Gender string `json:"gender" validate:"required,oneof=male female neutral"`
}

func newContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/samples", strings.NewReader(body))
	return c, w
}

func TestHandleBody_Valid(t *testing.T) {
	c, _ := newContext(`{"name": "Maria", "gender": "female"}`)

	body, err := HandleBody[sampleBody](c, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Maria", body.Name)
	assert.False(t, c.IsAborted())
}

func TestHandleBody_Malformed(t *testing.T) {
	c, w := newContext(`{"name": `)

	_, err := HandleBody[sampleBody](c, logger.NewNop())
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestHandleBody_ValidationDetails(t *testing.T) {
	c, w := newContext(`{"name": "Maria", "gender": "other"}`)

	_, err := HandleBody[sampleBody](c, logger.NewNop())
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"Gender"`)
	assert.Contains(t, w.Body.String(), `"rule":"oneof"`)
}
