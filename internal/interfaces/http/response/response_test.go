package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/pkg/utils"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccess(t *testing.T) {
	c, w := newContext()

	Success(c, http.StatusOK, gin.H{"ok": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestPaginated(t *testing.T) {
	c, w := newContext()

	Paginated(c, http.StatusOK, []string{"a"}, utils.GetPaginationParams(1, 10).Meta(11))

	var body struct {
		Items      []string             `json:"items"`
		Pagination utils.PaginationMeta `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a"}, body.Items)
	assert.Equal(t, 2, body.Pagination.TotalPages)
}

func TestError_AppError(t *testing.T) {
	c, w := newContext()

	Error(c, domainerrors.NotFound("missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeNotFound)
	assert.Contains(t, w.Body.String(), "missing")
}

func TestError_SentinelMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainerrors.StepNotAvailable("waiting for OPT Receipt to be approved"), http.StatusUnprocessableEntity, domainerrors.CodeStepNotAvailable},
		{domainerrors.ErrFeedbackRequired, http.StatusBadRequest, domainerrors.CodeFeedbackRequired},
		{domainerrors.ErrStepNotFound, http.StatusNotFound, domainerrors.CodeStepNotFound},
		{domainerrors.ErrConflict, http.StatusConflict, domainerrors.CodeConflict},
		{domainerrors.ErrApplicationLocked, http.StatusConflict, domainerrors.CodeApplicationLocked},
		{domainerrors.ErrInvitationExpired, http.StatusGone, domainerrors.CodeInvitationInvalid},
	}
	for _, tc := range cases {
		c, w := newContext()
		Error(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.code)
		assert.Contains(t, w.Body.String(), tc.code)
	}
}

func TestError_GenericError(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeInternalError)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestAbort(t *testing.T) {
	c, w := newContext()

	Abort(c, domainerrors.ErrForbidden)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestErrorWithError(t *testing.T) {
	c, w := newContext()

	ErrorWithError(c, http.StatusBadRequest, "ERR_X", "bad")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"ERR_X"`)
}
