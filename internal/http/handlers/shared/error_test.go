package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func respondForTest(t *testing.T, err error) response.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/test?lang=en-US", nil)

	RespondServiceError(c, err)

	require.Equal(t, http.StatusOK, w.Code)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondServiceErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{service.ErrOrderNotFound, response.CodeNotFound, "Order not found"},
		{service.ErrOrderStatusInvalid, response.CodeConflict, "Order status does not allow this operation"},
		{service.ErrInvalidStateTransition, response.CodeConflict, "Invalid state transition"},
		{service.ErrInsufficientBalance, response.CodeBadRequest, "Insufficient available balance"},
		{service.ErrAdminRequired, response.CodeForbidden, "Admin privileges required"},
		{fmt.Errorf("approve: %w", service.ErrOrderNotFound), response.CodeNotFound, "Order not found"},
	}
	for _, tc := range cases {
		body := respondForTest(t, tc.err)
		require.Equal(t, tc.code, body.StatusCode, tc.err.Error())
		require.Equal(t, tc.msg, body.Msg)
	}
}

func TestRespondServiceErrorHidesInternalErrors(t *testing.T) {
	body := respondForTest(t, errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	require.Equal(t, response.CodeInternal, body.StatusCode)
	require.Equal(t, "Internal server error", body.Msg)

	body = respondForTest(t, service.ErrConfig)
	require.Equal(t, response.CodeInternal, body.StatusCode)
}

func TestGetPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetPrincipal(c)
	require.False(t, ok)
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, response.CodeUnauthorized, body.StatusCode)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	SetPrincipal(c, &service.Principal{ID: 7, UID: "u-7", Role: "promoter"})
	principal, ok := GetPrincipal(c)
	require.True(t, ok)
	require.Equal(t, "u-7", principal.UID)
	require.Equal(t, "u-7", c.GetString("user_uid"))
}
