package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/askhq/ask/internal"
)

func TestSendPageError(t *testing.T) {
	type testCase struct {
		err          error
		expectedCode int
		expectedText string
	}

	testCases := []testCase{
		{
			err:          fmt.Errorf("%w: no session", internal.ErrUnauthorized),
			expectedCode: http.StatusUnauthorized,
			expectedText: "Unauthorized",
		},
		{
			err:          fmt.Errorf("get question: %w", internal.ErrNotFound),
			expectedCode: http.StatusNotFound,
			expectedText: "Página no encontrada",
		},
		{
			err:          fmt.Errorf("%w: bad form", internal.ErrBadRequest),
			expectedCode: http.StatusBadRequest,
			expectedText: "Bad Request",
		},
		{
			err:          fmt.Errorf("query: %w", context.DeadlineExceeded),
			expectedCode: http.StatusGatewayTimeout,
			expectedText: "La solicitud tardó demasiado",
		},
		{
			err:          errors.New("secret database failure"),
			expectedCode: http.StatusInternalServerError,
			expectedText: "Algo salió mal",
		},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.expectedCode), func(t *testing.T) {
			setupDB(t) // patches the logger

			router := gin.New()
			router.SetHTMLTemplate(loadTemplates())
			router.GET("/", func(c *gin.Context) {
				sendPageError(c, tc.err)
			})

			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, resp.Code, tc.expectedCode)
			body := resp.Body.String()
			assert.Assert(t, is.Contains(body, tc.expectedText))
			// error details are only logged
			assert.Assert(t, !strings.Contains(body, tc.err.Error()))
		})
	}
}
