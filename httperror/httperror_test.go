// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package httperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	testCases := []struct {
		Name   string
		Err    *Error
		Status int
		Family Family
	}{
		{Name: "bad request", Err: BadRequest("bad"), Status: http.StatusBadRequest, Family: FamilyClientError},
		{Name: "not authorized", Err: NotAuthorized("who"), Status: http.StatusUnauthorized, Family: FamilyClientError},
		{Name: "forbidden", Err: Forbidden("no"), Status: http.StatusForbidden, Family: FamilyClientError},
		{Name: "not found", Err: NotFound("where"), Status: http.StatusNotFound, Family: FamilyClientError},
		{Name: "not allowed", Err: NotAllowed("how"), Status: http.StatusMethodNotAllowed, Family: FamilyClientError},
		{Name: "not acceptable", Err: NotAcceptable("what"), Status: http.StatusNotAcceptable, Family: FamilyClientError},
		{Name: "not supported", Err: NotSupported("which"), Status: http.StatusUnsupportedMediaType, Family: FamilyClientError},
		{Name: "internal server error", Err: InternalServerError("oops"), Status: http.StatusInternalServerError, Family: FamilyServerError},
		{Name: "service unavailable", Err: ServiceUnavailable("later"), Status: http.StatusServiceUnavailable, Family: FamilyServerError},
		{Name: "redirection", Err: Redirection(http.StatusMovedPermanently, "/new"), Status: http.StatusMovedPermanently, Family: FamilyRedirection},
		{Name: "redirection with invalid status", Err: Redirection(http.StatusOK, "/new"), Status: http.StatusSeeOther, Family: FamilyRedirection},
		{Name: "new with invalid status", Err: New(http.StatusOK, "fine"), Status: http.StatusInternalServerError, Family: FamilyServerError},
	}

	for _, testCase := range testCases {
		t.Run("will return a "+testCase.Name+" error", func(t *testing.T) {
			assert.Equal(t, testCase.Status, testCase.Err.Status)
			assert.Equal(t, testCase.Family, testCase.Err.Family())
			assert.NotEmpty(t, testCase.Err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("db down")
	e := Wrap(cause, http.StatusServiceUnavailable)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), e.Message)
	assert.Equal(t, "503 Service Unavailable: Service Unavailable: db down", e.Error())
}

func TestFamilyOf(t *testing.T) {
	testCases := []struct {
		Status int
		Family Family
		Name   string
	}{
		{Status: 100, Family: FamilyInformational, Name: "INFORMATIONAL"},
		{Status: 204, Family: FamilySuccessful, Name: "SUCCESSFUL"},
		{Status: 307, Family: FamilyRedirection, Name: "REDIRECTION"},
		{Status: 418, Family: FamilyClientError, Name: "CLIENT_ERROR"},
		{Status: 502, Family: FamilyServerError, Name: "SERVER_ERROR"},
		{Status: 600, Family: FamilyOther, Name: "OTHER"},
		{Status: 42, Family: FamilyOther, Name: "OTHER"},
	}

	for _, testCase := range testCases {
		t.Run("will classify "+http.StatusText(testCase.Status), func(t *testing.T) {
			f := FamilyOf(testCase.Status)
			assert.Equal(t, testCase.Family, f)
			assert.Equal(t, testCase.Name, f.String())
		})
	}
}
