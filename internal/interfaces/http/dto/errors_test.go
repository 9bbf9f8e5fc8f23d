package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{"INVALID_INPUT", http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"TOKEN_EXPIRED", http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{"NOT_A_TEAM_MEMBER", http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{"DUPLICATE_NUMBER", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"ALREADY_CONVERTED", http.StatusConflict},
		{"ROLLUP_LOCK_TIMEOUT", http.StatusConflict},
		// Domain rule violations fall through to 422
		{"NO_LINES", http.StatusUnprocessableEntity},
		{"INVALID_TAX_RATE", http.StatusUnprocessableEntity},
		{"DAILY_LIMIT_EXCEEDED", http.StatusUnprocessableEntity},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponse_JSON(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse("DUPLICATE_NUMBER", "Document number is already in use", "req-1", true))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "DUPLICATE_NUMBER",
			"message": "Document number is already in use",
			"request_id": "req-1",
			"retryable": true
		}
	}`, string(body))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.Page)
}
