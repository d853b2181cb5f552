package utils

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	token, err := GenerateJWT(id, "asha@example.com", "Asha", "admin", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	SetJWTSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	refresh, err := GenerateRefreshToken(id, 1)
	require.NoError(t, err)

	_, err = ValidateJWT(refresh)
	assert.Error(t, err)

	subject, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id.String(), subject)

	access, err := GenerateJWT(id, "a@example.com", "A", "user", 1)
	require.NoError(t, err)
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestGenerateOrderNumber(t *testing.T) {
	day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	n, err := GenerateOrderNumber(day)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(n, "SF-20240115-"), n)
	assert.Len(t, n, len("SF-20240115-")+8)
	assert.NotContains(t, n[len("SF-20240115-"):], "0")
}

func TestCustomValidators(t *testing.T) {
	type form struct {
		Phone    string `validate:"required,phone"`
		PIN      string `validate:"required,postal_code"`
		Password string `validate:"required,strong_password"`
	}

	assert.NoError(t, ValidateStruct(&form{Phone: "9876543210", PIN: "560001", Password: "Secret1!x"}))
	assert.NoError(t, ValidateStruct(&form{Phone: "+91 9876543210", PIN: "110011", Password: "Secret1!x"}))

	errs := GetValidationErrors(ValidateStruct(&form{Phone: "12345", PIN: "0560001", Password: "weak"}))
	tags := map[string]string{}
	for _, e := range errs {
		tags[e.Field] = e.Tag
	}
	assert.Equal(t, map[string]string{
		"phone":    "phone",
		"pin":      "postal_code",
		"password": "strong_password",
	}, tags)
}

func TestNewPaginationParams(t *testing.T) {
	p := NewPaginationParams(0, 500, "", "sideways", "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultLimit, p.Limit)
	assert.Equal(t, "created_at", p.Sort)
	assert.Equal(t, "desc", p.Order)

	result := CreatePaginationResult(nil, 41, NewPaginationParams(1, 20, "", "", ""))
	assert.Equal(t, 3, result.TotalPages)
}

func TestPaginationOffset(t *testing.T) {
	assert.Equal(t, 0, NewPaginationParams(1, 20, "", "", "").Offset())
	assert.Equal(t, 40, NewPaginationParams(3, 20, "", "", "").Offset())
	assert.Equal(t, math.MaxInt, NewPaginationParams(math.MaxInt64/12+2, 12, "", "", "").Offset())
	assert.Equal(t, math.MaxInt, NewPaginationParams(math.MaxInt, 100, "", "", "").Offset())
}
