package usecase

import (
	"strings"
	"testing"

	domainerrors "accounts/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()

	var verr *domainerrors.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidArgument))

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}

	return fields
}

func TestValidateCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		input      CreateUserInput
		wantFields []string
	}{
		{
			name:  "valid",
			input: CreateUserInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"},
		},
		{
			name:       "all empty",
			input:      CreateUserInput{},
			wantFields: []string{"name", "email", "password"},
		},
		{
			name:       "blank name after trim",
			input:      CreateUserInput{Name: "   ", Email: "ann@x.com", Password: "secret1"},
			wantFields: []string{"name"},
		},
		{
			name:       "name too long",
			input:      CreateUserInput{Name: strings.Repeat("a", 101), Email: "ann@x.com", Password: "secret1"},
			wantFields: []string{"name"},
		},
		{
			name:       "invalid email",
			input:      CreateUserInput{Name: "Ann", Email: "not-an-email", Password: "secret1"},
			wantFields: []string{"email"},
		},
		{
			name:       "password too short",
			input:      CreateUserInput{Name: "Ann", Email: "ann@x.com", Password: "12345"},
			wantFields: []string{"password"},
		},
		{
			name:       "password too long",
			input:      CreateUserInput{Name: "Ann", Email: "ann@x.com", Password: strings.Repeat("p", 21)},
			wantFields: []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			err := ValidateCreateUser(&input)
			if tt.wantFields == nil {
				assert.NoError(t, err)

				return
			}
			assert.Equal(t, tt.wantFields, fieldsOf(t, err))
		})
	}
}

func TestValidateCreateUser_TrimsButKeepsPassword(t *testing.T) {
	got := CreateUserInput{Name: "  Ann ", Email: " ann@x.com\t", Password: " secret1 "}
	require.NoError(t, ValidateCreateUser(&got))

	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "ann@x.com", got.Email)
	assert.Equal(t, " secret1 ", got.Password)
}

func TestValidateLogin(t *testing.T) {
	got := LoginInput{Email: " ann@x.com ", Password: "whatever"}
	require.NoError(t, ValidateLogin(&got))
	assert.Equal(t, "ann@x.com", got.Email)

	err := (&LoginInput{Email: "bad", Password: ""}).Validate()
	assert.Equal(t, []string{"email", "password"}, fieldsOf(t, err))
}

func TestValidateUpdateUser_RequiresOneField(t *testing.T) {
	for _, input := range []UpdateUserInput{
		{},
		{Name: ptr("  "), Email: ptr("")},
	} {
		err := ValidateUpdateUser(&input)
		require.Error(t, err)

		var verr *domainerrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, MsgEmptyUpdate, verr.Message())
	}
}

func TestValidateUpdateUser_ChecksProvidedFields(t *testing.T) {
	got := UpdateUserInput{Name: ptr(" Annie ")}
	require.NoError(t, ValidateUpdateUser(&got))
	assert.Equal(t, "Annie", *got.Name)
	assert.Nil(t, got.Email)

	err := ValidateUpdateUser(&UpdateUserInput{Name: ptr("Ann"), Email: ptr("nope")})
	assert.Equal(t, []string{"email"}, fieldsOf(t, err))

	err = ValidateUpdateUser(&UpdateUserInput{Name: ptr(""), Email: ptr("ann@y.com")})
	assert.Equal(t, []string{"name"}, fieldsOf(t, err))
}
