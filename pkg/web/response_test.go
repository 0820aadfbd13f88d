package web

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bankapp/pkg/moneypkg"
)

type testRequest struct {
	Username string `validate:"required,alphanum"`
	Password string `validate:"min=6"`
	Amount   string `validate:"amount"`
}

func TestGetErrorMsg(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("amount", moneypkg.ValidAmount))

	testCases := []struct {
		name string
		req  testRequest
		want string
	}{
		{
			name: "Required",
			req:  testRequest{Password: "secret", Amount: "1"},
			want: "Username field is required",
		},
		{
			name: "Alphanum",
			req:  testRequest{Username: "bad name", Password: "secret", Amount: "1"},
			want: "Username accepts only alphanumeric characters",
		},
		{
			name: "Min",
			req:  testRequest{Username: "alice", Password: "abc", Amount: "1"},
			want: "Password must be at least 6 characters long",
		},
		{
			name: "Amount",
			req:  testRequest{Username: "alice", Password: "secret", Amount: "1.001"},
			want: "Amount must be a positive amount with at most 2 decimal places",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)

			var ve validator.ValidationErrors
			require.True(t, errors.As(err, &ve))
			require.Equal(t, tc.want, GetErrorMsg(ve))
		})
	}

	require.Empty(t, GetErrorMsg(nil))
}

func TestError(t *testing.T) {
	require.Equal(t, Response{Error: "boom"}, Error(errors.New("boom")))
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())
}
