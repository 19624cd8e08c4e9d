package web

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestValidDecimal(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("decimal", ValidDecimal))

	type request struct {
		Amount json.Number `validate:"decimal"`
		Text   string      `validate:"omitempty,decimal"`
	}

	testCases := []struct {
		name    string
		req     request
		wantErr bool
	}{
		{name: "Integer", req: request{Amount: "100"}},
		{name: "Fraction", req: request{Amount: "0.25", Text: "-3.5"}},
		{name: "Exponent", req: request{Amount: "1e3"}},
		{name: "Garbage", req: request{Amount: "ten"}, wantErr: true},
		{name: "GarbageString", req: request{Amount: "1", Text: "1,5"}, wantErr: true},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBindingErrorMsg(t *testing.T) {
	v := validator.New()

	type request struct {
		Username string `validate:"required"`
		Limit    int    `validate:"max=100"`
	}

	require.Equal(t, "Username field is required", BindingErrorMsg(v.Struct(request{Limit: 1})))
	require.Equal(t, "Limit must be less than or equal to 100", BindingErrorMsg(v.Struct(request{Username: "a", Limit: 101})))
	require.Equal(t, "invalid request", BindingErrorMsg(&json.SyntaxError{}))
}

func TestRegisterValidatorsTwice(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())
}
