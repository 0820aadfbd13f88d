package moneypkg

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		amount  string
		want    decimal.Decimal
		wantErr error
	}{
		{amount: "100", want: decimal.NewFromInt(100)},
		{amount: "0.01", want: decimal.New(1, -2)},
		{amount: "30.50", want: decimal.New(3050, -2)},
		{amount: "abc", wantErr: ErrMalformed},
		{amount: "", wantErr: ErrMalformed},
		{amount: "1.005", wantErr: ErrTooPrecise},
		{amount: "0", wantErr: ErrNotPositive},
		{amount: "-10", wantErr: ErrNotPositive},
		{amount: "1000000000000", want: decimal.NewFromInt(1_000_000_000_000)},
		{amount: "1000000000000.01", wantErr: ErrTooLarge},
		{amount: "100000000000000000", wantErr: ErrTooLarge},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.amount, func(t *testing.T) {
			got, err := Parse(tc.amount)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Parse(%q) returned error %v, want %v", tc.amount, err, tc.wantErr)
			}

			if !got.Equal(tc.want) {
				t.Errorf("Parse(%q) = %v, want %v", tc.amount, got, tc.want)
			}

			if IsValidAmount(tc.amount) != (tc.wantErr == nil) {
				t.Errorf("IsValidAmount(%q) = %v, want %v", tc.amount, !(tc.wantErr == nil), tc.wantErr == nil)
			}
		})
	}
}
