package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		wantErr  bool
	}{
		{name: "known currency", currency: "HKD", wantErr: false},
		{name: "another known currency", currency: "USD", wantErr: false},
		{name: "unknown code", currency: "ZZZ", wantErr: true},
		{name: "empty code", currency: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMoney(decimal.NewFromInt(10), tt.currency)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMoney(%q) error = %v, wantErr %v", tt.currency, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("NewMoney(%q) error = %v, want ErrValidation", tt.currency, err)
			}
		})
	}
}

func TestMoneyAddSub(t *testing.T) {
	a := M("1000", "USD")
	b := M("500", "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !sum.Equal(M("1500", "USD")) {
		t.Errorf("Add = %s, want 1500 USD", sum.Amount)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if !diff.Equal(M("500", "USD")) {
		t.Errorf("Sub = %s, want 500 USD", diff.Amount)
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	a := M("100", "USD")
	b := M("100", "HKD")

	if _, err := a.Add(b); !errors.Is(err, ErrValidation) {
		t.Errorf("Add across currencies error = %v, want ErrValidation", err)
	}
	if _, err := a.Sub(b); !errors.Is(err, ErrValidation) {
		t.Errorf("Sub across currencies error = %v, want ErrValidation", err)
	}
}
