package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type RecordDebtRequest struct {
	DebtorName   string `json:"debtorName"`
	CreditorName string `json:"creditorName"`
	Amount       string `json:"amount"`
}

func (r RecordDebtRequest) Validate() error {
	return validateParties(r.DebtorName, r.CreditorName, r.Amount)
}

type RecordDebtResponse struct {
	PairID    string `json:"pairId"`
	Debtor    string `json:"debtor"`
	Creditor  string `json:"creditor"`
	Amount    string `json:"amount"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type SettleDebtRequest struct {
	DebtorName   string `json:"debtorName"`
	CreditorName string `json:"creditorName"`
	Amount       string `json:"amount"`
}

func (r SettleDebtRequest) Validate() error {
	return validateParties(r.DebtorName, r.CreditorName, r.Amount)
}

type SettleDebtResponse struct {
	Debtor     string `json:"debtor"`
	Creditor   string `json:"creditor"`
	AmountPaid string `json:"amountPaid"`
	Remaining  string `json:"remaining"`
	Status     string `json:"status"`
}

type DebtView struct {
	Debtor    string `json:"debtor"`
	Creditor  string `json:"creditor"`
	Amount    string `json:"amount"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

type ListDebtsResponse struct {
	Debts []DebtView `json:"debts"`
}

func validateParties(debtorName, creditorName, amount string) error {
	var errs []string

	if strings.TrimSpace(debtorName) == "" {
		errs = append(errs, "debtorName is required")
	}
	if strings.TrimSpace(creditorName) == "" {
		errs = append(errs, "creditorName is required")
	}
	if strings.TrimSpace(amount) == "" {
		errs = append(errs, "amount is required")
	} else if parsed, err := decimal.NewFromString(strings.TrimSpace(amount)); err != nil {
		errs = append(errs, "amount must be a decimal number")
	} else if parsed.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}
