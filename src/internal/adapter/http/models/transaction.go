package models

type TransactionView struct {
	Debtor    string `json:"debtor"`
	Creditor  string `json:"creditor"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"createdAt"`
}

type ListTransactionsResponse struct {
	Transactions []TransactionView `json:"transactions"`
}
