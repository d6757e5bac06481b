package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrDuplicateUser = errors.New("User already exists")
var ErrNoOutstandingDebt = errors.New("No outstanding debt")
