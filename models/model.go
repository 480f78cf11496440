package models

import "github.com/google/uuid"

// Reference ties a journal entry or cash movement back to the business
// record (sale, payroll run, expense) that produced it.
type Reference struct {
	ID   string
	Type string
}

func NewID() string {
	return uuid.NewString()
}
