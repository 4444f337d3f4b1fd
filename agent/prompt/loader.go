package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/sales.txt
	salesRaw string

	//go:embed template/intent.txt
	intentRaw string

	//go:embed template/name.txt
	nameRaw string

	//go:embed template/address.txt
	addressRaw string

	//go:embed template/payment.txt
	paymentRaw string

	//go:embed template/quantity.txt
	quantityRaw string

	//go:embed template/removal.txt
	removalRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Sales    string
	Intent   string
	Name     string
	Address  string
	Payment  string
	Quantity string
	Removal  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Sales:    strings.TrimSpace(salesRaw),
		Intent:   strings.TrimSpace(intentRaw),
		Name:     strings.TrimSpace(nameRaw),
		Address:  strings.TrimSpace(addressRaw),
		Payment:  strings.TrimSpace(paymentRaw),
		Quantity: strings.TrimSpace(quantityRaw),
		Removal:  strings.TrimSpace(removalRaw),
	}
}
