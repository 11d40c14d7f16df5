package ubl

import "github.com/beevik/etree"

var requiredElements = []string{
	"cbc:ID",
	"cbc:IssueDate",
	"cbc:InvoiceTypeCode",
	"cbc:DocumentCurrencyCode",
	"cac:AccountingSupplierParty",
	"cac:AccountingCustomerParty",
	"cac:TaxTotal",
	"cac:LegalMonetaryTotal",
	"cac:InvoiceLine",
}

// Validate performs a structural check: the document must parse as XML,
// carry an Invoice root and contain every required top-level element at
// least once. It is not schema validation.
func Validate(document []byte) bool {

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(document); err != nil {
		return false
	}

	root := doc.Root()
	if root == nil || root.Tag != "Invoice" {
		return false
	}

	for _, name := range requiredElements {
		if root.SelectElement(name) == nil {
			return false
		}
	}
	return true
}
