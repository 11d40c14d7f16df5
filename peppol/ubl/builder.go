package ubl

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/alapierre/go-peppol-client/peppol/model"
)

const (
	nsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	nsCAC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCBC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	// 380 is the UNTDID 1001 code for a commercial invoice
	invoiceTypeCode = "380"

	defaultUnitCode = "C62"
)

// AssemblyError signals malformed or incomplete invoice input. It is fatal
// for the send and never retried.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return "invoice document assembly: " + e.Reason
}

// Build renders the invoice snapshot as a UBL 2.1 Invoice document.
// The output is deterministic: the same snapshot always yields the same
// bytes, which matters for archival and audit.
//
// A missing buyer endpoint id is not an error here; a document may still be
// rendered for archival even when it cannot be transmitted.
func Build(inv *model.InvoiceSnapshot) ([]byte, error) {

	if len(inv.Lines) == 0 {
		return nil, &AssemblyError{Reason: "invoice has no line items"}
	}
	if inv.CurrencyCode == "" {
		return nil, &AssemblyError{Reason: "currency code is empty"}
	}
	for i, line := range inv.Lines {
		if !line.Subtotal.Add(line.TaxAmount).Equal(line.Total) {
			return nil, &AssemblyError{Reason: fmt.Sprintf(
				"line %d: total %s does not equal subtotal %s plus tax %s",
				i+1, line.Total, line.Subtotal, line.TaxAmount)}
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", nsInvoice)
	root.CreateAttr("xmlns:cac", nsCAC)
	root.CreateAttr("xmlns:cbc", nsCBC)

	root.CreateElement("cbc:ID").SetText(inv.Number)
	root.CreateElement("cbc:IssueDate").SetText(inv.IssueDate.Format("2006-01-02"))
	root.CreateElement("cbc:InvoiceTypeCode").SetText(invoiceTypeCode)
	root.CreateElement("cbc:DocumentCurrencyCode").SetText(inv.CurrencyCode)
	if inv.Buyer.BuyerReference != "" {
		root.CreateElement("cbc:BuyerReference").SetText(inv.Buyer.BuyerReference)
	}

	appendParty(root, "cac:AccountingSupplierParty", inv.Supplier)
	appendParty(root, "cac:AccountingCustomerParty", inv.Buyer)
	appendTaxTotal(root, inv)
	appendMonetaryTotal(root, inv)

	for i, line := range inv.Lines {
		appendLine(root, i+1, line, inv.CurrencyCode)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func appendParty(root *etree.Element, name string, p model.RoutingProfile) {

	party := root.CreateElement(name).CreateElement("cac:Party")

	if p.EndpointID != "" {
		ep := party.CreateElement("cbc:EndpointID")
		if p.EndpointScheme != "" {
			ep.CreateAttr("schemeID", p.EndpointScheme)
		}
		ep.SetText(p.EndpointID)
	}

	party.CreateElement("cac:PartyName").CreateElement("cbc:Name").SetText(p.RegistrationName)

	addr := party.CreateElement("cac:PostalAddress")
	addr.CreateElement("cbc:StreetName").SetText(p.StreetName)
	addr.CreateElement("cbc:CityName").SetText(p.CityName)
	addr.CreateElement("cbc:PostalZone").SetText(p.PostalZone)
	addr.CreateElement("cac:Country").CreateElement("cbc:IdentificationCode").SetText(p.CountryCode)

	if p.TaxCompanyID != "" {
		pts := party.CreateElement("cac:PartyTaxScheme")
		pts.CreateElement("cbc:CompanyID").SetText(p.TaxCompanyID)
		pts.CreateElement("cac:TaxScheme").CreateElement("cbc:ID").SetText("VAT")
	}

	ple := party.CreateElement("cac:PartyLegalEntity")
	ple.CreateElement("cbc:RegistrationName").SetText(p.RegistrationName)
	if p.CompanyID != "" {
		cid := ple.CreateElement("cbc:CompanyID")
		if p.CompanyIDScheme != "" {
			cid.CreateAttr("schemeID", p.CompanyIDScheme)
		}
		cid.SetText(p.CompanyID)
	}
}

// appendTaxTotal emits one TaxSubtotal per distinct tax rate, in order of
// first appearance on the lines.
func appendTaxTotal(root *etree.Element, inv *model.InvoiceSnapshot) {

	tt := root.CreateElement("cac:TaxTotal")
	amount(tt, "cbc:TaxAmount", inv.TaxTotal, inv.CurrencyCode)

	type rateBucket struct {
		percent decimal.Decimal
		taxable decimal.Decimal
		tax     decimal.Decimal
	}

	var buckets []*rateBucket
	for _, line := range inv.Lines {
		var b *rateBucket
		for _, e := range buckets {
			if e.percent.Equal(line.TaxPercent) {
				b = e
				break
			}
		}
		if b == nil {
			b = &rateBucket{percent: line.TaxPercent}
			buckets = append(buckets, b)
		}
		b.taxable = b.taxable.Add(line.Subtotal)
		b.tax = b.tax.Add(line.TaxAmount)
	}

	for _, b := range buckets {
		st := tt.CreateElement("cac:TaxSubtotal")
		amount(st, "cbc:TaxableAmount", b.taxable, inv.CurrencyCode)
		amount(st, "cbc:TaxAmount", b.tax, inv.CurrencyCode)
		cat := st.CreateElement("cac:TaxCategory")
		cat.CreateElement("cbc:ID").SetText(taxCategoryID(b.percent))
		cat.CreateElement("cbc:Percent").SetText(b.percent.StringFixed(2))
		cat.CreateElement("cac:TaxScheme").CreateElement("cbc:ID").SetText("VAT")
	}
}

func appendMonetaryTotal(root *etree.Element, inv *model.InvoiceSnapshot) {

	taxExclusive := inv.Subtotal.Sub(inv.DiscountTotal)

	lmt := root.CreateElement("cac:LegalMonetaryTotal")
	amount(lmt, "cbc:LineExtensionAmount", inv.Subtotal, inv.CurrencyCode)
	amount(lmt, "cbc:TaxExclusiveAmount", taxExclusive, inv.CurrencyCode)
	amount(lmt, "cbc:TaxInclusiveAmount", taxExclusive.Add(inv.TaxTotal), inv.CurrencyCode)
	if inv.DiscountTotal.IsPositive() {
		amount(lmt, "cbc:AllowanceTotalAmount", inv.DiscountTotal, inv.CurrencyCode)
	}
	amount(lmt, "cbc:PayableAmount", inv.BalanceDue, inv.CurrencyCode)
}

func appendLine(root *etree.Element, number int, line model.LineItem, currency string) {

	il := root.CreateElement("cac:InvoiceLine")
	il.CreateElement("cbc:ID").SetText(strconv.Itoa(number))

	unit := line.UnitCode
	if unit == "" {
		unit = defaultUnitCode
	}
	qty := il.CreateElement("cbc:InvoicedQuantity")
	qty.CreateAttr("unitCode", unit)
	qty.SetText(line.Quantity.String())

	amount(il, "cbc:LineExtensionAmount", line.Subtotal, currency)

	item := il.CreateElement("cac:Item")
	if line.Description != "" {
		item.CreateElement("cbc:Description").SetText(line.Description)
	}
	item.CreateElement("cbc:Name").SetText(line.Name)

	cat := item.CreateElement("cac:ClassifiedTaxCategory")
	cat.CreateElement("cbc:ID").SetText(taxCategoryID(line.TaxPercent))
	cat.CreateElement("cbc:Percent").SetText(line.TaxPercent.StringFixed(2))
	cat.CreateElement("cac:TaxScheme").CreateElement("cbc:ID").SetText("VAT")

	price := il.CreateElement("cac:Price")
	amount(price, "cbc:PriceAmount", line.UnitPrice, currency)
}

// amount serializes with exactly two decimal digits and a dot separator,
// independent of locale.
func amount(parent *etree.Element, name string, value decimal.Decimal, currency string) {
	e := parent.CreateElement(name)
	e.CreateAttr("currencyID", currency)
	e.SetText(value.StringFixed(2))
}

// taxCategoryID maps a rate to the UNCL5305 category: Z for zero rated,
// S for standard rated.
func taxCategoryID(percent decimal.Decimal) string {
	if percent.IsZero() {
		return "Z"
	}
	return "S"
}
