package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceSnapshot is a read-only view of an invoice as assembled by the
// surrounding billing application. The transmission core never mutates it.
type InvoiceSnapshot struct {
	Number        string
	IssueDate     time.Time
	CurrencyCode  string
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
	BalanceDue    decimal.Decimal
	Lines         []LineItem
	Supplier      RoutingProfile
	Buyer         RoutingProfile
}

// LineItem carries pre-computed amounts. Total must equal Subtotal plus
// TaxAmount; the document builder checks this but never recomputes it.
type LineItem struct {
	Name        string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxPercent  decimal.Decimal
	TaxAmount   decimal.Decimal
	Subtotal    decimal.Decimal
	Total       decimal.Decimal
	UnitCode    string // UN/ECE Recommendation 20, e.g. C62
}

// RoutingProfile identifies one trading party on the Peppol network.
// An empty EndpointID on the buyer side blocks transmission but not
// document building.
type RoutingProfile struct {
	EndpointID       string
	EndpointScheme   string // e.g. "0088" for GLN, "9944" for NL VAT
	RegistrationName string
	CompanyID        string
	CompanyIDScheme  string
	TaxCompanyID     string
	CountryCode      string
	StreetName       string
	CityName         string
	PostalZone       string
	BuyerReference   string
}
