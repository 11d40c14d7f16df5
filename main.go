package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alapierre/go-peppol-client/peppol"
	"github.com/alapierre/go-peppol-client/peppol/model"
	"github.com/alapierre/go-peppol-client/peppol/qr"
	"github.com/alapierre/go-peppol-client/peppol/storage"
	"github.com/alapierre/go-peppol-client/peppol/ubl"
	"github.com/alapierre/go-peppol-client/peppol/util"
)

func main() {

	logrus.SetLevel(logrus.DebugLevel)

	token := util.GetEnvOrFailed("PEPPOL_STORECOVE_TOKEN")
	apiKey := util.GetEnvOrFailed("PEPPOL_UNIMAZE_API_KEY")

	configs := map[peppol.Provider]peppol.ProviderConfig{
		peppol.Storecove: {
			BaseURL:    "https://api.storecove.com",
			Credential: peppol.Credential{Token: token},
			Timeout:    15 * time.Second,
		},
		peppol.Unimaze: {
			BaseURL:    "https://api.unimaze.com",
			Credential: peppol.Credential{APIKey: apiKey},
			Timeout:    15 * time.Second,
		},
	}
	factory := peppol.NewFactory(configs)

	sender := peppol.NewSender(factory, storage.NewMemoryStore())

	invoice := sampleInvoice()

	document, err := ubl.Build(invoice)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(document))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := sender.Send(ctx, invoice, []peppol.Provider{peppol.Storecove, peppol.Unimaze})
	if err != nil {
		panic(err)
	}

	fmt.Println(result.Provider, result.DocumentID)

	link, err := qr.VerificationLink(configs[result.Provider], result.Provider, result.DocumentID)
	if err != nil {
		panic(err)
	}
	png, err := qr.Generate(link, 300)
	if err != nil {
		panic(err)
	}
	fmt.Printf("status link %s (qr: %d bytes)\n", link, len(png))
}

func sampleInvoice() *model.InvoiceSnapshot {

	line := model.LineItem{
		Name:       "Consulting services",
		Quantity:   decimal.NewFromInt(10),
		UnitPrice:  decimal.NewFromInt(100),
		TaxPercent: decimal.NewFromInt(21),
		TaxAmount:  decimal.NewFromInt(210),
		Subtotal:   decimal.NewFromInt(1000),
		Total:      decimal.NewFromInt(1210),
		UnitCode:   "HUR",
	}

	return &model.InvoiceSnapshot{
		Number:       "INV-2026-0042",
		IssueDate:    time.Now(),
		CurrencyCode: "EUR",
		Subtotal:     line.Subtotal,
		TaxTotal:     line.TaxAmount,
		Total:        line.Total,
		BalanceDue:   line.Total,
		Lines:        []model.LineItem{line},
		Supplier: model.RoutingProfile{
			EndpointID:       "9482348239847239874",
			EndpointScheme:   "0088",
			RegistrationName: "Acme Software B.V.",
			CompanyID:        "NL123456789B01",
			CompanyIDScheme:  "0106",
			TaxCompanyID:     "NL123456789B01",
			CountryCode:      "NL",
			StreetName:       "Keizersgracht 1",
			CityName:         "Amsterdam",
			PostalZone:       "1015 CJ",
		},
		Buyer: model.RoutingProfile{
			EndpointID:       "1912839218371829",
			EndpointScheme:   "0088",
			RegistrationName: "Example Buyer GmbH",
			TaxCompanyID:     "DE129273398",
			CountryCode:      "DE",
			StreetName:       "Unter den Linden 5",
			CityName:         "Berlin",
			PostalZone:       "10117",
			BuyerReference:   "PO-8831",
		},
	}
}
