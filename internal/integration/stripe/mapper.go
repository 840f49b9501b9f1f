package stripe

import (
	"fmt"

	stripego "github.com/stripe/stripe-go/v78"

	"github.com/Dhoini/personalized-gospels/internal/domain"
)

const (
	currencyUSD  = "usd"
	productTitle = "Personalized Gospels"
)

// AllowedShippingCountries страны, в которые доставляются физические книги
var AllowedShippingCountries = []string{"US", "CA", "GB", "AU", "NZ", "IE", "DE", "FR", "ES", "IT", "NL", "BE", "AT", "CH"}

// ShippingRate вариант доставки физического заказа
type ShippingRate struct {
	DisplayName string
	AmountCents int64
	MinDays     int64
	MaxDays     int64
}

// ShippingRates стандартная и экспресс-доставка
var ShippingRates = []ShippingRate{
	{DisplayName: "Standard Shipping", AmountCents: 599, MinDays: 7, MaxDays: 14},
	{DisplayName: "Express Shipping", AmountCents: 1299, MinDays: 3, MaxDays: 5},
}

// CheckoutParams данные для создания checkout-сессии
type CheckoutParams struct {
	Name         string
	Email        string
	Gender       domain.Gender
	Format       domain.ProductFormat
	BibleVersion domain.BibleVersion
	SuccessURL   string
	CancelURL    string
}

// CheckoutSession созданная сессия
type CheckoutSession struct {
	ID  string
	URL string
}

// BuildCheckoutSessionParams собирает параметры сессии: одна позиция по цене формата,
// метаданные персонализации, для физических форматов сбор адреса и телефона.
func BuildCheckoutSessionParams(p CheckoutParams) *stripego.CheckoutSessionParams {
	params := &stripego.CheckoutSessionParams{
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		CustomerEmail:      stripego.String(p.Email),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency: stripego.String(currencyUSD),
					ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripego.String(fmt.Sprintf("%s - %s", productTitle, p.Format.Label())),
						Description: stripego.String(productDescription(p)),
					},
					UnitAmount: stripego.Int64(p.Format.PriceCents()),
				},
				Quantity: stripego.Int64(1),
			},
		},
		SuccessURL: stripego.String(p.SuccessURL),
		CancelURL:  stripego.String(p.CancelURL),
	}

	md := domain.CheckoutMetadata{
		CustomerName: p.Name,
		Gender:       p.Gender,
		Format:       p.Format,
		BibleVersion: p.BibleVersion,
	}
	for k, v := range md.Map() {
		params.AddMetadata(k, v)
	}

	if p.Format.IsPhysical() {
		params.ShippingAddressCollection = &stripego.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripego.StringSlice(AllowedShippingCountries),
		}
		for _, rate := range ShippingRates {
			params.ShippingOptions = append(params.ShippingOptions, shippingOption(rate))
		}
		params.PhoneNumberCollection = &stripego.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripego.Bool(true),
		}
	}

	return params
}

func productDescription(p CheckoutParams) string {
	return fmt.Sprintf("Personalized for \"%s\" | %s | %s pronouns", p.Name, p.BibleVersion.DisplayName(), p.Gender.PronounLabel())
}

func shippingOption(rate ShippingRate) *stripego.CheckoutSessionShippingOptionParams {
	return &stripego.CheckoutSessionShippingOptionParams{
		ShippingRateData: &stripego.CheckoutSessionShippingOptionShippingRateDataParams{
			Type: stripego.String("fixed_amount"),
			FixedAmount: &stripego.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
				Amount:   stripego.Int64(rate.AmountCents),
				Currency: stripego.String(currencyUSD),
			},
			DisplayName: stripego.String(rate.DisplayName),
			DeliveryEstimate: &stripego.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
				Minimum: &stripego.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
					Unit:  stripego.String("business_day"),
					Value: stripego.Int64(rate.MinDays),
				},
				Maximum: &stripego.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
					Unit:  stripego.String("business_day"),
					Value: stripego.Int64(rate.MaxDays),
				},
			},
		},
	}
}

// customerEmail берет email сессии, а при его отсутствии email из customer_details
func customerEmail(session *stripego.CheckoutSession) string {
	if session.CustomerEmail != "" {
		return session.CustomerEmail
	}
	if session.CustomerDetails != nil {
		return session.CustomerDetails.Email
	}
	return ""
}

// ConfirmationFromSession возвращает подтверждение только для оплаченной сессии
func ConfirmationFromSession(session *stripego.CheckoutSession) (domain.PaymentConfirmation, error) {
	if session.PaymentStatus != stripego.CheckoutSessionPaymentStatusPaid {
		return domain.PaymentConfirmation{}, fmt.Errorf("%w: session %s is %s", domain.ErrPaymentNotCompleted, session.ID, session.PaymentStatus)
	}

	md := domain.MetadataFromMap(session.Metadata)
	return domain.PaymentConfirmation{
		OrderID:       domain.OrderID(session.ID),
		CustomerEmail: customerEmail(session),
		CustomerName:  md.CustomerName,
		Gender:        md.Gender,
		Format:        md.Format,
		BibleVersion:  md.BibleVersion,
		AmountTotal:   session.AmountTotal,
		PaymentStatus: string(session.PaymentStatus),
	}, nil
}

// CompletedCheckoutFromSession извлекает метаданные и адрес доставки.
// Адрес заполняется только для физических форматов.
func CompletedCheckoutFromSession(eventID string, session *stripego.CheckoutSession) domain.CompletedCheckout {
	md := domain.MetadataFromMap(session.Metadata)
	if md.Gender == "" {
		md.Gender = domain.GenderNeutral
	}
	if md.BibleVersion == "" {
		md.BibleVersion = domain.BibleVersionWEB
	}

	out := domain.CompletedCheckout{
		EventID:       eventID,
		SessionID:     session.ID,
		CustomerEmail: customerEmail(session),
		CustomerName:  md.CustomerName,
		AmountTotal:   session.AmountTotal,
		Metadata:      md,
	}

	if md.Format.IsPhysical() && session.ShippingDetails != nil {
		out.ShippingAddress = shippingAddress(session, md.CustomerName)
	}
	return out
}

func shippingAddress(session *stripego.CheckoutSession, fallbackName string) *domain.ShippingAddress {
	details := session.ShippingDetails
	addr := &domain.ShippingAddress{
		Name:    details.Name,
		Country: "US",
	}
	if addr.Name == "" {
		addr.Name = fallbackName
	}
	if details.Address != nil {
		addr.Street1 = details.Address.Line1
		addr.Street2 = details.Address.Line2
		addr.City = details.Address.City
		addr.State = details.Address.State
		addr.PostalCode = details.Address.PostalCode
		if details.Address.Country != "" {
			addr.Country = details.Address.Country
		}
	}
	if session.CustomerDetails != nil {
		addr.Phone = session.CustomerDetails.Phone
	}
	return addr
}
