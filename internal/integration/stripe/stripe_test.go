package stripe

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/Dhoini/personalized-gospels/internal/domain"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

const testSecret = "whsec_test_secret"

func signedHeader(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func checkoutParams(format domain.ProductFormat) CheckoutParams {
	return CheckoutParams{
		Name:         "Maria",
		Email:        "maria@example.com",
		Gender:       domain.GenderFemale,
		Format:       format,
		BibleVersion: domain.BibleVersionKJV,
		SuccessURL:   "http://localhost:3000/#/confirmation?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    "http://localhost:3000/#/create",
	}
}

func TestBuildCheckoutSessionParams_Digital(t *testing.T) {
	params := BuildCheckoutSessionParams(checkoutParams(domain.FormatDigital))

	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(2499), *item.PriceData.UnitAmount)
	assert.Equal(t, "usd", *item.PriceData.Currency)
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, "Personalized Gospels - Digital Download (PDF)", *item.PriceData.ProductData.Name)
	assert.Equal(t, `Personalized for "Maria" | King James Version | female pronouns`, *item.PriceData.ProductData.Description)

	assert.Equal(t, "Maria", params.Metadata[domain.MetadataCustomerName])
	assert.Equal(t, "female", params.Metadata[domain.MetadataGender])
	assert.Equal(t, "digital", params.Metadata[domain.MetadataFormat])
	assert.Equal(t, "kjv", params.Metadata[domain.MetadataBibleVersion])

	assert.Nil(t, params.ShippingAddressCollection)
	assert.Empty(t, params.ShippingOptions)
	assert.Nil(t, params.PhoneNumberCollection)
}

func TestBuildCheckoutSessionParams_DescriptionKeepsNameVerbatim(t *testing.T) {
	p := checkoutParams(domain.FormatDigital)
	p.Name = `O"Neil`
	params := BuildCheckoutSessionParams(p)

	assert.Equal(t, `Personalized for "O"Neil" | King James Version | female pronouns`, *params.LineItems[0].PriceData.ProductData.Description)
}

func TestBuildCheckoutSessionParams_PhysicalCollectsShipping(t *testing.T) {
	params := BuildCheckoutSessionParams(checkoutParams(domain.FormatHardcover))

	assert.Equal(t, int64(5999), *params.LineItems[0].PriceData.UnitAmount)
	require.NotNil(t, params.ShippingAddressCollection)
	assert.Len(t, params.ShippingAddressCollection.AllowedCountries, len(AllowedShippingCountries))

	require.Len(t, params.ShippingOptions, 2)
	standard := params.ShippingOptions[0].ShippingRateData
	assert.Equal(t, int64(599), *standard.FixedAmount.Amount)
	assert.Equal(t, int64(7), *standard.DeliveryEstimate.Minimum.Value)
	assert.Equal(t, int64(14), *standard.DeliveryEstimate.Maximum.Value)
	express := params.ShippingOptions[1].ShippingRateData
	assert.Equal(t, int64(1299), *express.FixedAmount.Amount)

	require.NotNil(t, params.PhoneNumberCollection)
	assert.True(t, *params.PhoneNumberCollection.Enabled)
}

func TestConfirmationFromSession(t *testing.T) {
	session := &stripego.CheckoutSession{
		ID:            "cs_test_a1b2c3d4e5f6",
		PaymentStatus: stripego.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   3999,
		CustomerDetails: &stripego.CheckoutSessionCustomerDetails{
			Email: "maria@example.com",
		},
		Metadata: domain.CheckoutMetadata{
			CustomerName: "Maria",
			Gender:       domain.GenderFemale,
			Format:       domain.FormatSoftcover,
			BibleVersion: domain.BibleVersionWEB,
		}.Map(),
	}

	conf, err := ConfirmationFromSession(session)
	require.NoError(t, err)
	assert.Equal(t, "WN-D4E5F6", conf.OrderID)
	assert.Equal(t, domain.OrderID(session.ID), conf.OrderID)
	assert.Equal(t, "maria@example.com", conf.CustomerEmail)
	assert.Equal(t, domain.FormatSoftcover, conf.Format)
	assert.Equal(t, int64(3999), conf.AmountTotal)

	session.PaymentStatus = stripego.CheckoutSessionPaymentStatusUnpaid
	_, err = ConfirmationFromSession(session)
	assert.ErrorIs(t, err, domain.ErrPaymentNotCompleted)
}

func TestCompletedCheckoutFromSession_PhysicalAddress(t *testing.T) {
	session := &stripego.CheckoutSession{
		ID:            "cs_test_123456",
		CustomerEmail: "maria@example.com",
		Metadata: map[string]string{
			domain.MetadataCustomerName: "Maria",
			domain.MetadataFormat:       "softcover",
		},
		ShippingDetails: &stripego.ShippingDetails{
			Name: "Maria Lopez",
			Address: &stripego.Address{
				Line1:      "1 Main St",
				City:       "Austin",
				State:      "TX",
				PostalCode: "78701",
			},
		},
		CustomerDetails: &stripego.CheckoutSessionCustomerDetails{Phone: "+15125550100"},
	}

	out := CompletedCheckoutFromSession("evt_1", session)
	assert.Equal(t, domain.GenderNeutral, out.Metadata.Gender)
	assert.Equal(t, domain.BibleVersionWEB, out.Metadata.BibleVersion)
	require.NotNil(t, out.ShippingAddress)
	assert.Equal(t, "Maria Lopez", out.ShippingAddress.Name)
	assert.Equal(t, "US", out.ShippingAddress.Country)
	assert.Equal(t, "+15125550100", out.ShippingAddress.Phone)

	session.Metadata[domain.MetadataFormat] = "digital"
	out = CompletedCheckoutFromSession("evt_2", session)
	assert.Nil(t, out.ShippingAddress)
}

func TestParseWebhookEvent_CheckoutCompleted(t *testing.T) {
	payload := []byte(`{
		"id": "evt_test_1",
		"object": "event",
		"type": "checkout.session.completed",
		"api_version": "2023-10-16",
		"data": {"object": {
			"id": "cs_test_abcdef",
			"object": "checkout.session",
			"customer_email": "maria@example.com",
			"amount_total": 2499,
			"payment_status": "paid",
			"metadata": {"customerName": "Maria", "gender": "female", "format": "digital", "bibleVersion": "web"}
		}}
	}`)

	event, err := ParseWebhookEvent(payload, signedHeader(payload, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_test_1", event.ID)
	assert.Equal(t, domain.WebhookEventCheckoutCompleted, event.Type)
	require.NotNil(t, event.Checkout)
	assert.Equal(t, "cs_test_abcdef", event.Checkout.SessionID)
	assert.Equal(t, domain.FormatDigital, event.Checkout.Metadata.Format)
	assert.Equal(t, int64(2499), event.Checkout.AmountTotal)
}

func TestParseWebhookEvent_PaymentFailed(t *testing.T) {
	payload := []byte(`{
		"id": "evt_test_2",
		"object": "event",
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": "pi_123", "object": "payment_intent", "last_payment_error": {"message": "card declined"}}}
	}`)

	event, err := ParseWebhookEvent(payload, signedHeader(payload, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", event.PaymentIntentID)
	assert.Equal(t, "card declined", event.FailureMessage)
	assert.Nil(t, event.Checkout)
}

func TestParseWebhookEvent_BadSignature(t *testing.T) {
	payload := []byte(`{"id": "evt_test_3", "type": "checkout.session.completed", "data": {"object": {}}}`)

	_, err := ParseWebhookEvent(payload, signedHeader(payload, "whsec_other"), testSecret)
	assert.ErrorIs(t, err, domain.ErrSignature)

	_, err = ParseWebhookEvent(payload, "", testSecret)
	assert.ErrorIs(t, err, domain.ErrSignature)
}

func TestClient_CheckoutRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "2499", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "Maria", r.PostForm.Get("metadata[customerName]"))
			fmt.Fprint(w, `{"id": "cs_test_new123", "object": "checkout.session", "url": "https://checkout.stripe.com/c/pay/cs_test_new123"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_test_new123":
			fmt.Fprint(w, `{"id": "cs_test_new123", "object": "checkout.session", "payment_status": "paid", "amount_total": 2499,
				"customer_email": "maria@example.com",
				"metadata": {"customerName": "Maria", "gender": "female", "format": "digital", "bibleVersion": "kjv"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"type": "invalid_request_error", "code": "resource_missing", "message": "No such checkout.session"}}`)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "sk_test_123", WebhookSecret: testSecret, BackendURL: srv.URL}, logger.NewNop())

	session, err := client.CreateCheckoutSession(context.Background(), checkoutParams(domain.FormatDigital))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_new123", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_new123", session.URL)

	conf, err := client.GetPaymentConfirmation(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "WN-NEW123", conf.OrderID)
	assert.Equal(t, domain.BibleVersionKJV, conf.BibleVersion)

	_, err = client.GetPaymentConfirmation(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
