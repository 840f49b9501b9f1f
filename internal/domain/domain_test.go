package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormats_PriceAndLabel(t *testing.T) {
	for _, info := range Formats() {
		assert.Greater(t, info.PriceCents, int64(0), info.Format)
		assert.NotEmpty(t, info.Label, info.Format)
		assert.Equal(t, info.Format != FormatDigital, info.Physical, info.Format)
	}
	assert.Equal(t, int64(3999), FormatSoftcover.PriceCents())
	assert.False(t, ProductFormat("paperback").Valid())
}

func TestOrderID(t *testing.T) {
	assert.Equal(t, "WN-ABC123", OrderID("cs_test_a1b2c3abc123"))
	assert.Equal(t, "WN-XY", OrderID("xy"))
}

func TestOrder_TransitionTo(t *testing.T) {
	now := time.Now()
	order := Order{ID: "WN-000001", Status: OrderStatusPending}

	require.NoError(t, order.TransitionTo(OrderStatusProcessing, now))
	assert.Equal(t, OrderStatusProcessing, order.Status)
	assert.Equal(t, now, order.UpdatedAt)

	require.NoError(t, order.TransitionTo(OrderStatusShipped, now))

	err := order.TransitionTo(OrderStatusProcessing, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusShipped, order.Status)
}

func TestOrder_PendingCannotSkipToShipped(t *testing.T) {
	order := Order{Status: OrderStatusPending}
	assert.ErrorIs(t, order.TransitionTo(OrderStatusShipped, time.Now()), ErrInvalidTransition)
}

func TestNewFulfillmentRequest_AddressOnlyForPhysical(t *testing.T) {
	addr := &ShippingAddress{Name: "Maria", Street1: "1 Main St", City: "Austin", State: "TX", PostalCode: "78701", Country: "US"}

	digital := NewFulfillmentRequest(Order{ID: "WN-1", Format: FormatDigital}, addr)
	assert.Nil(t, digital.ShippingAddress)

	physical := NewFulfillmentRequest(Order{ID: "WN-2", Format: FormatHardcover}, addr)
	require.NotNil(t, physical.ShippingAddress)
	assert.NotSame(t, addr, physical.ShippingAddress)
}

func TestFulfillmentRequest_Validate(t *testing.T) {
	req := FulfillmentRequest{OrderID: "WN-1", CustomerEmail: "a@b.c", Format: FormatSoftcover}

	err := req.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Errors.Fields(), "shippingAddress")

	req.ShippingAddress = &ShippingAddress{Name: "Maria"}
	err = req.Validate()
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Errors.Fields(), "shippingAddress.street1")

	digital := FulfillmentRequest{OrderID: "WN-1", CustomerEmail: "a@b.c", Format: FormatDigital}
	assert.NoError(t, digital.Validate())
}

func TestMetadataRoundTrip(t *testing.T) {
	md := CheckoutMetadata{CustomerName: "Maria", Gender: GenderFemale, Format: FormatLeather, BibleVersion: BibleVersionKJV}
	assert.Equal(t, md, MetadataFromMap(md.Map()))
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, &AuthenticationError{Provider: "lulu", OriginalErr: errors.New("boom")}, ErrAuthentication)
	assert.ErrorIs(t, &UnsupportedFormatError{Format: "scroll"}, ErrUnsupportedFormat)
	assert.ErrorIs(t, &FulfillmentError{Provider: "lulu", StatusCode: 400}, ErrFulfillment)
	assert.ErrorIs(t, &SignatureVerificationError{}, ErrSignature)
	assert.ErrorIs(t, NewNotFoundError("order", "WN-1"), ErrNotFound)
}
