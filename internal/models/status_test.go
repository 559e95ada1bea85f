package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingMethodRate(t *testing.T) {
	assert.Equal(t, int64(50000), MethodRegular.Rate())
	assert.Equal(t, int64(100000), MethodExpress.Rate())
	assert.Equal(t, int64(200000), MethodSameDay.Rate())
	assert.Equal(t, int64(50000), ShippingMethod("kargo").Rate())
}

func TestNormalizeShippingMethod(t *testing.T) {
	assert.Equal(t, MethodExpress, NormalizeShippingMethod(" Express "))
	assert.Equal(t, MethodSameDay, NormalizeShippingMethod("same_day"))
	assert.Equal(t, MethodRegular, NormalizeShippingMethod(""))
	assert.Equal(t, MethodRegular, NormalizeShippingMethod("pigeon"))
}

func TestStatusValidity(t *testing.T) {
	for _, s := range TransactionStatuses() {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range ShippingStatuses() {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TransactionStatus("Bogus").Valid())
	assert.False(t, TransactionStatus("verified").Valid())
	assert.False(t, ShippingStatus("Lost").Valid())
	assert.Len(t, TransactionStatuses(), 6)
	assert.Len(t, ShippingStatuses(), 5)
}

func TestJoinValues(t *testing.T) {
	assert.Equal(t, "regular, express, same_day", JoinValues(ShippingMethods()))
}

func TestTransactionRecalculate(t *testing.T) {
	tx := Transaction{Subtotal: 130000, Discount: 10000, ShippingCost: 50000}
	tx.Recalculate()
	assert.Equal(t, int64(170000), tx.Total)
}

func TestAddressMissingField(t *testing.T) {
	a := Address{RecipientName: "Budi", Phone: "0812"}
	assert.Equal(t, "email", a.MissingField())

	a = Address{
		RecipientName: "Budi", Phone: "0812", Email: "b@x.id", Province: "Jawa Barat",
		City: "Bandung", District: "Coblong", PostalCode: "40132", FullAddress: "Jl. Dago 10",
	}
	assert.Empty(t, a.MissingField())
}
