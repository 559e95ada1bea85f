package models

import "strings"

// TransactionStatus : statut d'une commande (colonne status_pesanan).
type TransactionStatus string

const (
	StatusAwaitingVerification TransactionStatus = "Awaiting Verification"
	StatusVerified             TransactionStatus = "Verified"
	StatusShipping             TransactionStatus = "Shipping"
	StatusDelivered            TransactionStatus = "Delivered"
	StatusCompleted            TransactionStatus = "Completed"
	StatusCancelled            TransactionStatus = "Cancelled"
)

// TransactionStatuses liste les statuts acceptés, dans l'ordre du cycle de vie.
func TransactionStatuses() []TransactionStatus {
	return []TransactionStatus{
		StatusAwaitingVerification,
		StatusVerified,
		StatusShipping,
		StatusDelivered,
		StatusCompleted,
		StatusCancelled,
	}
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusAwaitingVerification, StatusVerified, StatusShipping,
		StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ShippingStatus : statut d'un envoi (colonne status_pengiriman).
type ShippingStatus string

const (
	ShippingAwaitingPickup ShippingStatus = "Awaiting Pickup"
	ShippingInTransit      ShippingStatus = "In Transit"
	ShippingArrived        ShippingStatus = "Arrived"
	ShippingDelivered      ShippingStatus = "Delivered"
	ShippingCancelled      ShippingStatus = "Cancelled"
)

func ShippingStatuses() []ShippingStatus {
	return []ShippingStatus{
		ShippingAwaitingPickup,
		ShippingInTransit,
		ShippingArrived,
		ShippingDelivered,
		ShippingCancelled,
	}
}

func (s ShippingStatus) Valid() bool {
	switch s {
	case ShippingAwaitingPickup, ShippingInTransit, ShippingArrived,
		ShippingDelivered, ShippingCancelled:
		return true
	}
	return false
}

// ShippingMethod : méthode de livraison, chacune à tarif fixe.
type ShippingMethod string

const (
	MethodRegular ShippingMethod = "regular"
	MethodExpress ShippingMethod = "express"
	MethodSameDay ShippingMethod = "same_day"
)

func ShippingMethods() []ShippingMethod {
	return []ShippingMethod{MethodRegular, MethodExpress, MethodSameDay}
}

func (m ShippingMethod) Valid() bool {
	switch m {
	case MethodRegular, MethodExpress, MethodSameDay:
		return true
	}
	return false
}

// Rate retourne le tarif en rupiah. Une méthode inconnue est facturée au tarif regular.
func (m ShippingMethod) Rate() int64 {
	switch m {
	case MethodExpress:
		return 100000
	case MethodSameDay:
		return 200000
	default:
		return 50000
	}
}

// NormalizeShippingMethod ramène une saisie libre à une méthode connue, regular par défaut.
func NormalizeShippingMethod(raw string) ShippingMethod {
	m := ShippingMethod(strings.ToLower(strings.TrimSpace(raw)))
	if m.Valid() {
		return m
	}
	return MethodRegular
}

// JoinValues formate une liste de valeurs valides pour les messages d'erreur.
func JoinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
