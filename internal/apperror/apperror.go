// Package apperror définit la taxonomie d'erreurs du cycle de commande
// et sa traduction en réponse HTTP.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classe une erreur selon la façon dont elle doit être exposée au client.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindDomain
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindDomain:
		return "DOMAIN"
	case KindInfrastructure:
		return "INFRASTRUCTURE"
	default:
		return "UNKNOWN"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compare par genre et message, pour que errors.Is fonctionne avec les sentinelles.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Messages partagés entre services et handlers.
const (
	MsgEmptyCart             = "Cart is empty"
	MsgCartItemNotFound      = "Cart item not found"
	MsgProductNotFound       = "Product not found"
	MsgTransactionNotFound   = "Transaction not found"
	MsgLineItemNotFound      = "Order item not found"
	MsgShippingNotFound      = "Shipping record not found"
	MsgShippingExists        = "Transaction already has a shipping record"
	MsgShippingCostNegative  = "Shipping cost cannot be negative"
	MsgProofRetry            = "A payment proof was just uploaded, please try again in a moment"
	MsgQuantityPositive      = "Quantity must be greater than zero"
	MsgPriceNegative         = "Unit price cannot be negative"
	MsgQuantityNegative      = "Quantity cannot be negative"
	MsgDiscountNegative      = "Discount cannot be negative"
	MsgDiscountExceeds       = "Discount cannot exceed subtotal"
	MsgCheckoutSessionExpire = "Checkout session not found, please fill in the shipping form again"
)

var (
	ErrEmptyCart           = Domain(MsgEmptyCart)
	ErrCartItemNotFound    = Domain(MsgCartItemNotFound)
	ErrProductNotFound     = Domain(MsgProductNotFound)
	ErrTransactionNotFound = Domain(MsgTransactionNotFound)
	ErrLineItemNotFound    = Domain(MsgLineItemNotFound)
	ErrShippingNotFound    = Domain(MsgShippingNotFound)
)

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Domain(message string) *Error {
	return &Error{Kind: KindDomain, Message: message}
}

func Domainf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDomain, Message: fmt.Sprintf(format, args...)}
}

// Infrastructure enveloppe une erreur de stockage ou de réseau.
func Infrastructure(op string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: op, Err: err}
}

// KindOf retourne KindInfrastructure pour toute erreur non typée.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// StatusCode : 400 pour les échecs métier attendus, 500 pour le reste.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDomain:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage retourne le texte à renvoyer au client. Le détail des erreurs
// d'infrastructure reste dans les logs.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInfrastructure {
		return e.Message
	}
	return "Internal server error, please try again later"
}
