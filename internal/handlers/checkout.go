package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/config"
	"mobilenest_back_end/internal/models"
	"mobilenest_back_end/internal/services"
)

// Clés de la session de checkout.
const (
	sessionUserID     = "user_id"
	sessionShippingID = "id_pengiriman"
	sessionOngkir     = "ongkir"
	sessionSubtotal   = "subtotal"
)

// checkoutState est le contenu utile de la session entre livraison et paiement.
type checkoutState struct {
	UserID     uint
	ShippingID uint
	Ongkir     int64
	Subtotal   int64
}

func (h *Handler) checkoutSession(r *http.Request) (*sessions.Session, error) {
	if h.Sessions == nil {
		return nil, apperror.Infrastructure("checkout session", errors.New("session store not configured"))
	}
	session, err := h.Sessions.Get(r, config.CheckoutSessionName)
	if err != nil && session == nil {
		return nil, apperror.Infrastructure("checkout session", err)
	}
	// Un cookie illisible (secret changé) donne une session neuve.
	return session, nil
}

func readCheckout(session *sessions.Session) checkoutState {
	var st checkoutState
	st.UserID, _ = session.Values[sessionUserID].(uint)
	st.ShippingID, _ = session.Values[sessionShippingID].(uint)
	st.Ongkir, _ = session.Values[sessionOngkir].(int64)
	st.Subtotal, _ = session.Values[sessionSubtotal].(int64)
	return st
}

func clearCheckout(session *sessions.Session) {
	delete(session.Values, sessionUserID)
	delete(session.Values, sessionShippingID)
	delete(session.Values, sessionOngkir)
	delete(session.Values, sessionSubtotal)
}

type checkoutShippingInput struct {
	Method string `json:"metode_pengiriman"`
	models.Address
}

//
// 🧭 POST /api/checkout/shipping
//
// CheckoutShipping enregistre l'adresse et la méthode, crée l'envoi non rattaché et
// mémorise l'étape dans la session.
func (h *Handler) CheckoutShipping(c *gin.Context) {
	userID := currentUser(c)
	var input checkoutShippingInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	subtotal, err := h.Carts.GetCartTotal(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if subtotal <= 0 {
		h.respondError(c, apperror.ErrEmptyCart)
		return
	}

	session, err := h.checkoutSession(c.Request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	record, err := h.Shipments.CreateShipping(ctx, services.CreateShippingInput{
		UserID:  userID,
		Address: input.Address,
		Method:  input.Method,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	session.Values[sessionUserID] = userID
	session.Values[sessionShippingID] = record.ID
	session.Values[sessionOngkir] = record.Cost
	session.Values[sessionSubtotal] = subtotal
	if err := session.Save(c.Request, c.Writer); err != nil {
		h.respondError(c, apperror.Infrastructure("save checkout session", err))
		return
	}

	h.Logger.Info("🧭 Étape livraison enregistrée",
		zap.Uint("user_id", userID),
		zap.String("no_pengiriman", record.ShippingNumber))
	ok(c, gin.H{
		"id_pengiriman":     record.ID,
		"no_pengiriman":     record.ShippingNumber,
		"metode_pengiriman": record.Method,
		"ongkir":            record.Cost,
		"subtotal":          subtotal,
		"total":             subtotal + record.Cost,
	})
}

//
// 🧾 GET /api/checkout/summary
//
func (h *Handler) CheckoutSummary(c *gin.Context) {
	userID := currentUser(c)
	lines, err := h.Carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var subtotal int64
	for _, l := range lines {
		subtotal += l.Subtotal()
	}

	var st checkoutState
	if session, err := h.checkoutSession(c.Request); err == nil {
		st = readCheckout(session)
	}
	if st.UserID != userID {
		st = checkoutState{}
	}

	ok(c, gin.H{
		"items":         lines,
		"subtotal":      subtotal,
		"id_pengiriman": st.ShippingID,
		"ongkir":        st.Ongkir,
		"total":         subtotal + st.Ongkir,
	})
}
