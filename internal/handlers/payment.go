package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/middleware"
	"mobilenest_back_end/internal/services"
)

// Marge laissée aux autres champs du formulaire multipart.
const multipartOverhead int64 = 1 << 20

//
// 💳 POST /api/payment
//
// SubmitPayment reçoit la preuve de virement et transforme le panier en commande.
func (h *Handler) SubmitPayment(c *gin.Context) {
	userID := currentUser(c)

	session, err := h.checkoutSession(c.Request)
	if err != nil {
		h.respondError(c, err)
		return
	}
	st := readCheckout(session)
	if st.UserID == 0 || st.ShippingID == 0 {
		h.respondError(c, apperror.Domain(apperror.MsgCheckoutSessionExpire))
		return
	}
	if st.UserID != userID {
		forbidden(c)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxProofSize+multipartOverhead)

	var proof *services.ProofUpload
	if fh, err := c.FormFile("bukti_pembayaran"); err == nil {
		proof = &services.ProofUpload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, "Payment proof file exceeds the 5 MB limit")
			return
		}
		badRequest(c, "Invalid multipart form")
		return
	}

	order, err := h.Payments.Submit(c.Request.Context(), services.PaymentSubmission{
		UserID:              userID,
		ShippingID:          st.ShippingID,
		SessionShippingCost: st.Ongkir,
		PaymentMethod:       c.PostForm("metode_pembayaran"),
		SenderName:          c.PostForm("nama_pengirim"),
		TransferDate:        c.PostForm("tanggal_transfer"),
		Note:                c.PostForm("catatan"),
		Proof:               proof,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	clearCheckout(session)
	if err := session.Save(c.Request, c.Writer); err != nil {
		h.Logger.Warn("⚠️ Nettoyage session checkout échoué", zap.Uint("user_id", userID), zap.Error(err))
	}

	c.Set(middleware.AuditAction, audit.ActionPaymentSubmitted)
	c.Set(middleware.AuditResourceID, order.OrderNumber)
	c.Set(middleware.AuditNewValue, gin.H{"no_transaksi": order.OrderNumber, "total_harga": order.Total})

	okMessage(c, "Payment submitted, awaiting verification", gin.H{
		"id_transaksi":   order.ID,
		"no_transaksi":   order.OrderNumber,
		"total_harga":    order.Total,
		"status_pesanan": order.Status,
	})
}
