package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/middleware"
	"mobilenest_back_end/internal/models"
	"mobilenest_back_end/internal/services"
	"mobilenest_back_end/internal/utils"
)

const proofURLTTL = 15 * time.Minute

type createOrderInput struct {
	UserID        uint   `json:"id_user"`
	PaymentMethod string `json:"metode_pembayaran"`
	Note          string `json:"catatan"`
}

// Transactions sert /api/transaksi.
//
//	POST   ?action=create                  {id_user}
//	GET    ?action=get|qr|proof&id=<transaksi>
//	GET    ?action=user&id=<user>&status=&limit=&offset=
//	GET    ?action=list|search             (admin)
//	PUT    ?action=update|verify|discount|payment|shipping-cost&id=<transaksi> (admin)
//	DELETE ?action=delete&id=<transaksi>   (admin)
func (h *Handler) Transactions(c *gin.Context) {
	switch route(c, "") {
	case "POST create":
		h.createOrder(c)
	case "GET get":
		h.getOrder(c)
	case "GET user":
		h.getUserOrders(c)
	case "GET list":
		h.listOrders(c)
	case "GET search":
		h.searchOrders(c)
	case "GET qr":
		h.orderQR(c)
	case "GET proof":
		h.orderProof(c)
	case "PUT update":
		h.updateOrderStatus(c)
	case "PUT verify":
		h.verifyPayment(c)
	case "PUT discount":
		h.applyDiscount(c)
	case "PUT payment":
		h.updatePaymentInfo(c)
	case "PUT shipping-cost":
		h.updateOrderShippingCost(c)
	case "DELETE delete":
		h.deleteOrder(c)
	default:
		unknownAction(c)
	}
}

//
// 🧾 POST /api/transaksi?action=create
//
func (h *Handler) createOrder(c *gin.Context) {
	var input createOrderInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	userID, allowed := targetUser(c, input.UserID)
	if !allowed {
		return
	}

	order, err := h.Orders.CreateOrder(c.Request.Context(), userID, services.CreateOrderInput{
		PaymentMethod: input.PaymentMethod,
		Note:          input.Note,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderCreate, nil, gin.H{"no_transaksi": order.OrderNumber, "total_harga": order.Total})
	c.Set(middleware.AuditResourceID, strconv.FormatUint(uint64(order.ID), 10))
	okMessage(c, "Order created", order)
}

// loadOwnedOrder charge la commande ?id= et vérifie l'accès de l'appelant.
func (h *Handler) loadOwnedOrder(c *gin.Context) (*models.Transaction, bool) {
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	order, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if !authorize(c, order.UserID) {
		return nil, false
	}
	return order, true
}

func (h *Handler) getOrder(c *gin.Context) {
	order, allowed := h.loadOwnedOrder(c)
	if !allowed {
		return
	}
	ok(c, order)
}

func (h *Handler) getUserOrders(c *gin.Context) {
	explicit, err := optionalQueryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	userID, allowed := targetUser(c, explicit)
	if !allowed {
		return
	}

	orders, total, err := h.Orders.GetUserOrders(c.Request.Context(), userID,
		c.Query("status"), queryInt(c, "limit", services.DefaultOrderPageSize), queryInt(c, "offset", 0))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"items": orders, "total": total})
}

func (h *Handler) listOrders(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	userID, err := optionalQueryID(c, "id_user")
	if err != nil {
		h.respondError(c, err)
		return
	}

	orders, total, err := h.Orders.ListOrders(c.Request.Context(), services.OrderFilter{
		UserID: userID,
		Status: c.Query("status"),
		Limit:  queryInt(c, "limit", services.DefaultOrderPageSize),
		Offset: queryInt(c, "offset", 0),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"items": orders, "total": total})
}

//
// 🔍 GET /api/transaksi?action=search&q=
//
func (h *Handler) searchOrders(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "Parameter q is required")
		return
	}
	hits, err := h.Orders.SearchOrders(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"items": hits, "total": len(hits)})
}

func (h *Handler) orderQR(c *gin.Context) {
	order, allowed := h.loadOwnedOrder(c)
	if !allowed {
		return
	}
	png, err := utils.GenerateOrderQR(order.OrderNumber, order.Total, queryInt(c, "size", 256))
	if err != nil {
		h.respondError(c, apperror.Infrastructure("generate qr", err))
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

// orderProof renvoie une URL signée (MinIO) ou le fichier local de la preuve.
func (h *Handler) orderProof(c *gin.Context) {
	order, allowed := h.loadOwnedOrder(c)
	if !allowed {
		return
	}
	if order.PaymentProof == "" {
		badRequest(c, "No payment proof for this transaction")
		return
	}

	if linker, isRemote := h.Proofs.(ProofLinker); isRemote {
		url, err := linker.SignedURL(c.Request.Context(), order.PaymentProof, proofURLTTL)
		if err != nil {
			h.respondError(c, apperror.Infrastructure("sign proof url", err))
			return
		}
		ok(c, gin.H{"url": url, "expires_in": int(proofURLTTL.Seconds())})
		return
	}
	c.File(order.PaymentProof)
}

//
// 🔄 PUT /api/transaksi?action=update
//
func (h *Handler) updateOrderStatus(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionOrderStatus)
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	previous, err := h.Orders.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderStatus,
		gin.H{"status_pesanan": previous}, gin.H{"status_pesanan": input.Status})
	h.Logger.Info("🔄 Statut commande modifié",
		zap.Uint("id_transaksi", id),
		zap.String("from", string(previous)),
		zap.String("to", input.Status))
	okMessage(c, "Status updated", gin.H{"id_transaksi": id, "status_pesanan": input.Status})
}

func (h *Handler) verifyPayment(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionOrderVerify)
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.Orders.VerifyPayment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderVerify, nil, gin.H{"status_pesanan": order.Status})
	okMessage(c, "Payment verified", order)
}

func (h *Handler) applyDiscount(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionOrderDiscount)
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input struct {
		Discount *int64 `json:"diskon"`
	}
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	if input.Discount == nil {
		badRequest(c, "Field diskon is required")
		return
	}

	order, err := h.Orders.ApplyDiscount(c.Request.Context(), id, *input.Discount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderDiscount, nil, gin.H{"diskon": order.Discount, "total_harga": order.Total})
	okMessage(c, "Discount applied", order)
}

func (h *Handler) updatePaymentInfo(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input struct {
		PaymentMethod string `json:"metode_pembayaran"`
		Proof         string `json:"bukti_pembayaran"`
	}
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Orders.UpdatePaymentInfo(c.Request.Context(), id, input.PaymentMethod, input.Proof); err != nil {
		h.respondError(c, err)
		return
	}
	okMessage(c, "Payment information updated", nil)
}

func (h *Handler) updateOrderShippingCost(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input struct {
		Cost *int64 `json:"ongkir"`
	}
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	if input.Cost == nil {
		badRequest(c, "Field ongkir is required")
		return
	}
	total, err := h.Orders.UpdateShippingCost(c.Request.Context(), id, *input.Cost)
	if err != nil {
		h.respondError(c, err)
		return
	}
	okMessage(c, "Shipping cost updated", gin.H{"id_transaksi": id, "ongkir": *input.Cost, "total_harga": total})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionOrderDelete)
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderDelete, nil, nil)
	okMessage(c, "Order deleted", nil)
}
