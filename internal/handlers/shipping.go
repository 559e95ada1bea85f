package handlers

import (
	"github.com/gin-gonic/gin"

	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/models"
	"mobilenest_back_end/internal/services"
)

type shippingInput struct {
	TransactionID uint   `json:"id_transaksi"`
	UserID        uint   `json:"id_user"`
	Method        string `json:"metode_pengiriman"`
	models.Address
}

// Shipping sert /api/pengiriman.
//
//	POST ?action=create                         {id_transaksi, id_user, adresse…, metode_pengiriman?}
//	GET  ?action=get|timeline&id=<pengiriman>
//	GET  ?action=transaksi&id=<transaksi>
//	GET  ?action=cost&metode=&kota=
//	PUT  ?action=address|method&id=<pengiriman>
//	PUT  ?action=status&id=<pengiriman>         (admin)
//	PUT  ?action=transaksi-status&id=<transaksi> (admin)
func (h *Handler) Shipping(c *gin.Context) {
	switch route(c, "") {
	case "POST create":
		h.createShipping(c)
	case "GET get":
		h.getShipping(c)
	case "GET transaksi":
		h.getShippingByTransaction(c)
	case "GET timeline":
		h.getShippingTimeline(c)
	case "GET cost":
		h.shippingCost(c)
	case "PUT address":
		h.updateShippingAddress(c)
	case "PUT method":
		h.updateShippingMethod(c)
	case "PUT status":
		h.updateShippingStatus(c, false)
	case "PUT transaksi-status":
		h.updateShippingStatus(c, true)
	default:
		unknownAction(c)
	}
}

//
// 📦 POST /api/pengiriman?action=create
//
func (h *Handler) createShipping(c *gin.Context) {
	var input shippingInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	if input.TransactionID == 0 {
		badRequest(c, "Field id_transaksi is required")
		return
	}
	if input.UserID == 0 {
		badRequest(c, "Field id_user is required")
		return
	}
	if !authorize(c, input.UserID) {
		return
	}
	order, err := h.Orders.GetOrder(c.Request.Context(), input.TransactionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if order.UserID != input.UserID {
		forbidden(c)
		return
	}

	record, err := h.Shipments.CreateShipping(c.Request.Context(), services.CreateShippingInput{
		TransactionID: &input.TransactionID,
		UserID:        input.UserID,
		Address:       input.Address,
		Method:        input.Method,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionShippingCreate, nil, gin.H{"no_pengiriman": record.ShippingNumber, "ongkir": record.Cost})
	okMessage(c, "Shipping created", record)
}

// loadOwnedShipping charge l'envoi ?id= et vérifie l'accès.
func (h *Handler) loadOwnedShipping(c *gin.Context) (*models.ShippingRecord, bool) {
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	record, err := h.Shipments.GetShipping(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if !authorize(c, record.UserID) {
		return nil, false
	}
	return record, true
}

func (h *Handler) getShipping(c *gin.Context) {
	record, allowed := h.loadOwnedShipping(c)
	if !allowed {
		return
	}
	ok(c, record)
}

func (h *Handler) getShippingByTransaction(c *gin.Context) {
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	record, err := h.Shipments.GetShippingByTransaction(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !authorize(c, record.UserID) {
		return
	}
	ok(c, record)
}

func (h *Handler) getShippingTimeline(c *gin.Context) {
	record, allowed := h.loadOwnedShipping(c)
	if !allowed {
		return
	}
	timeline, err := h.Shipments.GetTimeline(c.Request.Context(), record.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, timeline)
}

func (h *Handler) shippingCost(c *gin.Context) {
	method := models.NormalizeShippingMethod(c.Query("metode"))
	ok(c, gin.H{
		"metode_pengiriman": method,
		"ongkir":            h.Shipments.CalculateCost(string(method), c.Query("kota")),
	})
}

func (h *Handler) updateShippingAddress(c *gin.Context) {
	record, allowed := h.loadOwnedShipping(c)
	if !allowed {
		return
	}
	var address models.Address
	if err := bindJSON(c, &address); err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.Shipments.UpdateAddress(c.Request.Context(), record.ID, address)
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionShippingAddress, record.Address, updated.Address)
	okMessage(c, "Shipping address updated", updated)
}

//
// 🚚 PUT /api/pengiriman?action=method
//
func (h *Handler) updateShippingMethod(c *gin.Context) {
	record, allowed := h.loadOwnedShipping(c)
	if !allowed {
		return
	}
	var input struct {
		Method string `json:"metode_pengiriman"`
		City   string `json:"kota"`
	}
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.Shipments.UpdateMethod(c.Request.Context(), record.ID, input.Method, input.City)
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionShippingMethod,
		gin.H{"metode_pengiriman": record.Method, "ongkir": record.Cost},
		gin.H{"metode_pengiriman": updated.Method, "ongkir": updated.Cost})
	okMessage(c, "Shipping method updated", updated)
}

func (h *Handler) updateShippingStatus(c *gin.Context, byTransaction bool) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionShippingStatus)
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input struct {
		Status string `json:"status_pengiriman"`
	}
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}

	var previous models.ShippingStatus
	if byTransaction {
		previous, err = h.Shipments.UpdateStatusByTransaction(c.Request.Context(), id, input.Status)
	} else {
		previous, err = h.Shipments.UpdateStatus(c.Request.Context(), id, input.Status)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionShippingStatus,
		gin.H{"status_pengiriman": previous}, gin.H{"status_pengiriman": input.Status})
	okMessage(c, "Shipping status updated", gin.H{"status_pengiriman": input.Status})
}
