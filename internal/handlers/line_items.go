package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/middleware"
	"mobilenest_back_end/internal/services"
)

type addLineItemInput struct {
	TransactionID uint   `json:"id_transaksi"`
	ProductID     uint   `json:"id_produk"`
	ProductName   string `json:"nama_produk"`
	UnitPrice     int64  `json:"harga_satuan"`
	Quantity      int    `json:"jumlah"`
}

// LineItems sert /api/detail-transaksi.
//
//	POST   ?action=add                  {id_transaksi, id_produk, nama_produk, harga_satuan, jumlah} (admin)
//	GET    ?action=order&id=<transaksi>
//	GET    ?action=get&id=<detail>
//	PUT    ?action=update&id=<detail>   {jumlah} (admin)
//	DELETE ?action=remove&id=<detail>   (admin)
func (h *Handler) LineItems(c *gin.Context) {
	switch route(c, "") {
	case "POST add":
		h.addLineItem(c)
	case "GET order":
		h.getOrderItems(c)
	case "GET get":
		h.getLineItem(c)
	case "PUT update":
		h.updateLineItem(c)
	case "DELETE remove":
		h.removeLineItem(c)
	default:
		unknownAction(c)
	}
}

func (h *Handler) addLineItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionOrderItemUpdate)
	var input addLineItemInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	if input.TransactionID == 0 || input.ProductID == 0 || input.ProductName == "" {
		badRequest(c, "Fields id_transaksi, id_produk and nama_produk are required")
		return
	}

	item, err := h.Items.AddItem(c.Request.Context(), services.AddLineItemInput{
		TransactionID: input.TransactionID,
		ProductID:     input.ProductID,
		ProductName:   input.ProductName,
		UnitPrice:     input.UnitPrice,
		Quantity:      input.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderItemUpdate, nil, item)
	c.Set(middleware.AuditResourceID, strconv.FormatUint(uint64(item.ID), 10))
	okMessage(c, "Order item added", item)
}

// orderOwner vérifie l'accès à la commande qui porte les lignes.
func (h *Handler) orderOwner(c *gin.Context, transactionID uint) bool {
	order, err := h.Orders.GetOrder(c.Request.Context(), transactionID)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	return authorize(c, order.UserID)
}

//
// 📋 GET /api/detail-transaksi?action=order
//
func (h *Handler) getOrderItems(c *gin.Context) {
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.orderOwner(c, id) {
		return
	}

	ctx := c.Request.Context()
	items, err := h.Items.GetOrderItems(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	subtotal, err := h.Items.GetOrderSubtotal(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	quantity, err := h.Items.GetTotalQuantity(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{
		"items":          items,
		"subtotal":       subtotal,
		"total_quantity": quantity,
		"item_count":     len(items),
	})
}

func (h *Handler) getLineItem(c *gin.Context) {
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	item, err := h.Items.GetItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.orderOwner(c, item.TransactionID) {
		return
	}
	ok(c, item)
}

func (h *Handler) updateLineItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionOrderItemUpdate)
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var input updateQuantityInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	if input.Quantity == nil {
		badRequest(c, "Field jumlah is required")
		return
	}

	item, err := h.Items.UpdateQuantity(c.Request.Context(), id, *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderItemUpdate, nil, gin.H{"jumlah": item.Quantity, "subtotal": item.Subtotal})
	okMessage(c, "Order item updated", item)
}

func (h *Handler) removeLineItem(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	auditAs(c, audit.ActionOrderItemUpdate)
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Items.RemoveItem(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	auditChange(c, audit.ActionOrderItemUpdate, nil, gin.H{"removed": true})
	okMessage(c, "Order item removed", nil)
}
