package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mobilenest_back_end/internal/apperror"
)

type addCartInput struct {
	UserID    uint `json:"id_user"`
	ProductID uint `json:"id_produk"`
	Quantity  *int `json:"jumlah"`
}

type updateQuantityInput struct {
	Quantity *int `json:"jumlah"`
}

// Cart sert /api/keranjang.
//
//	GET    ?action=get|total|count&id=<user>
//	POST   ?action=add              {id_user, id_produk, jumlah?}
//	PUT    ?action=update&id=<item> {jumlah}
//	DELETE ?action=remove&id=<item>
//	DELETE ?action=clear&id=<user>
func (h *Handler) Cart(c *gin.Context) {
	switch route(c, "get") {
	case "GET get":
		h.getCart(c)
	case "GET total":
		h.getCartTotal(c)
	case "GET count":
		h.getCartCount(c)
	case "POST add":
		h.addToCart(c)
	case "PUT update":
		h.updateCartItem(c)
	case "DELETE remove":
		h.removeCartItem(c)
	case "DELETE clear":
		h.clearCart(c)
	default:
		unknownAction(c)
	}
}

// cartOwner résout ?id= vers l'utilisateur dont on lit ou vide le panier.
func (h *Handler) cartOwner(c *gin.Context) (uint, bool) {
	explicit, err := optionalQueryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return 0, false
	}
	return targetUser(c, explicit)
}

//
// 🛒 GET /api/keranjang?action=get
//
func (h *Handler) getCart(c *gin.Context) {
	userID, allowed := h.cartOwner(c)
	if !allowed {
		return
	}

	lines, err := h.Carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	ok(c, gin.H{"items": lines, "total": total})
}

func (h *Handler) getCartTotal(c *gin.Context) {
	userID, allowed := h.cartOwner(c)
	if !allowed {
		return
	}
	total, err := h.Carts.GetCartTotal(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"total": total})
}

func (h *Handler) getCartCount(c *gin.Context) {
	userID, allowed := h.cartOwner(c)
	if !allowed {
		return
	}
	ctx := c.Request.Context()
	count, err := h.Carts.GetItemCount(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	quantity, err := h.Carts.GetTotalQuantity(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"count": count, "total_quantity": quantity})
}

//
// 🟢 POST /api/keranjang?action=add
//
func (h *Handler) addToCart(c *gin.Context) {
	var input addCartInput
	if err := bindJSON(c, &input); err != nil {
		h.respondError(c, err)
		return
	}
	userID, allowed := targetUser(c, input.UserID)
	if !allowed {
		return
	}
	if input.ProductID == 0 {
		badRequest(c, "Field id_produk is required")
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	item, err := h.Carts.AddItem(c.Request.Context(), userID, input.ProductID, quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	okMessage(c, "Product added to cart", item)
}

// ownedCartItem charge la ligne et vérifie qu'elle appartient à l'appelant.
func (h *Handler) ownedCartItem(c *gin.Context, id uint) bool {
	item, err := h.Carts.GetCartItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	return authorize(c, item.UserID)
}

func (h *Handler) updateCartItem(c *gin.Context) {
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
	if !h.ownedCartItem(c, id) {
		return
	}

	item, err := h.Carts.UpdateQuantity(c.Request.Context(), id, *input.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if item == nil {
		okMessage(c, "Cart item removed", nil)
		return
	}
	okMessage(c, "Cart updated", item)
}

//
// 🗑️ DELETE /api/keranjang?action=remove
//
func (h *Handler) removeCartItem(c *gin.Context) {
	id, err := queryID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	item, err := h.Carts.GetCartItem(c.Request.Context(), id)
	switch {
	case errors.Is(err, apperror.ErrCartItemNotFound):
		// déjà supprimée
		okMessage(c, "Cart item removed", nil)
		return
	case err != nil:
		h.respondError(c, err)
		return
	}
	if !authorize(c, item.UserID) {
		return
	}

	if err := h.Carts.RemoveItem(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	okMessage(c, "Cart item removed", nil)
}

func (h *Handler) clearCart(c *gin.Context) {
	userID, allowed := h.cartOwner(c)
	if !allowed {
		return
	}
	if err := h.Carts.ClearCart(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	okMessage(c, "Cart cleared", nil)
}
