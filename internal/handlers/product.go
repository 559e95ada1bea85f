package handlers

import (
	"github.com/gin-gonic/gin"
)

// Products sert /api/produk?action=list|get.
func (h *Handler) Products(c *gin.Context) {
	switch route(c, "list") {
	case "GET list":
		products, err := h.Catalog.ListProducts(c.Request.Context(), c.Query("kategori"))
		if err != nil {
			h.respondError(c, err)
			return
		}
		ok(c, products)
	case "GET get":
		id, err := queryID(c, "id")
		if err != nil {
			h.respondError(c, err)
			return
		}
		product, err := h.Catalog.GetProduct(c.Request.Context(), id)
		if err != nil {
			h.respondError(c, err)
			return
		}
		ok(c, product)
	default:
		unknownAction(c)
	}
}
