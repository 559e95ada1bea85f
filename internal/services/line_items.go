package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

// LineItemService gère les lignes figées d'une commande.
type LineItemService struct {
	deps Deps
}

func NewLineItemService(deps Deps) *LineItemService {
	return &LineItemService{deps: deps.withDefaults()}
}

// AddLineItemInput décrit une ligne ajoutée manuellement à une commande existante.
type AddLineItemInput struct {
	TransactionID uint
	ProductID     uint
	ProductName   string
	UnitPrice     int64
	Quantity      int
}

func (s *LineItemService) AddItem(ctx context.Context, in AddLineItemInput) (*models.LineItem, error) {
	if in.UnitPrice < 0 {
		return nil, apperror.Validation(apperror.MsgPriceNegative)
	}
	if in.Quantity < 0 {
		return nil, apperror.Validation(apperror.MsgQuantityNegative)
	}
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return nil, apperror.Validation("Field nama_produk is required")
	}

	db := s.deps.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Transaction{}).Where("id_transaksi = ?", in.TransactionID).Count(&count).Error; err != nil {
		return nil, apperror.Infrastructure("check order", err)
	}
	if count == 0 {
		return nil, apperror.ErrTransactionNotFound
	}

	item := models.LineItem{
		TransactionID: in.TransactionID,
		ProductID:     in.ProductID,
		ProductName:   name,
		UnitPrice:     in.UnitPrice,
		Quantity:      in.Quantity,
		Subtotal:      in.UnitPrice * int64(in.Quantity),
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, apperror.Infrastructure("insert order item", err)
	}
	return &item, nil
}

// UpdateQuantity change la quantité et recalcule le sous-total à partir du prix figé.
func (s *LineItemService) UpdateQuantity(ctx context.Context, id uint, quantity int) (*models.LineItem, error) {
	if quantity <= 0 {
		return nil, apperror.Validation(apperror.MsgQuantityPositive)
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	item.Subtotal = item.UnitPrice * int64(quantity)
	if err := s.deps.DB.WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"jumlah":   item.Quantity,
		"subtotal": item.Subtotal,
	}).Error; err != nil {
		return nil, apperror.Infrastructure("update order item", err)
	}
	return item, nil
}

func (s *LineItemService) RemoveItem(ctx context.Context, id uint) error {
	res := s.deps.DB.WithContext(ctx).Delete(&models.LineItem{}, id)
	if res.Error != nil {
		return apperror.Infrastructure("delete order item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrLineItemNotFound
	}
	return nil
}

func (s *LineItemService) GetItem(ctx context.Context, id uint) (*models.LineItem, error) {
	var item models.LineItem
	if err := s.deps.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, apperror.ErrLineItemNotFound, "load order item")
	}
	return &item, nil
}

// GetOrderItems retourne les lignes dans l'ordre d'insertion, avec image et catégorie actuelles.
func (s *LineItemService) GetOrderItems(ctx context.Context, transactionID uint) ([]models.LineItemView, error) {
	return orderItems(s.deps.DB.WithContext(ctx), transactionID)
}

func (s *LineItemService) GetOrderSubtotal(ctx context.Context, transactionID uint) (int64, error) {
	return s.sum(ctx, transactionID, "subtotal")
}

func (s *LineItemService) GetTotalQuantity(ctx context.Context, transactionID uint) (int64, error) {
	return s.sum(ctx, transactionID, "jumlah")
}

func (s *LineItemService) GetItemCount(ctx context.Context, transactionID uint) (int64, error) {
	var count int64
	if err := s.deps.DB.WithContext(ctx).Model(&models.LineItem{}).
		Where("id_transaksi = ?", transactionID).Count(&count).Error; err != nil {
		return 0, apperror.Infrastructure("count order items", err)
	}
	return count, nil
}

func (s *LineItemService) sum(ctx context.Context, transactionID uint, column string) (int64, error) {
	var total int64
	err := s.deps.DB.WithContext(ctx).Model(&models.LineItem{}).
		Where("id_transaksi = ?", transactionID).
		Select("COALESCE(SUM(" + column + "), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperror.Infrastructure("sum order items", err)
	}
	return total, nil
}

func orderItems(db *gorm.DB, transactionID uint) ([]models.LineItemView, error) {
	items := []models.LineItemView{}
	err := db.Table("detail_transaksi AS d").
		Select("d.id_detail, d.id_transaksi, d.id_produk, d.nama_produk, d.harga_satuan, d.jumlah, d.subtotal, p.gambar, p.kategori").
		Joins("LEFT JOIN produk p ON p.id_produk = d.id_produk").
		Where("d.id_transaksi = ?", transactionID).
		Order("d.id_detail ASC").
		Scan(&items).Error
	if err != nil {
		return nil, apperror.Infrastructure("load order items", err)
	}
	return items, nil
}
