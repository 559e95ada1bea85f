package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

// CartService gère le panier persistant de chaque utilisateur.
type CartService struct {
	deps Deps
}

func NewCartService(deps Deps) *CartService {
	return &CartService{deps: deps.withDefaults()}
}

// AddItem ajoute un produit au panier ; si la ligne existe déjà, la quantité est cumulée.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, apperror.Validation(apperror.MsgQuantityPositive)
	}

	db := s.deps.DB.WithContext(ctx)

	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		return nil, notFoundOr(err, apperror.ErrProductNotFound, "load product")
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   s.deps.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id_user"}, {Name: "id_produk"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"jumlah": gorm.Expr("jumlah + ?", quantity)}),
	}).Create(&item).Error
	if err != nil {
		return nil, apperror.Infrastructure("add cart item", err)
	}

	var saved models.CartItem
	if err := db.Where("id_user = ? AND id_produk = ?", userID, productID).First(&saved).Error; err != nil {
		return nil, apperror.Infrastructure("reload cart item", err)
	}

	s.publish(ctx, userID, EventCartUpdated)
	return &saved, nil
}

// UpdateQuantity fixe la quantité d'une ligne. Une quantité <= 0 supprime la ligne
// et retourne (nil, nil).
func (s *CartService) UpdateQuantity(ctx context.Context, cartItemID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, s.RemoveItem(ctx, cartItemID)
	}

	item, err := s.GetCartItem(ctx, cartItemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.deps.DB.WithContext(ctx).Model(item).Update("jumlah", quantity).Error; err != nil {
		return nil, apperror.Infrastructure("update cart quantity", err)
	}

	s.publish(ctx, item.UserID, EventCartUpdated)
	return item, nil
}

// RemoveItem supprime une ligne. Supprimer une ligne absente n'est pas une erreur.
func (s *CartService) RemoveItem(ctx context.Context, cartItemID uint) error {
	item, err := s.GetCartItem(ctx, cartItemID)
	if errors.Is(err, apperror.ErrCartItemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.deps.DB.WithContext(ctx).Delete(&models.CartItem{}, cartItemID).Error; err != nil {
		return apperror.Infrastructure("remove cart item", err)
	}

	s.publish(ctx, item.UserID, EventCartUpdated)
	return nil
}

// ClearCart vide le panier de l'utilisateur ; idempotent.
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	if err := clearCart(s.deps.DB.WithContext(ctx), userID); err != nil {
		return err
	}
	s.publish(ctx, userID, EventCartCleared)
	return nil
}

// GetCart retourne les lignes du panier avec les données produit actuelles, les plus récentes d'abord.
func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartLine, error) {
	return cartLines(s.deps.DB.WithContext(ctx), userID)
}

// GetCartTotal somme quantité × prix actuel ; 0 pour un panier vide.
func (s *CartService) GetCartTotal(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := s.deps.DB.WithContext(ctx).
		Table("keranjang AS k").
		Joins("JOIN produk p ON p.id_produk = k.id_produk").
		Where("k.id_user = ?", userID).
		Select("COALESCE(SUM(k.jumlah * p.harga), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperror.Infrastructure("cart total", err)
	}
	return total, nil
}

// GetItemCount compte les lignes distinctes du panier.
func (s *CartService) GetItemCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := s.deps.DB.WithContext(ctx).Model(&models.CartItem{}).Where("id_user = ?", userID).Count(&count).Error; err != nil {
		return 0, apperror.Infrastructure("cart item count", err)
	}
	return count, nil
}

// GetTotalQuantity somme les quantités du panier.
func (s *CartService) GetTotalQuantity(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := s.deps.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id_user = ?", userID).
		Select("COALESCE(SUM(jumlah), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperror.Infrastructure("cart quantity", err)
	}
	return total, nil
}

func (s *CartService) GetCartItem(ctx context.Context, cartItemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.deps.DB.WithContext(ctx).First(&item, cartItemID).Error; err != nil {
		return nil, notFoundOr(err, apperror.ErrCartItemNotFound, "load cart item")
	}
	return &item, nil
}

func (s *CartService) ItemExists(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := s.deps.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id_user = ? AND id_produk = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, apperror.Infrastructure("cart item exists", err)
	}
	return count > 0, nil
}

func (s *CartService) publish(ctx context.Context, userID uint, eventType string) {
	event := Event{Type: eventType, UserID: userID, At: s.deps.Now()}
	if err := s.deps.Events.PublishCart(ctx, userID, event); err != nil {
		s.deps.Logger.Warn("⚠️ Publication événement panier échouée",
			zap.Uint("user_id", userID), zap.String("type", eventType), zap.Error(err))
	}
}

// --- Helpers utilisés aussi dans les transactions de commande et de paiement ---

// lockCart pose un verrou d'écriture sur les lignes du panier jusqu'à la fin de la transaction.
func lockCart(tx *gorm.DB, userID uint) error {
	var items []models.CartItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id_user = ?", userID).
		Find(&items).Error
	if err != nil {
		return apperror.Infrastructure("lock cart", err)
	}
	return nil
}

func cartLines(db *gorm.DB, userID uint) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := db.Table("keranjang AS k").
		Select("k.id_keranjang, k.id_user, k.id_produk, k.jumlah, k.tanggal_ditambahkan, " +
			"p.nama_produk, p.harga, p.stok, p.gambar, p.kategori").
		Joins("JOIN produk p ON p.id_produk = k.id_produk").
		Where("k.id_user = ?", userID).
		Order("k.tanggal_ditambahkan DESC, k.id_keranjang DESC").
		Scan(&lines).Error
	if err != nil {
		return nil, apperror.Infrastructure("load cart", err)
	}
	return lines, nil
}

func linesTotal(lines []models.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func clearCart(db *gorm.DB, userID uint) error {
	if err := db.Where("id_user = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return apperror.Infrastructure("clear cart", err)
	}
	return nil
}

// snapshotLines copie les lignes du panier en lignes de commande figées.
func snapshotLines(transactionID uint, lines []models.CartLine) []models.LineItem {
	items := make([]models.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.LineItem{
			TransactionID: transactionID,
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			UnitPrice:     l.Price,
			Quantity:      l.Quantity,
			Subtotal:      l.Subtotal(),
		})
	}
	return items
}
