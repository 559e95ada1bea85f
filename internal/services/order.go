package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

const (
	DefaultOrderPageSize = 20
	MaxOrderPageSize     = 100
)

// OrderService est le registre des commandes : création depuis le panier,
// statuts, frais de port et remises.
type OrderService struct {
	deps Deps
}

func NewOrderService(deps Deps) *OrderService {
	return &OrderService{deps: deps.withDefaults()}
}

// CreateOrderInput porte les champs optionnels saisis au moment de la commande.
type CreateOrderInput struct {
	PaymentMethod string
	Note          string
}

// CreateOrder transforme le panier en commande dans une seule transaction :
// commande, lignes figées puis vidage du panier. Le moindre échec annule tout.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, in CreateOrderInput) (*models.Transaction, error) {
	var order models.Transaction

	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, userID); err != nil {
			return err
		}
		lines, err := cartLines(tx, userID)
		if err != nil {
			return err
		}
		subtotal := linesTotal(lines)
		if subtotal <= 0 {
			return apperror.ErrEmptyCart
		}

		now := s.deps.Now()
		order = models.Transaction{
			UserID:        userID,
			OrderNumber:   newNumber("TRX", now, s.deps.Suffix),
			Subtotal:      subtotal,
			Status:        models.StatusAwaitingVerification,
			PaymentMethod: strings.TrimSpace(in.PaymentMethod),
			Note:          strings.TrimSpace(in.Note),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		order.Recalculate()
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return apperror.Infrastructure("insert order", err)
		}

		items := snapshotLines(order.ID, lines)
		if err := tx.Create(&items).Error; err != nil {
			return apperror.Infrastructure("insert order items", err)
		}
		order.Items = items

		return clearCart(tx, userID)
	})
	if err != nil {
		return nil, asAppError(err, "create order")
	}

	s.deps.Logger.Info("🧾 Commande créée",
		zap.Uint("user_id", userID),
		zap.String("no_transaksi", order.OrderNumber),
		zap.Int64("total", order.Total))
	s.afterCommit(ctx, order, EventOrderCreated)
	return &order, nil
}

// UpdateStatus remplace le statut par n'importe quelle valeur valide et retourne l'ancien.
// Aucun graphe de transitions n'est imposé.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (models.TransactionStatus, error) {
	status := models.TransactionStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", apperror.Validationf("Invalid status. Valid values: %s", models.JoinValues(models.TransactionStatuses()))
	}

	var previous models.TransactionStatus
	var order models.Transaction
	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return notFoundOr(err, apperror.ErrTransactionNotFound, "load order")
		}
		previous = order.Status
		order.Status = status
		order.UpdatedAt = s.deps.Now()
		return tx.Model(&order).Updates(map[string]interface{}{
			"status_pesanan": status,
			"updated_at":     order.UpdatedAt,
		}).Error
	})
	if err != nil {
		return "", asAppError(err, "update order status")
	}

	if previous != status {
		s.afterCommit(ctx, order, EventOrderStatus)
		s.notifyStatus(order)
	}
	return previous, nil
}

// VerifyPayment valide la preuve de paiement : commande Verified, horodatage du paiement
// et de la confirmation, envoi rattaché remis en attente d'enlèvement. Sans envoi rattaché,
// rien n'est modifié.
func (s *OrderService) VerifyPayment(ctx context.Context, id uint) (*models.Transaction, error) {
	var order models.Transaction
	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return notFoundOr(err, apperror.ErrTransactionNotFound, "load order")
		}

		var shipping models.ShippingRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id_transaksi = ?", id).First(&shipping).Error; err != nil {
			return notFoundOr(err, apperror.ErrShippingNotFound, "load shipping")
		}

		now := s.deps.Now()
		order.Status = models.StatusVerified
		order.PaidAt = &now
		order.ConfirmedAt = &now
		order.UpdatedAt = now
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status_pesanan":     order.Status,
			"tanggal_pembayaran": now,
			"tanggal_konfirmasi": now,
			"updated_at":         now,
		}).Error; err != nil {
			return apperror.Infrastructure("verify order", err)
		}

		shipping.Status = models.ShippingAwaitingPickup
		if err := tx.Model(&shipping).Update("status_pengiriman", shipping.Status).Error; err != nil {
			return apperror.Infrastructure("update shipping status", err)
		}
		order.Shipping = &shipping
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "verify payment")
	}

	s.afterCommit(ctx, order, EventOrderStatus)
	s.notifyStatus(order)
	return &order, nil
}

// UpdateShippingCost enregistre les frais de port et retourne le nouveau total.
func (s *OrderService) UpdateShippingCost(ctx context.Context, id uint, cost int64) (int64, error) {
	if cost < 0 {
		return 0, apperror.Validation(apperror.MsgShippingCostNegative)
	}
	var total int64
	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = applyShippingCost(tx, id, cost, s.deps.Now())
		return err
	})
	if err != nil {
		return 0, asAppError(err, "update shipping cost")
	}
	return total, nil
}

// ApplyDiscount fixe la remise (0 <= remise <= sous-total) et recalcule le total.
func (s *OrderService) ApplyDiscount(ctx context.Context, id uint, discount int64) (*models.Transaction, error) {
	if discount < 0 {
		return nil, apperror.Validation(apperror.MsgDiscountNegative)
	}

	var order models.Transaction
	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return notFoundOr(err, apperror.ErrTransactionNotFound, "load order")
		}
		if discount > order.Subtotal {
			return apperror.Validation(apperror.MsgDiscountExceeds)
		}
		order.Discount = discount
		order.Recalculate()
		order.UpdatedAt = s.deps.Now()
		return tx.Model(&order).Updates(map[string]interface{}{
			"diskon":      order.Discount,
			"total_harga": order.Total,
			"updated_at":  order.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, asAppError(err, "apply discount")
	}
	return &order, nil
}

// UpdatePaymentInfo enregistre la méthode de paiement et le chemin de la preuve.
func (s *OrderService) UpdatePaymentInfo(ctx context.Context, id uint, method, proof string) error {
	res := s.deps.DB.WithContext(ctx).Model(&models.Transaction{}).
		Where("id_transaksi = ?", id).
		Updates(map[string]interface{}{
			"metode_pembayaran": method,
			"bukti_pembayaran":  proof,
			"updated_at":        s.deps.Now(),
		})
	if res.Error != nil {
		return apperror.Infrastructure("update payment info", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrTransactionNotFound
	}
	return nil
}

// GetOrder charge une commande avec ses lignes et son envoi.
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Transaction, error) {
	var order models.Transaction
	err := s.deps.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id_detail ASC") }).
		Preload("Shipping").
		First(&order, id).Error
	if err != nil {
		return nil, notFoundOr(err, apperror.ErrTransactionNotFound, "load order")
	}
	return &order, nil
}

// OrderFilter restreint une liste de commandes. UserID à 0 liste tous les utilisateurs.
type OrderFilter struct {
	UserID uint
	Status string
	Limit  int
	Offset int
}

// ListOrders retourne une page de commandes, les plus récentes d'abord, et le nombre total.
func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]models.OrderSummary, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultOrderPageSize
	}
	if f.Limit > MaxOrderPageSize {
		f.Limit = MaxOrderPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	query := s.deps.DB.WithContext(ctx).Model(&models.Transaction{})
	if f.UserID != 0 {
		query = query.Where("id_user = ?", f.UserID)
	}
	if f.Status != "" {
		status := models.TransactionStatus(f.Status)
		if !status.Valid() {
			return nil, 0, apperror.Validationf("Invalid status. Valid values: %s", models.JoinValues(models.TransactionStatuses()))
		}
		query = query.Where("status_pesanan = ?", status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.Infrastructure("count orders", err)
	}

	var orders []models.Transaction
	if err := query.Order("tanggal_transaksi DESC, id_transaksi DESC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, apperror.Infrastructure("list orders", err)
	}

	counts, err := s.itemCounts(ctx, orders)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, models.OrderSummary{Transaction: o, ItemCount: counts[o.ID]})
	}
	return summaries, total, nil
}

// GetUserOrders liste les commandes d'un utilisateur, filtrables par statut.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uint, status string, limit, offset int) ([]models.OrderSummary, int64, error) {
	return s.ListOrders(ctx, OrderFilter{UserID: userID, Status: status, Limit: limit, Offset: offset})
}

// DeleteOrder supprime une commande et ses lignes ; l'envoi éventuel est détaché.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Transaction
		if err := tx.First(&order, id).Error; err != nil {
			return notFoundOr(err, apperror.ErrTransactionNotFound, "load order")
		}
		if err := tx.Where("id_transaksi = ?", id).Delete(&models.LineItem{}).Error; err != nil {
			return apperror.Infrastructure("delete order items", err)
		}
		if err := tx.Model(&models.ShippingRecord{}).Where("id_transaksi = ?", id).
			Update("id_transaksi", nil).Error; err != nil {
			return apperror.Infrastructure("unlink shipping", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return apperror.Infrastructure("delete order", err)
		}
		return nil
	})
	return asAppError(err, "delete order")
}

// SearchOrders interroge l'index de recherche des commandes.
func (s *OrderService) SearchOrders(ctx context.Context, query string) ([]map[string]interface{}, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("Search query is required")
	}
	return s.deps.Index.SearchOrders(ctx, query)
}

func (s *OrderService) itemCounts(ctx context.Context, orders []models.Transaction) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(orders))
	if len(orders) == 0 {
		return counts, nil
	}
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var rows []struct {
		TransactionID uint  `gorm:"column:id_transaksi"`
		Count         int64 `gorm:"column:jumlah_item"`
	}
	err := s.deps.DB.WithContext(ctx).Model(&models.LineItem{}).
		Select("id_transaksi, COUNT(*) AS jumlah_item").
		Where("id_transaksi IN ?", ids).
		Group("id_transaksi").
		Scan(&rows).Error
	if err != nil {
		return nil, apperror.Infrastructure("count order items", err)
	}
	for _, r := range rows {
		counts[r.TransactionID] = r.Count
	}
	return counts, nil
}

// afterCommit diffuse l'événement et réindexe la commande ; les échecs sont seulement journalisés.
func (s *OrderService) afterCommit(ctx context.Context, order models.Transaction, eventType string) {
	afterOrderCommit(ctx, s.deps, order, eventType)
}

func (s *OrderService) notifyStatus(order models.Transaction) {
	s.deps.background(func(ctx context.Context) {
		var shipping models.ShippingRecord
		err := s.deps.DB.WithContext(ctx).Where("id_transaksi = ?", order.ID).First(&shipping).Error
		if err != nil || shipping.Email == "" {
			return
		}
		if err := s.deps.Mailer.SendOrderStatus(ctx, shipping.Email, order); err != nil {
			s.deps.Logger.Error("❌ Erreur envoi email statut",
				zap.String("no_transaksi", order.OrderNumber), zap.Error(err))
		}
	})
}

func afterOrderCommit(ctx context.Context, deps Deps, order models.Transaction, eventType string) {
	event := Event{
		Type:   eventType,
		UserID: order.UserID,
		Data: map[string]interface{}{
			"id_transaksi":   order.ID,
			"no_transaksi":   order.OrderNumber,
			"status_pesanan": order.Status,
			"total_harga":    order.Total,
		},
		At: deps.Now(),
	}
	if err := deps.Events.PublishOrder(ctx, order.UserID, event); err != nil {
		deps.Logger.Warn("⚠️ Publication événement commande échouée",
			zap.String("no_transaksi", order.OrderNumber), zap.Error(err))
	}
	if err := deps.Index.IndexOrder(ctx, order); err != nil {
		deps.Logger.Warn("⚠️ Indexation commande échouée",
			zap.String("no_transaksi", order.OrderNumber), zap.Error(err))
	}
}

// applyShippingCost met à jour ongkir et total_harga dans la transaction fournie.
func applyShippingCost(tx *gorm.DB, transactionID uint, cost int64, now time.Time) (int64, error) {
	var order models.Transaction
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, transactionID).Error; err != nil {
		return 0, notFoundOr(err, apperror.ErrTransactionNotFound, "load order")
	}
	order.ShippingCost = cost
	order.Recalculate()
	if err := tx.Model(&order).Updates(map[string]interface{}{
		"ongkir":      order.ShippingCost,
		"total_harga": order.Total,
		"updated_at":  now,
	}).Error; err != nil {
		return 0, apperror.Infrastructure("update shipping cost", err)
	}
	return order.Total, nil
}
