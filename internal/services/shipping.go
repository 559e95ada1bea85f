package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

// ShippingService gère les envois : adresse, méthode et tarif, chronologie de livraison.
type ShippingService struct {
	deps Deps
}

func NewShippingService(deps Deps) *ShippingService {
	return &ShippingService{deps: deps.withDefaults()}
}

// CreateShippingInput : TransactionID reste nil quand l'envoi est créé pendant le checkout,
// avant que la commande n'existe.
type CreateShippingInput struct {
	TransactionID *uint
	UserID        uint
	Address       models.Address
	Method        string
}

// CalculateCost retourne le tarif de la méthode. La ville n'intervient pas dans le tarif.
func (s *ShippingService) CalculateCost(method, city string) int64 {
	return models.NormalizeShippingMethod(method).Rate()
}

// CreateShipping enregistre l'envoi en attente d'enlèvement et, s'il est rattaché à une
// commande, reporte les frais de port sur son total dans la même transaction.
func (s *ShippingService) CreateShipping(ctx context.Context, in CreateShippingInput) (*models.ShippingRecord, error) {
	addr := trimAddress(in.Address)
	if missing := addr.MissingField(); missing != "" {
		return nil, apperror.Validationf("Field %s is required", missing)
	}
	if in.UserID == 0 {
		return nil, apperror.Validation("Field id_user is required")
	}

	method := models.NormalizeShippingMethod(in.Method)
	now := s.deps.Now()
	record := models.ShippingRecord{
		TransactionID:  in.TransactionID,
		UserID:         in.UserID,
		ShippingNumber: newNumber("SHIP", now, s.deps.Suffix),
		Address:        addr,
		Method:         method,
		Cost:           method.Rate(),
		Status:         models.ShippingAwaitingPickup,
		CreatedAt:      now,
	}

	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Un seul envoi par commande ; l'index unique couvre les requêtes concurrentes.
		if record.TransactionID != nil {
			var linked int64
			if err := tx.Model(&models.ShippingRecord{}).
				Where("id_transaksi = ?", *record.TransactionID).
				Count(&linked).Error; err != nil {
				return apperror.Infrastructure("check shipping", err)
			}
			if linked > 0 {
				return apperror.Domain(apperror.MsgShippingExists)
			}
		}
		if err := tx.Create(&record).Error; err != nil {
			return apperror.Infrastructure("insert shipping", err)
		}
		if record.TransactionID == nil {
			return nil
		}
		_, err := applyShippingCost(tx, *record.TransactionID, record.Cost, now)
		return err
	})
	if err != nil {
		return nil, asAppError(err, "create shipping")
	}

	s.deps.Logger.Info("📦 Envoi créé",
		zap.String("no_pengiriman", record.ShippingNumber),
		zap.String("metode", string(record.Method)),
		zap.Int64("ongkir", record.Cost))
	return &record, nil
}

func (s *ShippingService) UpdateAddress(ctx context.Context, id uint, address models.Address) (*models.ShippingRecord, error) {
	addr := trimAddress(address)
	if missing := addr.MissingField(); missing != "" {
		return nil, apperror.Validationf("Field %s is required", missing)
	}

	record, err := s.GetShipping(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Address = addr
	if err := s.deps.DB.WithContext(ctx).Model(record).Select(
		"nama_penerima", "no_telepon", "email", "provinsi", "kota", "kecamatan", "kode_pos", "alamat_lengkap",
	).Updates(record).Error; err != nil {
		return nil, apperror.Infrastructure("update shipping address", err)
	}
	return record, nil
}

// UpdateMethod change la méthode, recalcule le tarif et le reporte sur la commande rattachée.
func (s *ShippingService) UpdateMethod(ctx context.Context, id uint, method, city string) (*models.ShippingRecord, error) {
	m := models.ShippingMethod(strings.TrimSpace(method))
	if !m.Valid() {
		return nil, apperror.Validationf("Invalid shipping method. Valid values: %s", models.JoinValues(models.ShippingMethods()))
	}

	var record models.ShippingRecord
	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
			return notFoundOr(err, apperror.ErrShippingNotFound, "load shipping")
		}
		record.Method = m
		record.Cost = s.CalculateCost(string(m), city)
		if err := tx.Model(&record).Updates(map[string]interface{}{
			"metode_pengiriman": record.Method,
			"ongkir":            record.Cost,
		}).Error; err != nil {
			return apperror.Infrastructure("update shipping method", err)
		}
		if record.TransactionID == nil {
			return nil
		}
		_, err := applyShippingCost(tx, *record.TransactionID, record.Cost, s.deps.Now())
		return err
	})
	if err != nil {
		return nil, asAppError(err, "update shipping method")
	}
	return &record, nil
}

// UpdateStatus change le statut de livraison. In Transit horodate l'expédition,
// Delivered horodate la réception. Retourne l'ancien statut.
func (s *ShippingService) UpdateStatus(ctx context.Context, id uint, raw string) (models.ShippingStatus, error) {
	return s.updateStatus(ctx, raw, func(db *gorm.DB) *gorm.DB { return db.Where("id_pengiriman = ?", id) })
}

// UpdateStatusByTransaction fait de même en retrouvant l'envoi par sa commande.
func (s *ShippingService) UpdateStatusByTransaction(ctx context.Context, transactionID uint, raw string) (models.ShippingStatus, error) {
	return s.updateStatus(ctx, raw, func(db *gorm.DB) *gorm.DB { return db.Where("id_transaksi = ?", transactionID) })
}

func (s *ShippingService) updateStatus(ctx context.Context, raw string, scope func(*gorm.DB) *gorm.DB) (models.ShippingStatus, error) {
	status := models.ShippingStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", apperror.Validationf("Invalid shipping status. Valid values: %s", models.JoinValues(models.ShippingStatuses()))
	}

	var record models.ShippingRecord
	var previous models.ShippingStatus
	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx.Clauses(clause.Locking{Strength: "UPDATE"})).First(&record).Error; err != nil {
			return notFoundOr(err, apperror.ErrShippingNotFound, "load shipping")
		}
		previous = record.Status

		now := s.deps.Now()
		updates := map[string]interface{}{"status_pengiriman": status}
		switch status {
		case models.ShippingInTransit:
			updates["tanggal_pengiriman"] = now
			record.DispatchedAt = &now
		case models.ShippingDelivered:
			updates["tanggal_diterima"] = now
			record.DeliveredAt = &now
		}
		record.Status = status
		if err := tx.Model(&record).Updates(updates).Error; err != nil {
			return apperror.Infrastructure("update shipping status", err)
		}
		return nil
	})
	if err != nil {
		return "", asAppError(err, "update shipping status")
	}

	if previous != status {
		event := Event{
			Type:   EventShippingStatus,
			UserID: record.UserID,
			Data: map[string]interface{}{
				"id_pengiriman":     record.ID,
				"no_pengiriman":     record.ShippingNumber,
				"status_pengiriman": record.Status,
			},
			At: s.deps.Now(),
		}
		if err := s.deps.Events.PublishOrder(ctx, record.UserID, event); err != nil {
			s.deps.Logger.Warn("⚠️ Publication statut livraison échouée", zap.Error(err))
		}
	}
	return previous, nil
}

func (s *ShippingService) GetTimeline(ctx context.Context, id uint) (*models.ShippingTimeline, error) {
	record, err := s.GetShipping(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ShippingTimeline{
		ShippingNumber: record.ShippingNumber,
		Status:         record.Status,
		DispatchedAt:   record.DispatchedAt,
		ConfirmedAt:    record.ConfirmedAt,
		DeliveredAt:    record.DeliveredAt,
	}, nil
}

func (s *ShippingService) GetShipping(ctx context.Context, id uint) (*models.ShippingRecord, error) {
	var record models.ShippingRecord
	if err := s.deps.DB.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, notFoundOr(err, apperror.ErrShippingNotFound, "load shipping")
	}
	return &record, nil
}

func (s *ShippingService) GetShippingByTransaction(ctx context.Context, transactionID uint) (*models.ShippingRecord, error) {
	var record models.ShippingRecord
	if err := s.deps.DB.WithContext(ctx).Where("id_transaksi = ?", transactionID).First(&record).Error; err != nil {
		return nil, notFoundOr(err, apperror.ErrShippingNotFound, "load shipping")
	}
	return &record, nil
}

func trimAddress(a models.Address) models.Address {
	return models.Address{
		RecipientName: strings.TrimSpace(a.RecipientName),
		Phone:         strings.TrimSpace(a.Phone),
		Email:         strings.TrimSpace(a.Email),
		Province:      strings.TrimSpace(a.Province),
		City:          strings.TrimSpace(a.City),
		District:      strings.TrimSpace(a.District),
		PostalCode:    strings.TrimSpace(a.PostalCode),
		FullAddress:   strings.TrimSpace(a.FullAddress),
	}
}
