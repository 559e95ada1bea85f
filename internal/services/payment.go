package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

// MaxProofSize : 5 Mo.
const MaxProofSize int64 = 5 << 20

var proofExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// ProofUpload abstrait le fichier reçu en multipart.
type ProofUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// PaymentSubmission regroupe le formulaire de paiement et l'état de la session de checkout.
type PaymentSubmission struct {
	UserID              uint
	ShippingID          uint
	SessionShippingCost int64
	PaymentMethod       string
	SenderName          string
	TransferDate        string
	Note                string
	Proof               *ProofUpload
}

// PaymentService finalise une commande à partir du panier et d'une preuve de virement.
type PaymentService struct {
	deps Deps
}

func NewPaymentService(deps Deps) *PaymentService {
	return &PaymentService{deps: deps.withDefaults()}
}

// Submit valide le formulaire et le fichier, stocke la preuve puis, dans une seule
// transaction, crée la commande et ses lignes, vide le panier et rattache l'envoi.
// Si la transaction échoue, la preuve stockée est supprimée.
func (s *PaymentService) Submit(ctx context.Context, in PaymentSubmission) (*models.Transaction, error) {
	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	f, err := in.Proof.Open()
	if err != nil {
		return nil, apperror.Infrastructure("open proof", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperror.Infrastructure("read proof", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := proofExtensions[contentType]
	if !ok {
		return nil, apperror.Validation("Only JPG and PNG images are allowed")
	}

	now := s.deps.Now()
	name := fmt.Sprintf("payment_%d_%d.%s", in.UserID, now.Unix(), ext)
	location, err := s.deps.Proofs.Save(ctx, name, io.MultiReader(bytes.NewReader(head), f), in.Proof.Size, contentType)
	if errors.Is(err, os.ErrExist) {
		return nil, apperror.Domain(apperror.MsgProofRetry)
	}
	if err != nil {
		return nil, apperror.Infrastructure("store proof", err)
	}

	order, err := s.finalize(ctx, in, location)
	if err != nil {
		if rmErr := s.deps.Proofs.Remove(context.WithoutCancel(ctx), location); rmErr != nil {
			s.deps.Logger.Error("❌ Suppression preuve orpheline échouée",
				zap.String("location", location), zap.Error(rmErr))
		}
		return nil, asAppError(err, "submit payment")
	}

	s.deps.Logger.Info("💳 Preuve de paiement reçue",
		zap.Uint("user_id", in.UserID),
		zap.String("no_transaksi", order.OrderNumber),
		zap.Int64("total", order.Total))

	afterOrderCommit(ctx, s.deps, *order, EventPaymentSubmitted)
	if err := s.deps.Events.PublishCart(ctx, in.UserID, Event{Type: EventCartCleared, UserID: in.UserID, At: now}); err != nil {
		s.deps.Logger.Warn("⚠️ Publication événement panier échouée", zap.Uint("user_id", in.UserID), zap.Error(err))
	}
	if to := order.Shipping.Email; to != "" {
		confirmed := *order
		s.deps.background(func(ctx context.Context) {
			if err := s.deps.Mailer.SendPaymentReceived(ctx, to, confirmed); err != nil {
				s.deps.Logger.Error("❌ Erreur envoi email confirmation",
					zap.String("no_transaksi", confirmed.OrderNumber), zap.Error(err))
			}
		})
	}
	return order, nil
}

func (s *PaymentService) finalize(ctx context.Context, in PaymentSubmission, location string) (*models.Transaction, error) {
	var order models.Transaction

	err := s.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, in.UserID); err != nil {
			return err
		}
		lines, err := cartLines(tx, in.UserID)
		if err != nil {
			return err
		}
		subtotal := linesTotal(lines)
		if subtotal <= 0 {
			return apperror.ErrEmptyCart
		}

		var shipping models.ShippingRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id_pengiriman = ? AND id_user = ?", in.ShippingID, in.UserID).
			First(&shipping).Error; err != nil {
			return notFoundOr(err, apperror.ErrShippingNotFound, "load shipping")
		}
		if shipping.TransactionID != nil {
			return apperror.Domain("Shipping record already belongs to an order")
		}
		if shipping.Cost != in.SessionShippingCost {
			s.deps.Logger.Warn("⚠️ Frais de port de session différents de l'envoi",
				zap.Uint("id_pengiriman", shipping.ID),
				zap.Int64("session_ongkir", in.SessionShippingCost),
				zap.Int64("pengiriman_ongkir", shipping.Cost))
		}

		now := s.deps.Now()
		order = models.Transaction{
			UserID:        in.UserID,
			OrderNumber:   newNumber("TRX", now, s.deps.Suffix),
			Subtotal:      subtotal,
			ShippingCost:  in.SessionShippingCost,
			Status:        models.StatusAwaitingVerification,
			PaymentMethod: strings.TrimSpace(in.PaymentMethod),
			PaymentProof:  location,
			SenderName:    strings.TrimSpace(in.SenderName),
			TransferDate:  strings.TrimSpace(in.TransferDate),
			Note:          strings.TrimSpace(in.Note),
			CreatedAt:     now,
			PaidAt:        &now,
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

		if err := clearCart(tx, in.UserID); err != nil {
			return err
		}

		shipping.TransactionID = &order.ID
		shipping.ConfirmedAt = &now
		if err := tx.Model(&shipping).Updates(map[string]interface{}{
			"id_transaksi":       order.ID,
			"tanggal_konfirmasi": now,
		}).Error; err != nil {
			return apperror.Infrastructure("link shipping", err)
		}

		order.Items = items
		order.Shipping = &shipping
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func validateSubmission(in PaymentSubmission) error {
	if in.UserID == 0 || in.ShippingID == 0 {
		return apperror.Domain(apperror.MsgCheckoutSessionExpire)
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return apperror.Validation("Payment method is required")
	}
	if strings.TrimSpace(in.SenderName) == "" {
		return apperror.Validation("Sender name is required")
	}
	if strings.TrimSpace(in.TransferDate) == "" {
		return apperror.Validation("Transfer date is required")
	}
	if in.Proof == nil || in.Proof.Open == nil {
		return apperror.Validation("Payment proof file is required")
	}
	if in.Proof.Size <= 0 {
		return apperror.Validation("Payment proof file is empty")
	}
	if in.Proof.Size > MaxProofSize {
		return apperror.Validation("Payment proof file exceeds the 5 MB limit")
	}
	return nil
}
