package models

import "time"

// Transaction : une commande passée (table transaksi).
// total_harga = subtotal - diskon + ongkir, recalculé à chaque changement d'un des termes.
type Transaction struct {
	ID            uint              `gorm:"column:id_transaksi;primaryKey" json:"id_transaksi"`
	UserID        uint              `gorm:"column:id_user;not null;index" json:"id_user"`
	OrderNumber   string            `gorm:"column:no_transaksi;size:50;not null;uniqueIndex" json:"no_transaksi"`
	Subtotal      int64             `gorm:"column:subtotal;not null" json:"subtotal"`
	Discount      int64             `gorm:"column:diskon;not null;default:0" json:"diskon"`
	ShippingCost  int64             `gorm:"column:ongkir;not null;default:0" json:"ongkir"`
	Total         int64             `gorm:"column:total_harga;not null" json:"total_harga"`
	Status        TransactionStatus `gorm:"column:status_pesanan;size:40;not null;index" json:"status_pesanan"`
	PaymentMethod string            `gorm:"column:metode_pembayaran;size:50" json:"metode_pembayaran"`
	PaymentProof  string            `gorm:"column:bukti_pembayaran;size:255" json:"bukti_pembayaran"`
	SenderName    string            `gorm:"column:nama_pengirim;size:150" json:"nama_pengirim"`
	TransferDate  string            `gorm:"column:tanggal_transfer;size:20" json:"tanggal_transfer"`
	Note          string            `gorm:"column:catatan_user;type:text" json:"catatan_user"`
	CreatedAt     time.Time         `gorm:"column:tanggal_transaksi;index" json:"tanggal_transaksi"`
	PaidAt        *time.Time        `gorm:"column:tanggal_pembayaran" json:"tanggal_pembayaran"`
	ConfirmedAt   *time.Time        `gorm:"column:tanggal_konfirmasi" json:"tanggal_konfirmasi"`
	UpdatedAt     time.Time         `gorm:"column:updated_at" json:"updated_at"`

	Items    []LineItem      `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
	Shipping *ShippingRecord `gorm:"foreignKey:TransactionID" json:"pengiriman,omitempty"`
}

func (Transaction) TableName() string { return "transaksi" }

// Recalculate remet total_harga en cohérence avec ses termes.
func (t *Transaction) Recalculate() {
	t.Total = ComputeTotal(t.Subtotal, t.Discount, t.ShippingCost)
}

func ComputeTotal(subtotal, discount, shippingCost int64) int64 {
	return subtotal - discount + shippingCost
}

// OrderSummary : ligne de la liste "mes commandes", avec le nombre d'articles.
type OrderSummary struct {
	Transaction
	ItemCount int64 `gorm:"column:jumlah_item" json:"jumlah_item"`
}
