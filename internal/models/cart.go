package models

import "time"

// CartItem : une ligne de panier, unique par (utilisateur, produit).
type CartItem struct {
	ID        uint      `gorm:"column:id_keranjang;primaryKey" json:"id_keranjang"`
	UserID    uint      `gorm:"column:id_user;not null;uniqueIndex:idx_keranjang_user_produk" json:"id_user"`
	ProductID uint      `gorm:"column:id_produk;not null;uniqueIndex:idx_keranjang_user_produk" json:"id_produk"`
	Quantity  int       `gorm:"column:jumlah;not null" json:"jumlah"`
	AddedAt   time.Time `gorm:"column:tanggal_ditambahkan" json:"tanggal_ditambahkan"`
}

func (CartItem) TableName() string { return "keranjang" }

// CartLine est une ligne de panier jointe aux données produit en direct (prix non figé).
type CartLine struct {
	ID          uint      `gorm:"column:id_keranjang" json:"id_keranjang"`
	UserID      uint      `gorm:"column:id_user" json:"id_user"`
	ProductID   uint      `gorm:"column:id_produk" json:"id_produk"`
	Quantity    int       `gorm:"column:jumlah" json:"jumlah"`
	AddedAt     time.Time `gorm:"column:tanggal_ditambahkan" json:"tanggal_ditambahkan"`
	ProductName string    `gorm:"column:nama_produk" json:"nama_produk"`
	Price       int64     `gorm:"column:harga" json:"harga"`
	Stock       int       `gorm:"column:stok" json:"stok"`
	Image       string    `gorm:"column:gambar" json:"gambar"`
	Category    string    `gorm:"column:kategori" json:"kategori"`
}

// Subtotal calcule quantité × prix courant.
func (l CartLine) Subtotal() int64 {
	return int64(l.Quantity) * l.Price
}
