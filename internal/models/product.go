package models

// Product est une ligne du catalogue (table produk), en lecture seule pour le panier et les commandes.
type Product struct {
	ID       uint   `gorm:"column:id_produk;primaryKey" json:"id_produk"`
	Name     string `gorm:"column:nama_produk;size:255;not null" json:"nama_produk"`
	Price    int64  `gorm:"column:harga;not null" json:"harga"`
	Stock    int    `gorm:"column:stok;not null;default:0" json:"stok"`
	Image    string `gorm:"column:gambar;size:255" json:"gambar"`
	Category string `gorm:"column:kategori;size:100" json:"kategori"`
}

func (Product) TableName() string { return "produk" }
