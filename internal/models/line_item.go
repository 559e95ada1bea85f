package models

// LineItem fige le nom, le prix et la quantité d'un produit au moment de la commande (table detail_transaksi).
type LineItem struct {
	ID            uint   `gorm:"column:id_detail;primaryKey" json:"id_detail"`
	TransactionID uint   `gorm:"column:id_transaksi;not null;index" json:"id_transaksi"`
	ProductID     uint   `gorm:"column:id_produk;not null" json:"id_produk"`
	ProductName   string `gorm:"column:nama_produk;size:255;not null" json:"nama_produk"`
	UnitPrice     int64  `gorm:"column:harga_satuan;not null" json:"harga_satuan"`
	Quantity      int    `gorm:"column:jumlah;not null" json:"jumlah"`
	Subtotal      int64  `gorm:"column:subtotal;not null" json:"subtotal"`
}

func (LineItem) TableName() string { return "detail_transaksi" }

// LineItemView ajoute l'image et la catégorie actuelles du produit (jointure gauche).
type LineItemView struct {
	LineItem
	Image    *string `gorm:"column:gambar" json:"gambar"`
	Category *string `gorm:"column:kategori" json:"kategori"`
}
