package models

import "time"

// Address regroupe les huit champs obligatoires du destinataire, dans l'ordre de validation.
type Address struct {
	RecipientName string `gorm:"column:nama_penerima;size:150;not null" json:"nama_penerima"`
	Phone         string `gorm:"column:no_telepon;size:30;not null" json:"no_telepon"`
	Email         string `gorm:"column:email;size:150;not null" json:"email"`
	Province      string `gorm:"column:provinsi;size:100;not null" json:"provinsi"`
	City          string `gorm:"column:kota;size:100;not null" json:"kota"`
	District      string `gorm:"column:kecamatan;size:100;not null" json:"kecamatan"`
	PostalCode    string `gorm:"column:kode_pos;size:10;not null" json:"kode_pos"`
	FullAddress   string `gorm:"column:alamat_lengkap;type:text;not null" json:"alamat_lengkap"`
}

// MissingField retourne le nom du premier champ vide, ou "" si l'adresse est complète.
func (a Address) MissingField() string {
	fields := []struct {
		name  string
		value string
	}{
		{"nama_penerima", a.RecipientName},
		{"no_telepon", a.Phone},
		{"email", a.Email},
		{"provinsi", a.Province},
		{"kota", a.City},
		{"kecamatan", a.District},
		{"kode_pos", a.PostalCode},
		{"alamat_lengkap", a.FullAddress},
	}
	for _, f := range fields {
		if f.value == "" {
			return f.name
		}
	}
	return ""
}

// ShippingRecord : adresse, méthode, coût et chronologie de livraison (table pengiriman).
// TransactionID reste nul tant que le paiement n'a pas rattaché l'envoi à une commande.
type ShippingRecord struct {
	ID             uint           `gorm:"column:id_pengiriman;primaryKey" json:"id_pengiriman"`
	TransactionID  *uint          `gorm:"column:id_transaksi;uniqueIndex" json:"id_transaksi"`
	UserID         uint           `gorm:"column:id_user;not null;index" json:"id_user"`
	ShippingNumber string         `gorm:"column:no_pengiriman;size:50;not null;uniqueIndex" json:"no_pengiriman"`
	Address        `gorm:"embedded"`
	Method         ShippingMethod `gorm:"column:metode_pengiriman;size:20;not null" json:"metode_pengiriman"`
	Cost           int64          `gorm:"column:ongkir;not null" json:"ongkir"`
	Status         ShippingStatus `gorm:"column:status_pengiriman;size:40;not null" json:"status_pengiriman"`
	CreatedAt      time.Time      `gorm:"column:tanggal_dibuat" json:"tanggal_dibuat"`
	DispatchedAt   *time.Time     `gorm:"column:tanggal_pengiriman" json:"tanggal_pengiriman"`
	ConfirmedAt    *time.Time     `gorm:"column:tanggal_konfirmasi" json:"tanggal_konfirmasi"`
	DeliveredAt    *time.Time     `gorm:"column:tanggal_diterima" json:"tanggal_diterima"`
}

func (ShippingRecord) TableName() string { return "pengiriman" }

// ShippingTimeline est l'instantané renvoyé par l'action "timeline".
type ShippingTimeline struct {
	ShippingNumber string         `json:"no_pengiriman"`
	Status         ShippingStatus `json:"status_pengiriman"`
	DispatchedAt   *time.Time     `json:"tanggal_pengiriman"`
	ConfirmedAt    *time.Time     `json:"tanggal_konfirmasi"`
	DeliveredAt    *time.Time     `json:"tanggal_diterima"`
}
