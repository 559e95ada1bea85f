package utils

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// OrderQRPayload encode le numéro de commande et le total à présenter au comptoir ou au livreur.
func OrderQRPayload(orderNumber string, total int64) string {
	return fmt.Sprintf("MOBILENEST|%s|%d", orderNumber, total)
}

// GenerateOrderQR retourne un PNG carré de la taille demandée.
func GenerateOrderQR(orderNumber string, total int64, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(OrderQRPayload(orderNumber, total), qrcode.Medium, size)
}

// OrderQRDataURL retourne le QR en base64 prêt à mettre dans <img src="...">.
func OrderQRDataURL(orderNumber string, total int64) (string, error) {
	png, err := GenerateOrderQR(orderNumber, total, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
