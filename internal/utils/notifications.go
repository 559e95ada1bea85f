package utils

import "mobilenest_back_end/internal/models"

func StatusEmailSubject(status models.TransactionStatus) string {
	switch status {
	case models.StatusVerified:
		return "✅ Pembayaran terverifikasi - MobileNest"
	case models.StatusShipping:
		return "📦 Pesanan Anda sedang dikirim - MobileNest"
	case models.StatusDelivered:
		return "🎉 Pesanan Anda telah sampai - MobileNest"
	case models.StatusCompleted:
		return "🙏 Pesanan selesai - MobileNest"
	case models.StatusCancelled:
		return "❌ Pesanan dibatalkan - MobileNest"
	default:
		return "📋 Pembaruan pesanan - MobileNest"
	}
}

func StatusEmailMessage(status models.TransactionStatus) string {
	switch status {
	case models.StatusAwaitingVerification:
		return "Pesanan Anda sedang menunggu verifikasi pembayaran."
	case models.StatusVerified:
		return "Pembayaran Anda telah diverifikasi. Pesanan Anda sedang kami siapkan."
	case models.StatusShipping:
		return "Kabar baik! Pesanan Anda sudah dalam perjalanan."
	case models.StatusDelivered:
		return "Pesanan Anda telah diterima. Semoga Anda puas dengan produknya!"
	case models.StatusCompleted:
		return "Pesanan Anda telah selesai. Terima kasih telah berbelanja di MobileNest."
	case models.StatusCancelled:
		return "Pesanan Anda dibatalkan. Hubungi kami jika ada pertanyaan."
	default:
		return "Status pesanan Anda telah diperbarui."
	}
}

func StatusEmailIcon(status models.TransactionStatus) string {
	switch status {
	case models.StatusVerified:
		return "✅"
	case models.StatusShipping:
		return "📦"
	case models.StatusDelivered, models.StatusCompleted:
		return "🎉"
	case models.StatusCancelled:
		return "❌"
	default:
		return "📋"
	}
}

func StatusEmailColor(status models.TransactionStatus) string {
	switch status {
	case models.StatusVerified, models.StatusCompleted:
		return "#10b981"
	case models.StatusShipping:
		return "#3b82f6"
	case models.StatusDelivered:
		return "#8b5cf6"
	case models.StatusCancelled:
		return "#ef4444"
	default:
		return "#6b7280"
	}
}
