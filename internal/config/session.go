package config

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// Nom du cookie de session portant l'étape de checkout.
const CheckoutSessionName = "mobilenest_checkout"

// NewSessionStore construit le store cookie utilisé entre l'étape livraison et l'étape paiement.
func NewSessionStore(cfg Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   cfg.SessionSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
