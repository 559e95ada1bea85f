package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config regroupe tout ce que le serveur lit dans l'environnement.
type Config struct {
	Env  string
	Port string

	// DBDriver vaut "mysql" (production) ou "sqlite" (poste de dev).
	DBDriver   string
	MySQLDSN   string
	SQLitePath string

	RedisHost     string
	RedisPassword string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	ScyllaHosts      []string
	ScyllaKeyspace   string
	ScyllaUsername   string
	ScyllaPassword   string
	ScyllaSSLEnabled bool
	ScyllaCACertPath string
	ScyllaTimeout    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	JWTSecret     string
	SessionSecret string
	SessionSecure bool

	// ProofStorage vaut "local" ou "minio".
	ProofStorage string
	UploadDir    string

	CORSOrigins []string
}

// Load charge le fichier .env s'il existe, puis construit la configuration.
func Load(logger *zap.Logger) Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("⚠️ Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		logger.Info("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv lit les variables d'environnement et applique les valeurs par défaut.
func FromEnv() Config {
	return Config{
		Env:  getEnv("APP_ENV", "production"),
		Port: getEnv("PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		MySQLDSN:   os.Getenv("MYSQL_DSN"),
		SQLitePath: getEnv("SQLITE_PATH", "mobilenest.db"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "payment-proofs"),
		MinioUseSSL:    getBool("MINIO_USE_SSL"),

		ScyllaHosts:      splitList(os.Getenv("SCYLLA_HOSTS")),
		ScyllaKeyspace:   os.Getenv("SCYLLA_KS_AUDIT_KEYSPACE"),
		ScyllaUsername:   os.Getenv("SCYLLA_KS_AUDIT_ROLE"),
		ScyllaPassword:   os.Getenv("SCYLLA_KS_AUDIT_PASSWORD"),
		ScyllaSSLEnabled: getBool("SCYLLA_SSL_ENABLED"),
		ScyllaCACertPath: os.Getenv("SCYLLA_SSL_CA_PATH"),
		ScyllaTimeout:    5 * time.Second,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@mobilenest.id"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionSecure: getBool("SESSION_SECURE"),

		ProofStorage: strings.ToLower(getEnv("PROOF_STORAGE", "local")),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string) bool {
	return strings.ToLower(os.Getenv(key)) == "true"
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
