package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mobilenest_back_end/internal/config"
)

// Connections regroupe les clients ouverts au démarrage. MySQL est obligatoire,
// les autres restent nil quand ils ne sont pas configurés.
type Connections struct {
	SQL     *gorm.DB
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
	Scylla  *gocql.Session
}

// --- Initialisation ---
func ConnectDatabases(cfg config.Config, logger *zap.Logger) (*Connections, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conns := &Connections{}

	// 1. Base relationnelle (source de vérité des paniers et commandes)
	var (
		db  *gorm.DB
		err error
	)
	if cfg.DBDriver == "sqlite" {
		db, err = OpenSQLite(cfg.SQLitePath)
	} else {
		db, err = connectMySQL(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connexion %s: %w", cfg.DBDriver, err)
	}
	conns.SQL = db
	logger.Info("✅ Base relationnelle connectée", zap.String("driver", cfg.DBDriver))

	// 2. Redis
	if cfg.RedisHost != "" {
		client, err := connectRedis(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connexion Redis: %w", err)
		}
		conns.Redis = client
		logger.Info("✅ Connecté à Redis", zap.String("addr", cfg.RedisHost))
	} else {
		logger.Warn("⚠️ REDIS_HOST absent, notifications et rate limiting désactivés")
	}

	// 3. Elasticsearch
	if cfg.ElasticURL != "" {
		client, err := connectElastic(cfg)
		if err != nil {
			return nil, fmt.Errorf("connexion Elasticsearch: %w", err)
		}
		conns.Elastic = client
		logger.Info("✅ Connecté à Elasticsearch")
	}

	// 4. MinIO
	if cfg.ProofStorage == "minio" {
		client, err := connectMinIO(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connexion MinIO: %w", err)
		}
		conns.MinIO = client
		logger.Info("✅ Connecté à MinIO", zap.String("endpoint", cfg.MinioEndpoint))
	}

	// 5. ScyllaDB (journal d'audit)
	if len(cfg.ScyllaHosts) > 0 && cfg.ScyllaKeyspace != "" {
		session, err := connectScylla(cfg)
		if err != nil {
			return nil, fmt.Errorf("connexion ScyllaDB: %w", err)
		}
		conns.Scylla = session
		logger.Info("✅ Session ScyllaDB ouverte", zap.String("keyspace", cfg.ScyllaKeyspace))
	}

	return conns, nil
}

// Close ferme toutes les connexions ouvertes.
func (c *Connections) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.SQL != nil {
		if sqlDB, err := c.SQL.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// =============================================
// MYSQL
// =============================================
func connectMySQL(cfg config.Config) (*gorm.DB, error) {
	if cfg.MySQLDSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN non configuré")
	}

	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, err
	}

	res, err := client.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("réponse Elasticsearch: %s", res.Status())
	}

	return client, nil
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context, cfg config.Config, logger *zap.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket: %w", err)
		}
		logger.Info("🪣 Bucket créé", zap.String("bucket", cfg.MinioBucket))
	}

	return client, nil
}

// =============================================
// SCYLLA DB
// =============================================
func connectScylla(cfg config.Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.ScyllaTimeout
	cluster.NumConns = 4
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
	}

	if cfg.ScyllaSSLEnabled && cfg.ScyllaCACertPath != "" {
		caCert, err := os.ReadFile(cfg.ScyllaCACertPath)
		if err != nil {
			return nil, fmt.Errorf("impossible de lire le certificat CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("impossible de parser le certificat CA")
		}
		cluster.SslOpts = &gocql.SslOptions{
			Config: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	return cluster.CreateSession()
}
