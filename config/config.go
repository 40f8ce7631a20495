package config

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-orders-api/models"
)

type Config struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	GinMode      string        `envconfig:"GIN_MODE" default:"debug"`
	DBPath       string        `envconfig:"DB_PATH" default:"orders.db"`
	JWTSecret    string        `envconfig:"JWT_SECRET" default:"restaurant_orders_dev_secret"`
	JWTTTL       time.Duration `envconfig:"JWT_TTL" default:"24h"`
	OpsToken     string        `envconfig:"OPS_TOKEN" default:"kitchen_dev_token"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	MerchantName string        `envconfig:"MERCHANT_NAME" default:"Seu Restaurante"`
	MerchantCity string        `envconfig:"MERCHANT_CITY" default:"SAO PAULO"`
}

func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

// OpenDB opens the sqlite database and migrates the schema.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
