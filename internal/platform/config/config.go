package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	// AdminOwner is the only identity allowed to flip deployer authorization.
	AdminOwner string
	// RegistryProvisioner is the identity the asset registry deploys access
	// ledgers under; it must hold deployer authorization at startup.
	RegistryProvisioner string
	// TreasuryAccount receives the platform fee leg of every purchase.
	TreasuryAccount string
	// MarketplaceSpender is the identity sellers approve for delegated
	// rights transfers during settlement.
	MarketplaceSpender string

	PlatformFeeBps  uint32
	MinListingPrice uint64

	EnablePurchaseConsumer bool
	EnableOutboxRelay      bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "inflectiv"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		AdminOwner:          envString("ADMIN_OWNER", "platform-admin"),
		RegistryProvisioner: envString("REGISTRY_PROVISIONER", "registry-provisioner"),
		TreasuryAccount:     envString("TREASURY_ACCOUNT", "platform-treasury"),
		MarketplaceSpender:  envString("MARKETPLACE_SPENDER", "marketplace-settlement"),

		PlatformFeeBps:  uint32(envUint("PLATFORM_FEE_BPS", 250)),
		MinListingPrice: envUint("MIN_LISTING_PRICE", 1),

		EnablePurchaseConsumer: envBool("ENABLE_PURCHASE_CONSUMER", true),
		EnableOutboxRelay:      envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envString(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envUint(name string, fallback uint64) uint64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
