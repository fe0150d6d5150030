package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendMemory},
		Admin:   AdminConfig{Key: "key"},
		Spin:    SpinConfig{MaxAttempts: 3},
		Catalog: CatalogConfig{Prizes: []CatalogPrize{{ID: "a", Label: "A", Percentage: 100}}},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"no admin key":          func(c *Config) { c.Admin = AdminConfig{} },
		"zero attempts":         func(c *Config) { c.Spin.MaxAttempts = 0 },
		"unknown backend":       func(c *Config) { c.Storage.Backend = "sqlite" },
		"memory without prizes": func(c *Config) { c.Catalog.Prizes = nil },
		"platform without token": func(c *Config) {
			c.Storage.Backend = BackendPlatform
			c.Platform = PlatformConfig{BaseURL: "https://shop.example", PrizeType: "wheel_prize"}
		},
		"mongodb without uri": func(c *Config) {
			c.Storage.Backend = BackendMongoDB
			c.MongoDB = MongoDBConfig{Database: "wheelspin"}
		},
		"mirror without bucket": func(c *Config) { c.Mirror.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			err := c.Validate()
			if err == nil || !strings.HasPrefix(err.Error(), "config: ") {
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestCatalogPrizes(t *testing.T) {
	limit := 3
	catalog := CatalogConfig{Prizes: []CatalogPrize{
		{ID: "grand", Label: "Grand", Percentage: 12.5, Cap: &limit},
		{ID: "thanks", Label: "Thanks", Percentage: 87.5, Fallback: true},
	}}
	prizes := catalog.ToPrizes()
	if len(prizes) != 2 {
		t.Fatalf("got %d prizes", len(prizes))
	}
	grand, thanks := prizes[0], prizes[1]
	if grand.Weight != 0.125 || *grand.Cap != 3 || *grand.Remaining != 3 || grand.Position != 0 {
		t.Errorf("grand = %+v", grand)
	}
	limit = 10
	if *grand.Cap != 3 {
		t.Error("prize shares the configured cap pointer")
	}
	if thanks.Cap != nil || thanks.Remaining != nil || !thanks.Fallback || thanks.Position != 1 {
		t.Errorf("thanks = %+v", thanks)
	}
}
