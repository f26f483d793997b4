package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración estática del copytrader. El estado mutable
// del bot (running, dry-run, risk %) vive en la base de datos y se
// siembra desde Engine/Risk la primera vez que arranca.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Risk    RiskConfig    `yaml:"risk"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig controla el ciclo de copiado.
type EngineConfig struct {
	IntervalSeconds    int     `yaml:"interval_seconds"`
	LookbackMinutes    int     `yaml:"lookback_minutes"`     // ventana si el wallet no tiene trades registrados
	MaxFillAgeMinutes  int     `yaml:"max_fill_age_minutes"` // fills más viejos no se ejecutan
	DefaultCopyPct     float64 `yaml:"default_copy_pct"`     // % global si el wallet no define el suyo
	RealTrading        bool    `yaml:"real_trading"`         // false = dry-run; dinero real solo si se pide explícitamente
	RecentActivityRows int     `yaml:"recent_activity_rows"`
}

// RiskConfig son los límites de exposición.
type RiskConfig struct {
	MaxTradeSize      float64 `yaml:"max_trade_size"`      // USDC por orden
	MaxWalletExposure float64 `yaml:"max_wallet_exposure"` // USDC abierto por wallet líder
	MinOrderUSDC      float64 `yaml:"min_order_usdc"`      // órdenes más pequeñas se rechazan
}

// APIConfig contiene los base URLs de las APIs.
type APIConfig struct {
	CLOBBase string `yaml:"clob_base"`
	DataBase string `yaml:"data_base"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve una configuración usable sin archivo YAML.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Interval devuelve el intervalo de polling como time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Engine.IntervalSeconds) * time.Second
}

// Lookback devuelve la ventana de historia inicial como time.Duration.
func (c *Config) Lookback() time.Duration {
	return time.Duration(c.Engine.LookbackMinutes) * time.Minute
}

// MaxFillAge devuelve la edad máxima de un fill ejecutable.
func (c *Config) MaxFillAge() time.Duration {
	return time.Duration(c.Engine.MaxFillAgeMinutes) * time.Minute
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("COPYTRADER_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// Los defaults de riesgo son deliberadamente conservadores.
func setDefaults(cfg *Config) {
	if cfg.Engine.IntervalSeconds <= 0 {
		cfg.Engine.IntervalSeconds = 30
	}
	if cfg.Engine.LookbackMinutes <= 0 {
		cfg.Engine.LookbackMinutes = 15
	}
	if cfg.Engine.MaxFillAgeMinutes <= 0 {
		cfg.Engine.MaxFillAgeMinutes = 10
	}
	if cfg.Engine.DefaultCopyPct <= 0 {
		cfg.Engine.DefaultCopyPct = 10
	}
	if cfg.Engine.RecentActivityRows <= 0 {
		cfg.Engine.RecentActivityRows = 10
	}
	if cfg.Risk.MaxTradeSize <= 0 {
		cfg.Risk.MaxTradeSize = 1000
	}
	if cfg.Risk.MaxWalletExposure <= 0 {
		cfg.Risk.MaxWalletExposure = 5000
	}
	if cfg.Risk.MinOrderUSDC <= 0 {
		cfg.Risk.MinOrderUSDC = 1
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "copytrader.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// SeedBotConfig construye el BotConfig inicial a partir de la
// configuración estática. Solo se usa si la base de datos aún no tiene
// estado persistido.
func (c *Config) SeedBotConfig() SeededBotConfig {
	return SeededBotConfig{
		DryRun:            !c.Engine.RealTrading,
		RiskPct:           c.Engine.DefaultCopyPct,
		Interval:          c.Interval(),
		MaxTradeSize:      c.Risk.MaxTradeSize,
		MaxWalletExposure: c.Risk.MaxWalletExposure,
		MinOrderSize:      c.Risk.MinOrderUSDC,
		MaxFillAge:        c.MaxFillAge(),
		Lookback:          c.Lookback(),
	}
}

// SeededBotConfig es el subconjunto de BotConfig que viene del YAML.
// Se define aquí para no importar internal/domain desde config.
type SeededBotConfig struct {
	DryRun            bool
	RiskPct           float64
	Interval          time.Duration
	MaxTradeSize      float64
	MaxWalletExposure float64
	MinOrderSize      float64
	MaxFillAge        time.Duration
	Lookback          time.Duration
}
