package types

// ProjectConfig is the top-level cinelake.yaml configuration.
type ProjectConfig struct {
	TMDB       TMDBConfig            `yaml:"tmdb"`
	Thresholds []PopularityThreshold `yaml:"thresholds,omitempty"`
	Store      StoreConfig           `yaml:"store"`
	Catalog    *CatalogConfig        `yaml:"catalog,omitempty"`
	Ledger     *LedgerConfig         `yaml:"ledger,omitempty"`
	Warehouse  *WarehouseConfig      `yaml:"warehouse,omitempty"`
	Server     *ServerConfig         `yaml:"server,omitempty"`
}

// TMDBConfig holds extraction settings for the TMDB API.
type TMDBConfig struct {
	BaseURL      string       `yaml:"baseUrl,omitempty"`
	APIKeyEnv    string       `yaml:"apiKeyEnv,omitempty"`    // env var holding the key, default TMDB_API_KEY
	APIKeySecret string       `yaml:"apiKeySecret,omitempty"` // Secrets Manager ARN, overrides the env var
	MaxPages     int          `yaml:"maxPages,omitempty"`
	MaxDetails   int          `yaml:"maxDetails,omitempty"`
	MaxWorkers   int          `yaml:"maxWorkers,omitempty"`
	PageDelay    string       `yaml:"pageDelay,omitempty"` // e.g. "500ms"
	Retry        *RetryPolicy `yaml:"retry,omitempty"`
}

// RetryPolicy configures bounded retry with jittered exponential backoff.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"maxAttempts" json:"maxAttempts"`
	BackoffSeconds    float64 `yaml:"backoffSeconds" json:"backoffSeconds"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier,omitempty" json:"backoffMultiplier,omitempty"`
	MaxBackoffSeconds float64 `yaml:"maxBackoffSeconds,omitempty" json:"maxBackoffSeconds,omitempty"`
}

// PopularityThreshold is one ordered bucket of the popularity banding table:
// records with popularity >= Bound (and below the next bound) get Label.
type PopularityThreshold struct {
	Bound float64 `yaml:"bound" json:"bound"`
	Label string  `yaml:"label" json:"label"`
}

// DefaultPopularityThresholds returns the historical banding policy. It is
// configuration data handed to the categorizer, never baked into the
// categorization path itself.
func DefaultPopularityThresholds() []PopularityThreshold {
	return []PopularityThreshold{
		{Bound: 0, Label: "Low"},
		{Bound: 100, Label: "Medium"},
		{Bound: 500, Label: "High"},
	}
}

// StoreBackend selects the partition store implementation.
type StoreBackend string

// StoreBackend values enumerate the supported partition store backends.
const (
	StoreS3    StoreBackend = "s3"
	StoreLocal StoreBackend = "local"
)

// StoreConfig holds partition store settings.
type StoreConfig struct {
	Backend StoreBackend `yaml:"backend"`
	Bucket  string       `yaml:"bucket,omitempty"`
	Prefix  string       `yaml:"prefix,omitempty"` // default "daily_outputs"
	Region  string       `yaml:"region,omitempty"`
	Dir     string       `yaml:"dir,omitempty"` // local backend only
}

// CatalogConfig holds Glue data-catalog settings.
type CatalogConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	Region   string `yaml:"region,omitempty"`
}

// LedgerConfig holds DynamoDB run-ledger settings.
type LedgerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	TableName   string `yaml:"tableName"`
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"` // local development only
	CreateTable bool   `yaml:"createTable,omitempty"`
}

// WarehouseConfig holds Postgres warehouse settings.
type WarehouseConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	APIKey         string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	MaxRequestBody int64  `yaml:"maxRequestBody,omitempty" json:"maxRequestBody,omitempty"`
}
