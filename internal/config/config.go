package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type CategoryLimit struct {
	Category string
	MinPct   decimal.Decimal
	MaxPct   decimal.Decimal
}

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	IdempTTLSecs int

	LogLevel  string
	LogFormat string

	LoanMinAmount       decimal.Decimal
	LoanMaxAmount       decimal.Decimal
	LoanDefaultRate     decimal.Decimal
	LoanMaxTermMonths   int
	MaxOpenApplications int
	StorageFeePct       decimal.Decimal
	Remainder           string
	CategoryLimits      []CategoryLimit

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3Bucket    string
	S3UseSSL    bool

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPSender string

	errs []error
}

const defaultCategoryLimits = "jewelry:30:80,electronics:20:60,vehicles:40:70,appliances:20:50,tools:20:50"

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (c *Config) atoi(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("invalid %s %q", k, v))
		return d
	}
	return n
}

func (c *Config) decimal(k, d string) decimal.Decimal {
	v := getenv(k, d)
	n, err := decimal.NewFromString(v)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("invalid %s %q", k, v))
		return decimal.RequireFromString(d)
	}
	return n
}

// Load reads the environment, after merging a .env file when present.
// Parse errors are reported by Validate.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "pawn"),
		MySQLUser: getenv("MYSQL_USER", "pawn"),
		MySQLPass: getenv("MYSQL_PASS", "pawn"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		Remainder: getenv("AMORTIZATION_REMAINDER", "none"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Region:    getenv("S3_REGION", "us-east-1"),
		S3Bucket:    getenv("S3_BUCKET", "pawn-artifacts"),
		S3UseSSL:    getenv("S3_USE_SSL", "false") == "true",

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		SMTPSender: getenv("SMTP_SENDER", "no-reply@pawn.local"),
	}
	c.RedisDB = c.atoi("REDIS_DB", 0)
	c.RedisPoolSize = c.atoi("REDIS_POOL_SIZE", 10)
	c.IdempTTLSecs = c.atoi("IDEMPOTENCY_TTL_SECONDS", 300)
	c.SMTPPort = c.atoi("SMTP_PORT", 465)

	c.LoanMinAmount = c.decimal("LOAN_MIN_AMOUNT", "100")
	c.LoanMaxAmount = c.decimal("LOAN_MAX_AMOUNT", "500000")
	c.LoanDefaultRate = c.decimal("LOAN_DEFAULT_RATE", "5")
	c.LoanMaxTermMonths = c.atoi("LOAN_MAX_TERM_MONTHS", 36)
	c.MaxOpenApplications = c.atoi("MAX_OPEN_APPLICATIONS", 3)
	c.StorageFeePct = c.decimal("STORAGE_FEE_PCT", "0")

	limits, err := ParseCategoryLimits(getenv("CATEGORY_LIMITS", defaultCategoryLimits))
	if err != nil {
		c.errs = append(c.errs, err)
	}
	c.CategoryLimits = limits
	return c
}

// ParseCategoryLimits reads "category:min:max,..." with percentages of the
// item's estimated value.
func ParseCategoryLimits(s string) ([]CategoryLimit, error) {
	var out []CategoryLimit
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := strings.Split(part, ":")
		if len(f) != 3 {
			return nil, fmt.Errorf("invalid CATEGORY_LIMITS entry %q", part)
		}
		min, err1 := decimal.NewFromString(f[1])
		max, err2 := decimal.NewFromString(f[2])
		if err1 != nil || err2 != nil || min.IsNegative() || max.LessThan(min) || max.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("invalid CATEGORY_LIMITS entry %q", part)
		}
		out = append(out, CategoryLimit{Category: strings.ToLower(f[0]), MinPct: min, MaxPct: max})
	}
	return out, nil
}

func (c *Config) Validate() error {
	if len(c.errs) > 0 {
		return errors.Join(c.errs...)
	}
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if !c.LoanMinAmount.IsPositive() || c.LoanMaxAmount.LessThan(c.LoanMinAmount) {
		return errors.New("LOAN_MIN_AMOUNT must be positive and not above LOAN_MAX_AMOUNT")
	}
	if c.LoanDefaultRate.IsNegative() {
		return errors.New("LOAN_DEFAULT_RATE must not be negative")
	}
	if c.LoanMaxTermMonths < 1 || c.MaxOpenApplications < 1 {
		return errors.New("LOAN_MAX_TERM_MONTHS and MAX_OPEN_APPLICATIONS must be at least 1")
	}
	if c.Remainder != "none" && c.Remainder != "final" {
		return fmt.Errorf("invalid AMORTIZATION_REMAINDER %q (none|final)", c.Remainder)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) StorageEnabled() bool { return c.S3Endpoint != "" }

func (c *Config) MailEnabled() bool { return c.SMTPHost != "" }
