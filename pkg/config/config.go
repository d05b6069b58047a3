package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"RateBot/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"production" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"5000" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"1s"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format    string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled   bool          `yaml:"enabled"`
			Interval  time.Duration `yaml:"interval" default:"30s"`
			Threshold int           `yaml:"threshold" default:"100"`
			Topic     string        `yaml:"topic" default:"ratebot.logs"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Disabled bool   `yaml:"disabled"`
		Path     string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Line struct {
		ChannelSecret      string        `yaml:"channel_secret" validate:"required"`
		ChannelAccessToken string        `yaml:"channel_access_token" validate:"required"`
		Endpoint           string        `yaml:"endpoint"`
		Timeout            time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"line"`
	Cloudinary struct {
		CloudName string        `yaml:"cloud_name" validate:"required"`
		APIKey    string        `yaml:"api_key" validate:"required"`
		APISecret string        `yaml:"api_secret" validate:"required"`
		Folder    string        `yaml:"folder"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"cloudinary"`
	Market struct {
		BaseURL     string        `yaml:"base_url" default:"https://api-pub.bitfinex.com" validate:"url"`
		Timeout     time.Duration `yaml:"timeout" default:"5s" validate:"gt=0,lte=5s"`
		Concurrency int           `yaml:"concurrency" default:"6" validate:"gte=1"`
	} `yaml:"market"`
	Icons struct {
		Timeout   time.Duration `yaml:"timeout" default:"5s" validate:"gt=0,lte=5s"`
		Size      int           `yaml:"size" default:"120" validate:"gte=16,lte=512"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0"`
		Cache     struct {
			Backend         string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis"`
			TTL             time.Duration `yaml:"ttl" default:"24h"`
			MaxEntries      int           `yaml:"max_entries" default:"64" validate:"gte=1"`
			CleanupInterval time.Duration `yaml:"cleanup_interval" default:"5m" validate:"gt=0"`
		} `yaml:"cache"`
	} `yaml:"icons"`
	Report struct {
		Trigger       string `yaml:"trigger" default:"利率" validate:"required"`
		AckText       string `yaml:"ack_text" default:"📊 正在抓取數據並生成報表，請稍候約 3-5 秒..."`
		FailurePrefix string `yaml:"failure_prefix" default:"❌ 報表處理失敗: "`
		OutputPath    string `yaml:"output_path" default:"line_report.png"`
		KeepLocal     bool   `yaml:"keep_local"`
	} `yaml:"report"`
	Queue struct {
		Backend    string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		Workers    int           `yaml:"workers" default:"4" validate:"gte=1"`
		Size       int           `yaml:"size" default:"64" validate:"gte=1"`
		JobTimeout time.Duration `yaml:"job_timeout" default:"2m"`
		KeyPrefix  string        `yaml:"key_prefix" default:"ratebot:queue"`
	} `yaml:"queue"`
	Redis struct {
		Addr         string        `yaml:"addr" default:"localhost:6379"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		Prefix       string        `yaml:"prefix" default:"ratebot"`
		PoolSize     int           `yaml:"pool_size" default:"10" validate:"gte=1"`
		MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
		PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		EventsTopic  string        `yaml:"events_topic" default:"report.events"`
		RequiredAcks int           `yaml:"required_acks" default:"1"`
		Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"100ms"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Load reads a YAML file, applies defaults and validates.
// An empty path or a missing file yields a config built from defaults alone.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Credentials usually only come from the environment, so validation runs last.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"); v != "" {
		c.Line.ChannelAccessToken = v
	}
	if v := os.Getenv("LINE_CHANNEL_SECRET"); v != "" {
		c.Line.ChannelSecret = v
	}
	if v := os.Getenv("CLOUDINARY_CLOUD_NAME"); v != "" {
		c.Cloudinary.CloudName = v
	}
	if v := os.Getenv("CLOUDINARY_API_KEY"); v != "" {
		c.Cloudinary.APIKey = v
	}
	if v := os.Getenv("CLOUDINARY_API_SECRET"); v != "" {
		c.Cloudinary.APISecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitAndTrim(v, ",")
	}
}

// LoadLocal is LoadWithEnv for commands that never talk to LINE or
// Cloudinary: their credentials are not required.
func LoadLocal(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv()

	if err := c.checkRules(validate.StructExcept(c, "Line", "Cloudinary")); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	return c.checkRules(validate.Struct(c))
}

func (c *Config) checkRules(err error) error {
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fieldPath(fe), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka.enabled")
	}
	if c.Logging.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.collector requires kafka.enabled")
	}
	return nil
}

// fieldPath turns "Config.Line.ChannelSecret" into "Line.ChannelSecret".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
