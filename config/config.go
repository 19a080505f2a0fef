package config

import (
	"os"
	"path"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

// SysConfig system level configuration
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig admin api server configuration
type WebConfig struct {
	Host        string `yaml:"host" json:"host"`
	Port        int    `yaml:"port" json:"port"`
	Secret      string `yaml:"secret" json:"secret"`
	JwtExpireHr int    `yaml:"jwt_expire_hr" json:"jwt_expire_hr"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// StockConfig inventory housekeeping configuration
type StockConfig struct {
	LowStockThreshold int64 `yaml:"low_stock_threshold" json:"low_stock_threshold"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Database DBConfig    `yaml:"database" json:"database"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
	Stock    StockConfig `yaml:"stock" json:"stock"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "orderstock",
		Location: "Asia/Shanghai",
		Workdir:  "/var/orderstock",
		Debug:    true,
	},
	Web: WebConfig{
		Host:        "0.0.0.0",
		Port:        1816,
		Secret:      "9b6de5cc-orderstock-b712-0f508e5c8a61",
		JwtExpireHr: 24,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "orderstock",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/orderstock/orderstock.log",
	},
	Stock: StockConfig{
		LowStockThreshold: 10,
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvInt64Value(name string, f func(v int64)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToInt64E(evalue)
	if err == nil {
		f(p)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToBoolE(evalue)
	if err == nil {
		f(p)
	}
}

// LoadConfig reads the yaml configuration file and applies environment
// variable overrides. A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	if cfile == "" {
		cfile = "orderstock.yml"
	}

	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig

	if data, err := os.ReadFile(cfile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	}

	setEnvValue("ORDERSTOCK_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvValue("ORDERSTOCK_SYSTEM_LOCATION", func(v string) { cfg.System.Location = v })
	setEnvBoolValue("ORDERSTOCK_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })

	setEnvValue("ORDERSTOCK_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvInt64Value("ORDERSTOCK_WEB_PORT", func(v int64) { cfg.Web.Port = int(v) })
	setEnvValue("ORDERSTOCK_WEB_SECRET", func(v string) { cfg.Web.Secret = v })

	setEnvValue("ORDERSTOCK_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("ORDERSTOCK_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvInt64Value("ORDERSTOCK_DB_PORT", func(v int64) { cfg.Database.Port = int(v) })
	setEnvValue("ORDERSTOCK_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("ORDERSTOCK_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("ORDERSTOCK_DB_PWD", func(v string) { cfg.Database.Passwd = v })

	setEnvValue("ORDERSTOCK_LOGGER_MODE", func(v string) { cfg.Logger.Mode = v })
	setEnvBoolValue("ORDERSTOCK_LOGGER_FILE_ENABLE", func(v bool) { cfg.Logger.FileEnable = v })

	setEnvInt64Value("ORDERSTOCK_LOW_STOCK_THRESHOLD", func(v int64) { cfg.Stock.LowStockThreshold = v })

	if cfg.Logger.Filename == "" {
		cfg.Logger.Filename = path.Join(cfg.System.Workdir, "orderstock.log")
	}

	return cfg
}
