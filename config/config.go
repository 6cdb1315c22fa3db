// Package config 配置加载：默认值 < 全局配置 < 项目配置 < 环境变量 < 命令行参数
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type Config struct {
	Backend    string           `mapstructure:"backend" yaml:"backend"`
	Platform   PlatformConfig   `mapstructure:"platform" yaml:"platform"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Local      LocalConfig      `mapstructure:"local" yaml:"local"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Moderation ModerationConfig `mapstructure:"moderation" yaml:"moderation"`
	Location   LocationConfig   `mapstructure:"location" yaml:"location"`
	Upload     UploadConfig     `mapstructure:"upload" yaml:"upload"`
	Bus        BusConfig        `mapstructure:"bus" yaml:"bus"`
	Feed       FeedConfig       `mapstructure:"feed" yaml:"feed"`
}

type PlatformConfig struct {
	URL    string `mapstructure:"url" yaml:"url"`
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

type StorageConfig struct {
	Driver       string        `mapstructure:"driver" yaml:"driver"`
	Bucket       string        `mapstructure:"bucket" yaml:"bucket"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl" yaml:"signed_url_ttl"`
	OSS          OSSConfig     `mapstructure:"oss" yaml:"oss"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Region          string `mapstructure:"region" yaml:"region"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	AccessKeyId     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret" yaml:"access_key_secret"`
	SecurityToken   string `mapstructure:"security_token" yaml:"security_token"`
}

type LocalConfig struct {
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`
	BlobDir string `mapstructure:"blob_dir" yaml:"blob_dir"`
}

type SessionConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type ModerationConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Disabled 显式关闭审核，否则未配置 endpoint 时拒绝所有图片
	Disabled bool `mapstructure:"disabled" yaml:"disabled"`
}

type LocationConfig struct {
	LookupTimeout  time.Duration `mapstructure:"lookup_timeout" yaml:"lookup_timeout"`
	// CountriesURL 为空时只使用内置国家列表
	CountriesURL   string        `mapstructure:"countries_url" yaml:"countries_url"`
	CountriesTTL   time.Duration `mapstructure:"countries_ttl" yaml:"countries_ttl"`
	CountriesCache string        `mapstructure:"countries_cache" yaml:"countries_cache"`
}

type UploadConfig struct {
	Concurrency int  `mapstructure:"concurrency" yaml:"concurrency"`
	ConvertWebp bool `mapstructure:"convert_webp" yaml:"convert_webp"`
}

type BusConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

type FeedConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// HomeFolder ~/.casos
func HomeFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, meta.CasosFolder)
}

// GlobalPath ~/.casos/config.yaml
func GlobalPath() string {
	return filepath.Join(HomeFolder(), meta.ConfigFileName+".yaml")
}

// ProjectPath 当前目录下的 .casos.yaml
func ProjectPath() string {
	return meta.ProjectConfigFile
}

func setDefaults(v *viper.Viper) {
	folder := HomeFolder()
	v.SetDefault("backend", meta.BackendRest)
	v.SetDefault("platform.url", meta.DefaultDomain)
	v.SetDefault("platform.api_key", "")
	v.SetDefault("storage.driver", meta.StorageDriverPlatform)
	v.SetDefault("storage.bucket", meta.DefaultBucket)
	v.SetDefault("storage.signed_url_ttl", meta.DefaultSignedURLTTL)
	v.SetDefault("storage.oss.endpoint", "")
	v.SetDefault("storage.oss.region", "")
	v.SetDefault("storage.oss.bucket", "")
	v.SetDefault("storage.oss.access_key_id", "")
	v.SetDefault("storage.oss.access_key_secret", "")
	v.SetDefault("storage.oss.security_token", "")
	v.SetDefault("local.db_path", filepath.Join(folder, meta.LocalDBFileName))
	v.SetDefault("local.blob_dir", filepath.Join(folder, meta.LocalBlobFolder))
	v.SetDefault("session.path", filepath.Join(folder, meta.SessionFileName))
	v.SetDefault("moderation.endpoint", "")
	v.SetDefault("moderation.timeout", meta.DefaultModerationTimeout)
	v.SetDefault("moderation.disabled", false)
	v.SetDefault("location.lookup_timeout", meta.DefaultLocationLookupTimeout)
	v.SetDefault("location.countries_url", meta.DefaultCountriesURL)
	v.SetDefault("location.countries_ttl", meta.DefaultCountriesTTL)
	v.SetDefault("location.countries_cache", filepath.Join(folder, meta.CountriesFileName))
	v.SetDefault("upload.concurrency", meta.UploadConcurrency)
	v.SetDefault("upload.convert_webp", false)
	v.SetDefault("bus.url", "")
	v.SetDefault("feed.page_size", meta.DefaultPageSize)
}

// Load 加载配置；path 非空时只读取该文件，不再合并全局与项目配置
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(meta.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("platform.api_key", meta.EnvAPIKey, meta.EnvPrefix+"_PLATFORM_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		if fileExists(GlobalPath()) {
			v.SetConfigFile(GlobalPath())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading global config: %w", err)
			}
		}
		if fileExists(ProjectPath()) {
			v.SetConfigFile(ProjectPath())
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Apply 命令行参数优先
func (c *Config) Apply(args *Argument) *Config {
	if args == nil {
		return c
	}
	if args.Backend != "" {
		c.Backend = args.Backend
	}
	if args.BaseDomain != "" {
		c.Platform.URL = args.BaseDomain
	}
	if args.ApiKey != "" {
		c.Platform.APIKey = args.ApiKey
	}
	return c
}

func (c *Config) Validate() error {
	if !lo.Contains(meta.Backends, c.Backend) {
		return fmt.Errorf("backend debe ser uno de %s, recibido %q", meta.BackendsStr, c.Backend)
	}
	if c.Backend == meta.BackendRest {
		if c.Platform.URL == "" {
			return fmt.Errorf("platform.url es requerido")
		}
		if !lo.Contains(meta.StorageDrivers, c.Storage.Driver) {
			return fmt.Errorf("storage.driver debe ser uno de %s, recibido %q", meta.StorageDriversStr, c.Storage.Driver)
		}
		if c.Storage.Driver == meta.StorageDriverOSS {
			oss := c.Storage.OSS
			if oss.Endpoint == "" || oss.AccessKeyId == "" || oss.AccessKeySecret == "" {
				return fmt.Errorf("storage.oss requiere endpoint, access_key_id y access_key_secret")
			}
		}
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket es requerido")
	}
	if c.Upload.Concurrency < 1 {
		return fmt.Errorf("upload.concurrency debe ser mayor que 0")
	}
	if c.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size debe ser mayor que 0")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
