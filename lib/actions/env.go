package actions

import (
	"fmt"
	"io"

	"github.com/casos-paranormales/casos-cli/config"
	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/bus"
	"github.com/casos-paranormales/casos-cli/lib/localstore"
	"github.com/casos-paranormales/casos-cli/lib/location"
	"github.com/casos-paranormales/casos-cli/lib/moderation"
	"github.com/casos-paranormales/casos-cli/lib/session"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/nats-io/nats.go"
)

// Env 一次命令执行所需的全部依赖，CLI 和 TUI 共用
type Env struct {
	Config   *config.Config
	Platform lib.Platform
	Blobs    lib.BlobStore
	Gate     *moderation.Gate
	Session  *session.Store
	// Countries 国家目录，位置步骤的补全来源
	Countries *location.Catalog

	closers []io.Closer
	nc      *nats.Conn
}

// NewEnv 根据配置组装数据平台、对象存储、审核关口与会话
func NewEnv(cfg *config.Config) (*Env, error) {
	env := &Env{
		Config:  cfg,
		Session: session.NewStore(cfg.Session.Path),
		Gate:    newGate(cfg.Moderation),
		Countries: location.NewCatalog(location.Options{
			BaseURL:   cfg.Location.CountriesURL,
			TTL:       cfg.Location.CountriesTTL,
			Timeout:   meta.DefaultCountriesTimeout,
			CachePath: cfg.Location.CountriesCache,
		}),
	}

	switch cfg.Backend {
	case meta.BackendLocal:
		store, err := localstore.Open(cfg.Local.DBPath)
		if err != nil {
			return nil, lib.WithStep("abrir base local", err)
		}
		env.Platform = store
		env.Blobs = lib.NewLocalBlobStore(cfg.Local.BlobDir)
		env.closers = append(env.closers, store)
	case meta.BackendRest, "":
		client := lib.NewClient(cfg.Platform.URL, cfg.Platform.APIKey)
		env.Platform = client
		blobs, err := newBlobStore(cfg.Storage, client)
		if err != nil {
			return nil, lib.WithStep("configurar almacenamiento", err)
		}
		env.Blobs = blobs
	default:
		return nil, fmt.Errorf("unsupported backend %q, allowed: %s", cfg.Backend, meta.BackendsStr)
	}
	logs.Debugf("env ready: backend=%s storage=%s bucket=%s\n", cfg.Backend, cfg.Storage.Driver, cfg.Storage.Bucket)
	return env, nil
}

func newBlobStore(cfg config.StorageConfig, client *lib.Client) (lib.BlobStore, error) {
	switch cfg.Driver {
	case meta.StorageDriverOSS:
		return lib.NewAliOssStorageClient(lib.OSSOptions{
			Endpoint:        cfg.OSS.Endpoint,
			Region:          cfg.OSS.Region,
			Bucket:          cfg.OSS.Bucket,
			AccessKeyId:     cfg.OSS.AccessKeyId,
			AccessKeySecret: cfg.OSS.AccessKeySecret,
			SecurityToken:   cfg.OSS.SecurityToken,
		})
	case meta.StorageDriverPlatform, "":
		return lib.NewPlatformStorage(client), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q, allowed: %s", cfg.Driver, meta.StorageDriversStr)
}

// newGate 未配置分类服务且未显式关闭审核时，关口拒绝所有图片
func newGate(cfg config.ModerationConfig) *moderation.Gate {
	switch {
	case cfg.Disabled:
		logs.Warnf("image moderation disabled by configuration\n")
		return moderation.NewGate(moderation.NeutralClassifier{}, cfg.Timeout)
	case cfg.Endpoint != "":
		return moderation.NewGate(moderation.NewHTTPClassifier(cfg.Endpoint), cfg.Timeout)
	}
	return moderation.NewGate(nil, cfg.Timeout)
}

// ConnectBus 连接会话广播总线，未配置时什么都不做
func (e *Env) ConnectBus() error {
	if e.Config.Bus.URL == "" || e.nc != nil {
		return nil
	}
	nc, err := bus.Connect(e.Config.Bus.URL)
	if err != nil {
		return lib.WithStep("conectar bus", err)
	}
	e.nc = nc
	e.Session.SetBroadcaster(session.NewNATSBroadcaster(nc))
	return nil
}

// Broadcaster 已连接总线时返回广播器
func (e *Env) Broadcaster() session.Broadcaster {
	if e.nc == nil {
		return nil
	}
	return session.NewNATSBroadcaster(e.nc)
}

// Media 详情页媒体解析器
func (e *Env) Media() *MediaResolver {
	return &MediaResolver{
		Blobs:  e.Blobs,
		Bucket: e.Config.Storage.Bucket,
		TTL:    e.Config.Storage.SignedURLTTL,
	}
}

// Submitter 案例提交编排器
func (e *Env) Submitter() *Submitter {
	return &Submitter{
		Platform:        e.Platform,
		Blobs:           e.Blobs,
		Bucket:          e.Config.Storage.Bucket,
		LocationTimeout: e.Config.Location.LookupTimeout,
		Concurrency:     e.Config.Upload.Concurrency,
		ConvertWebp:     e.Config.Upload.ConvertWebp,
	}
}

func (e *Env) Close() error {
	if e.nc != nil {
		if err := e.nc.Drain(); err != nil {
			logs.Debugf("drain bus connection: %v\n", err)
		}
		e.nc = nil
	}
	var firstErr error
	for _, c := range e.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.closers = nil
	return firstErr
}
