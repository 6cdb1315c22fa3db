// Package bus 内嵌 NATS 服务，用于在多个终端之间传递会话变化
package bus

import (
	"errors"
	"fmt"
	"time"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const (
	readyTimeout    = 4 * time.Second
	drainTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Options 服务参数，InProcess 为 true 时不监听任何端口
type Options struct {
	Host      string
	Port      int
	InProcess bool
}

// Server 内嵌 NATS 服务
type Server struct {
	ns *server.Server
}

// Start 启动服务并等待就绪
func Start(opts Options) (*Server, error) {
	sopts := &server.Options{
		ServerName: meta.Name,
		Host:       opts.Host,
		Port:       opts.Port,
		DontListen: opts.InProcess,
		NoSigs:     true,
	}
	ns, err := server.NewServer(sopts)
	if err != nil {
		return nil, fmt.Errorf("create nats server: %w", err)
	}
	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}
	logs.Debugf("nats server ready: %s\n", ns.ClientURL())
	return &Server{ns: ns}, nil
}

// ClientURL 供其他终端连接的地址
func (s *Server) ClientURL() string {
	return s.ns.ClientURL()
}

// ConnectInProcess 进程内连接，不经过网络
func (s *Server) ConnectInProcess() (*nats.Conn, error) {
	return nats.Connect("", nats.InProcessServer(s.ns), nats.Name(meta.Name))
}

// WaitForShutdown 阻塞直到服务关闭
func (s *Server) WaitForShutdown() {
	s.ns.WaitForShutdown()
}

// Connect 连接到已运行的 bus
func Connect(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, errors.New("bus url is empty")
	}
	return nats.Connect(url,
		nats.Name(meta.Name),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(-1),
	)
}

// Shutdown 先排空连接再关闭服务，两步都有超时
func Shutdown(nc *nats.Conn, s *Server) error {
	if nc != nil {
		drained := make(chan error, 1)
		go func() {
			drained <- nc.Drain()
		}()
		select {
		case err := <-drained:
			if err != nil {
				logs.Warnf("nats drain failed, forcing close: %v\n", err)
				nc.Close()
			}
		case <-time.After(drainTimeout):
			logs.Warnf("nats drain timed out, forcing close\n")
			nc.Close()
		}
	}

	if s == nil || s.ns == nil {
		return nil
	}
	s.ns.Shutdown()
	done := make(chan struct{})
	go func() {
		s.ns.WaitForShutdown()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(shutdownTimeout):
		return errors.New("nats server shutdown timed out")
	}
}
