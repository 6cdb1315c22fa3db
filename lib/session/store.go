// Package session 本地登录会话：文件持久化，变更后通知所有订阅者
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/google/uuid"
)

// Kind 会话变化类型
type Kind string

const (
	KindLogin  Kind = "login"
	KindLogout Kind = "logout"
)

// Event 会话变化通知，订阅者收到后应重新读取 Store
type Event struct {
	Kind   Kind      `json:"kind"`
	UserId int64     `json:"userId,omitempty"`
	At     time.Time `json:"at"`
	Origin string    `json:"origin"`
}

type fileContent struct {
	User   *lib.User `json:"user"`
	UserId int64     `json:"userId"`
}

// Store 会话存储，唯一的跨组件共享可变状态
type Store struct {
	path   string
	origin string

	mu          sync.Mutex
	observers   map[int]func(Event)
	nextId      int
	broadcaster Broadcaster
}

// DefaultPath ~/.casos/session.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, meta.CasosFolder, meta.SessionFileName), nil
}

func NewStore(path string) *Store {
	return &Store{
		path:      path,
		origin:    uuid.NewString(),
		observers: make(map[int]func(Event)),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Current 读取当前用户；文件缺失、内容损坏或被外部清除都视为未登录
func (s *Store) Current() (*lib.User, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logs.Debugf("read session file: %v\n", err)
		}
		return nil, false
	}
	var content fileContent
	if err := json.Unmarshal(data, &content); err != nil {
		logs.Debugf("malformed session file %s: %v\n", s.path, err)
		return nil, false
	}
	if content.User == nil || content.User.Id == 0 {
		return nil, false
	}
	return content.User, true
}

// Login 原子写入会话后通知订阅者
func (s *Store) Login(user lib.User) error {
	data, err := json.MarshalIndent(fileContent{User: &user, UserId: user.Id}, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.emit(Event{Kind: KindLogin, UserId: user.Id, At: time.Now(), Origin: s.origin})
	return nil
}

// Logout 清除会话后通知订阅者，未登录时同样会通知
func (s *Store) Logout() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	s.emit(Event{Kind: KindLogout, At: time.Now(), Origin: s.origin})
	return nil
}

// Subscribe 注册订阅者，返回取消函数
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextId
	s.nextId++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// SetBroadcaster 本地变化同时广播给其他终端
func (s *Store) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	s.broadcaster = b
	s.mu.Unlock()
}

func (s *Store) emit(e Event) {
	s.notify(e)
	s.mu.Lock()
	b := s.broadcaster
	s.mu.Unlock()
	if b != nil {
		if err := b.Publish(e); err != nil {
			logs.Warnf("broadcast session change: %v\n", err)
		}
	}
}

// notify 按注册顺序回调，回调在锁外执行
func (s *Store) notify(e Event) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
