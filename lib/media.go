package lib

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/samber/lo"
)

// MediaKind 媒体类型：Image / Video / Audio / Unknown 四选一
type MediaKind interface {
	mediaKind()
	String() string
}

type Image struct{}
type Video struct{}
type Audio struct{}
type Unknown struct{}

func (Image) mediaKind()   {}
func (Video) mediaKind()   {}
func (Audio) mediaKind()   {}
func (Unknown) mediaKind() {}

func (Image) String() string   { return "image" }
func (Video) String() string   { return "video" }
func (Audio) String() string   { return "audio" }
func (Unknown) String() string { return "unknown" }

// MediaMatch 每种媒体类型一个分支
type MediaMatch[T any] struct {
	Image   func() T
	Video   func() T
	Audio   func() T
	Unknown func() T
}

// Match 按媒体类型选择分支执行
func Match[T any](k MediaKind, m MediaMatch[T]) T {
	switch k.(type) {
	case Image:
		return m.Image()
	case Video:
		return m.Video()
	case Audio:
		return m.Audio()
	default:
		return m.Unknown()
	}
}

var extContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/m4a",
	".aac":  "audio/aac",
}

// MediaExtensions 支持的扩展名（含点号），按字母排序
func MediaExtensions() []string {
	return slices.Sorted(maps.Keys(extContentTypes))
}

// ContentTypeFor 根据扩展名推断 MIME，未知返回空
func ContentTypeFor(name string) string {
	return extContentTypes[strings.ToLower(filepath.Ext(name))]
}

// DetectKind 优先按 MIME，其次按扩展名判断媒体类型
func DetectKind(name, mimeType string) MediaKind {
	if k := kindFromMime(mimeType); k != nil {
		return k
	}
	if k := kindFromMime(ContentTypeFor(name)); k != nil {
		return k
	}
	return Unknown{}
}

func kindFromMime(mimeType string) MediaKind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	switch {
	case mimeType == "":
		return nil
	case lo.Contains(meta.ImageMimeTypes, mimeType):
		return Image{}
	case lo.Contains(meta.VideoMimeTypes, mimeType):
		return Video{}
	case lo.Contains(meta.AudioMimeTypes, mimeType):
		return Audio{}
	}
	return nil
}

// KindFromRecord 解析 Files.type_multimedia，兼容旧数据中保存的 MIME
func KindFromRecord(typeMultimedia, url string) MediaKind {
	switch strings.ToLower(typeMultimedia) {
	case "image":
		return Image{}
	case "video":
		return Video{}
	case "audio":
		return Audio{}
	}
	return DetectKind(stripQuery(url), typeMultimedia)
}

// StorageFolder 对象存储中的子目录
func StorageFolder(k MediaKind) string {
	return Match(k, MediaMatch[string]{
		Image:   func() string { return "fotos" },
		Video:   func() string { return "videos" },
		Audio:   func() string { return "audios" },
		Unknown: func() string { return "otros" },
	})
}

// MediaIcon 终端展示用图标
func MediaIcon(k MediaKind) string {
	return Match(k, MediaMatch[string]{
		Image:   func() string { return "🖼️" },
		Video:   func() string { return "🎥" },
		Audio:   func() string { return "🎵" },
		Unknown: func() string { return "📄" },
	})
}

func stripQuery(u string) string {
	if idx := strings.Index(u, "?"); idx >= 0 {
		return u[:idx]
	}
	return u
}

// CaseIcon 按案例类型名称选择图标
func CaseIcon(typeName string) string {
	t := strings.ToLower(typeName)
	switch {
	case t == "":
		return "🔮"
	case containsAny(t, "ovni", "ufo", "ufología", "ufologia"):
		return "🛸"
	case containsAny(t, "fantasma", "ghost", "parapsicología", "parapsicologia"):
		return "👻"
	case containsAny(t, "cripto", "cryptid"):
		return "💀"
	}
	return "🔮"
}

func containsAny(s string, subs ...string) bool {
	return lo.SomeBy(subs, func(sub string) bool { return strings.Contains(s, sub) })
}
