package validate

import (
	"fmt"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
)

// FileRef 参与校验的附件
type FileRef struct {
	Name string
	Kind lib.MediaKind
}

// FileCounts 各类型附件数量
type FileCounts struct {
	Images int
	Videos int
	Audios int
}

// Files 校验附件集合：至少一个，最多 1 个视频、2 个音频，图片不限
func Files(files []FileRef) ([]string, FileCounts) {
	var counts FileCounts
	errs := make([]string, 0)
	for _, f := range files {
		switch f.Kind.(type) {
		case lib.Image:
			counts.Images++
		case lib.Video:
			counts.Videos++
		case lib.Audio:
			counts.Audios++
		default:
			errs = append(errs, fmt.Sprintf(meta.MsgFileTypeNotAllowed, f.Name))
		}
	}
	if counts.Videos > meta.MaxVideos {
		errs = append(errs, meta.MsgMaxVideos)
	}
	if counts.Audios > meta.MaxAudios {
		errs = append(errs, meta.MsgMaxAudios)
	}
	if counts.Images+counts.Videos+counts.Audios == 0 {
		errs = append(errs, meta.MsgFilesRequired)
	}
	return errs, counts
}
