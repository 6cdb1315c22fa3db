package meta

const (
	Name        = "casos"
	Description = "A CLI tool for reporting and browsing paranormal cases."
)

var (
	// Version This variable is replaced in compile time. `-ldflags "-X 'github.com/casos-paranormales/casos-cli/meta.Version=${VERSION}'"`
	Version = "0.1.0"
	// Commit This variable is replaced in compile time. `-ldflags "-X 'github.com/casos-paranormales/casos-cli/meta.Commit=${GIT_REV}'"`
	Commit = "latest"
	// BuildDate This variable is replaced in compile time. `-ldflags "-X 'github.com/casos-paranormales/casos-cli/meta.BuildDate=${BUILD_DATE}'"`
	BuildDate = "2026-10-18T09:00:00-05:00"
)
