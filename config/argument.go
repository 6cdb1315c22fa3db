package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

// Argument 命令行参数
type Argument struct {
	Verbose    bool
	BaseDomain string
	ApiKey     string
	Backend    string
	ConfigPath string

	// upload
	FilePath    string
	CaseType    string
	CaseName    string
	Country     string
	Region      string
	Address     string
	Description string
	Path        []string

	// ls
	Page     int
	Limit    int
	Search   string
	Sort     string
	Order    string
	Mine     bool
	Featured bool

	// show / media / comment
	CaseId    int64
	CommentId int64
	Text      string
	Open      bool
	Dir       string
	Yes       bool

	// register / login
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Birthday  string

	// bus
	Host string
	Port int
}

func NewArgument() *Argument {
	return &Argument{}
}

// Parse 读取子命令的切片参数与位置参数，并做基础校验
func (a *Argument) Parse(c *cli.Context, cmd string) (*Argument, error) {
	args := *a
	args.Path = c.StringSlice("path")

	switch cmd {
	case meta.CmdShow, meta.CmdGet, meta.CmdComment:
		id, err := parseId(c.Args().First(), "caso")
		if err != nil {
			return nil, err
		}
		args.CaseId = id
	case meta.CmdLs:
		if args.Sort != "" && !lo.Contains(meta.SortFields, args.Sort) {
			return nil, fmt.Errorf("--sort debe ser uno de %s", meta.SortFieldsStr)
		}
		if args.Order != "" && args.Order != meta.SortOrderAsc && args.Order != meta.SortOrderDesc {
			return nil, fmt.Errorf("--order debe ser '%s' o '%s'", meta.SortOrderAsc, meta.SortOrderDesc)
		}
		if args.Page < 0 || args.Limit < 0 {
			return nil, fmt.Errorf("--page y --limit no pueden ser negativos")
		}
	case meta.CmdCountries:
		if args.Search == "" && c.Args().Present() {
			args.Search = strings.Join(c.Args().Slice(), " ")
		}
	case meta.CmdAdd:
		id, err := parseId(c.Args().First(), "caso")
		if err != nil {
			return nil, err
		}
		args.CaseId = id
		if args.Text == "" && c.Args().Len() > 1 {
			args.Text = strings.Join(c.Args().Tail(), " ")
		}
	case meta.CmdLike, meta.CmdDislike, meta.CmdRm:
		caseId, err := parseId(c.Args().Get(0), "caso")
		if err != nil {
			return nil, err
		}
		commentId, err := parseId(c.Args().Get(1), "comentario")
		if err != nil {
			return nil, err
		}
		args.CaseId, args.CommentId = caseId, commentId
	}

	if args.Backend != "" && !lo.Contains(meta.Backends, args.Backend) {
		return nil, fmt.Errorf("--backend debe ser uno de %s", meta.BackendsStr)
	}
	return &args, nil
}

func parseId(v, what string) (int64, error) {
	if v == "" {
		return 0, fmt.Errorf("falta el id del %s", what)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id de %s inválido: %s", what, v)
	}
	return id, nil
}
