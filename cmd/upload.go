package cmd

import (
	"fmt"
	"os"

	"github.com/casos-paranormales/casos-cli/config"
	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/lib/moderation"
	"github.com/casos-paranormales/casos-cli/lib/validate"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func Upload(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdUpload)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)
	logs.Debugf("args: %#v\n", args)

	// 1. 读取案例：YAML 文件或命令行参数
	file, err := caseFileFromArgs(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	if err := file.Validate(); err != nil {
		return cli.Exit(err, meta.LoadError)
	}

	env, err := loadEnv(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	defer env.Close()

	// 2. 需要登录
	user, err := requireUser(env)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	types, err := actions.ExecuteListCaseTypes(c.Context, env.Platform)
	if err != nil {
		return cli.Exit(err, meta.ServerError)
	}

	// 3. 逐个提交
	submitter := env.Submitter()
	total := len(file.Cases)
	failed := 0
	for i := range file.Cases {
		spec := &file.Cases[i]
		fmt.Fprintf(os.Stdout, "\n[%d/%d] %s\n", i+1, total, spec.CaseName)

		sub, err := buildSubmission(user.Id, types, spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			failed++
			continue
		}

		// 审核通过之前不写入任何数据
		err = actions.ExecuteModeration(c.Context, env.Gate, sub.Files, func(f lib.Attachment, v moderation.Verdict) {
			fmt.Fprintf(os.Stdout, "  %s %s: %s\n", meta.MsgAnalyzing, f.Name, v.Status)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			failed++
			continue
		}

		result := submitter.Execute(c.Context, sub, newCliSubmitCallback())
		if result.Error != nil {
			failed++
			if result.CaseId != 0 {
				fmt.Fprintf(os.Stderr, "✗ caso %d creado pero incompleto (%s): %v\n", result.CaseId, lib.GetStep(result.Error), result.Error)
			} else {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", meta.MsgSubmitFailed, result.Error)
			}
			continue
		}
		fmt.Fprintf(os.Stdout, "✓ caso %d publicado con %d archivo(s)\n", result.CaseId, len(result.Files))
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d de %d casos no se pudieron subir", failed, total), meta.ServerError)
	}
	return nil
}

// caseFileFromArgs -f 优先，否则用命令行参数组成单个案例
func caseFileFromArgs(args *config.Argument) (*config.CaseFile, error) {
	if args.FilePath != "" {
		return config.LoadCaseFile(validate.EnsureAbsPath(args.FilePath))
	}
	spec := config.CaseSpec{
		CaseType:    args.CaseType,
		CaseName:    args.CaseName,
		Country:     args.Country,
		Region:      args.Region,
		Address:     args.Address,
		Description: args.Description,
		Files:       lo.Map(args.Path, func(p string, _ int) string { return validate.EnsureAbsPath(p) }),
	}
	return &config.CaseFile{Cases: []config.CaseSpec{spec}}, nil
}

func buildSubmission(userId int64, types []lib.CaseType, spec *config.CaseSpec) (lib.CaseSubmission, error) {
	form, err := spec.Form()
	if err != nil {
		return lib.CaseSubmission{}, err
	}
	ct, err := actions.ResolveCaseType(types, form[validate.FieldCaseType])
	if err != nil {
		return lib.CaseSubmission{}, err
	}
	return lib.CaseSubmission{
		UserId:      userId,
		CaseTypeId:  ct.Id,
		CaseName:    form[validate.FieldCaseName],
		Country:     form[validate.FieldCountry],
		Region:      form[validate.FieldRegion],
		Address:     form[validate.FieldAddress],
		Description: form[validate.FieldDescription],
		Files:       spec.Attachments(),
	}, nil
}
