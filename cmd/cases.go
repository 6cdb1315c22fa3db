package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/urfave/cli/v2"
)

func ListTypes(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdTypes)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)

	env, err := loadEnv(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	defer env.Close()

	types, err := actions.ExecuteListCaseTypes(c.Context, env.Platform)
	if err != nil {
		return cli.Exit(err, meta.ServerError)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTIPO\t")
	for _, t := range types {
		fmt.Fprintf(w, "%d\t%s %s\t\n", t.Id, lib.CaseIcon(t.Name), t.Name)
	}
	return w.Flush()
}

func ListCases(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdLs)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)
	logs.Debugf("args: %#v\n", args)

	env, err := loadEnv(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	defer env.Close()

	// 1. 组装查询
	limit := args.Limit
	if limit == 0 {
		limit = env.Config.Feed.PageSize
	}
	input := actions.ListCasesInput{
		Query: lib.CaseQuery{
			Page:      args.Page,
			Limit:     limit,
			Search:    args.Search,
			SortBy:    args.Sort,
			SortOrder: args.Order,
		},
		Mine:     args.Mine,
		Featured: args.Featured,
	}
	if args.CaseType != "" {
		types, err := actions.ExecuteListCaseTypes(c.Context, env.Platform)
		if err != nil {
			return cli.Exit(err, meta.ServerError)
		}
		ct, err := actions.ResolveCaseType(types, args.CaseType)
		if err != nil {
			return cli.Exit(err, meta.LoadError)
		}
		input.Query.CaseTypeId = ct.Id
	}
	if args.Mine {
		user, err := requireUser(env)
		if err != nil {
			return cli.Exit(err, meta.LoadError)
		}
		input.ViewerId = user.Id
	}

	// 2. 查询
	result := actions.ExecuteListCases(c.Context, env.Platform, input)
	if result.Error != nil {
		return cli.Exit(result.Error, meta.ServerError)
	}

	// 3. 输出
	page := result.Page
	if len(page.Cases) == 0 {
		fmt.Fprintln(os.Stdout, "No se encontraron casos")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTIPO\tNOMBRE\tUBICACIÓN\tFECHA\tARCHIVOS\t")
	for _, cs := range page.Cases {
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t%s\t%d\t\n",
			cs.Id,
			lib.CaseIcon(cs.TypeName()),
			cs.TypeName(),
			cs.CaseName,
			cs.Location.String(),
			cs.TimeHour.Format("2006-01-02 15:04"),
			len(cs.Files),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !args.Featured {
		fmt.Fprintf(os.Stdout, "\nPágina %d de %d (%d casos)\n", page.CurrentPage, page.TotalPages, page.TotalCount)
	}
	return nil
}

func ShowCase(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdShow)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)
	logs.Debugf("args: %#v\n", args)

	env, err := loadEnv(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	defer env.Close()

	resolver := env.Media()
	detail := actions.ExecuteGetCase(c.Context, env.Platform, resolver, args.CaseId)
	if detail.Error != nil {
		return cli.Exit(detail.Error, meta.ServerError)
	}
	cs := detail.Case

	fmt.Fprintf(os.Stdout, "=== %s %s ===\n\n", lib.CaseIcon(cs.TypeName()), cs.CaseName)
	fmt.Fprintf(os.Stdout, "ID:        %d\n", cs.Id)
	fmt.Fprintf(os.Stdout, "Tipo:      %s\n", cs.TypeName())
	fmt.Fprintf(os.Stdout, "Ubicación: %s\n", cs.Location.String())
	fmt.Fprintf(os.Stdout, "Fecha:     %s\n", cs.TimeHour.Format("2006-01-02 15:04"))
	fmt.Fprintf(os.Stdout, "Autor:     %s\n\n", cs.Owner.DisplayName())
	fmt.Fprintln(os.Stdout, lib.RenderMarkdown(cs.Description, 0))

	if len(detail.Media) == 0 {
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n=== Archivos (%d) ===\n\n", len(detail.Media))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTIPO\tARCHIVO\tESTADO\t")
	for _, item := range detail.Media {
		status := "disponible"
		if item.Err != nil {
			status = meta.MsgMediaUnavailable
		}
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t\n", item.File.Id, lib.MediaIcon(item.Kind), item.Kind.String(), item.Name(), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !args.Open {
		return nil
	}
	for i := range detail.Media {
		item := &detail.Media[i]
		if item.Err != nil {
			continue
		}
		msg, err := actions.ExecuteOpenMedia(c.Context, resolver, item)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", item.Name(), err)
			continue
		}
		logs.Debugf("%s\n", msg)
	}
	return nil
}
