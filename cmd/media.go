package cmd

import (
	"fmt"
	"os"

	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/urfave/cli/v2"
)

func GetMedia(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdGet)
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

	result := actions.ExecuteDownloadMedia(c.Context, env.Platform, env.Media(), args.CaseId, args.Dir,
		func(item actions.MediaItem, consumed, total int64) {
			if total > 0 {
				percent := float64(consumed) / float64(total)
				fmt.Printf("\r%s %s %.1f%% (%s/%s)", item.Name(), renderProgressBar(percent), percent*100, formatBytes(consumed), formatBytes(total))
			}
		})
	if result.Error != nil {
		return cli.Exit(result.Error, meta.ServerError)
	}

	fmt.Fprintln(os.Stdout)
	for _, p := range result.Saved {
		fmt.Fprintf(os.Stdout, "✓ %s\n", p)
	}
	for _, item := range result.Unavailable {
		fmt.Fprintf(os.Stdout, "✗ %s: %s\n", item.Name(), meta.MsgMediaUnavailable)
	}
	return nil
}
