package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/lib/comments"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/urfave/cli/v2"
)

func ListComments(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdComment)
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

	result := actions.ExecuteListComments(c.Context, env.Platform, args.CaseId)
	if result.Error != nil {
		return cli.Exit(result.Error, meta.ServerError)
	}
	if len(result.Comments) == 0 {
		fmt.Fprintln(os.Stdout, "Sin comentarios todavía")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTOR\tFECHA\t👍\t👎\tCOMENTARIO\t")
	for _, cm := range result.Comments {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t\n",
			cm.Id,
			cm.Author.DisplayName(),
			cm.CreatedAt.Format("2006-01-02 15:04"),
			cm.Likes,
			cm.DislikeCount(),
			cm.Text,
		)
	}
	return w.Flush()
}

func AddComment(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdAdd)
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

	user, err := requireUser(env)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	text := args.Text
	if text == "" {
		text = prompt("Comentario")
	}

	cm, err := actions.ExecuteAddComment(c.Context, env.Platform, user, args.CaseId, text)
	if err != nil {
		return cli.Exit(err, meta.ServerError)
	}
	fmt.Fprintf(os.Stdout, "Comentario %d publicado\n", cm.Id)
	return nil
}

func LikeComment(c *cli.Context) error {
	return react(c, meta.CmdLike, comments.Like)
}

func DislikeComment(c *cli.Context) error {
	return react(c, meta.CmdDislike, comments.Dislike)
}

func react(c *cli.Context, cmd string, action comments.Action) error {
	args, err := globalArgs.Parse(c, cmd)
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

	user, err := requireUser(env)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}

	entry, err := actions.ExecuteReact(c.Context, env.Platform, user.Id, args.CaseId, args.CommentId, action)
	if err != nil {
		return cli.Exit(err, meta.ServerError)
	}
	fmt.Fprintf(os.Stdout, "Comentario %d: 👍 %d  👎 %d\n", args.CommentId, entry.Likes, entry.Dislikes)
	return nil
}

func RemoveComment(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdRm)
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

	user, err := requireUser(env)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}

	ask := confirm
	if args.Yes {
		ask = func(string) bool { return true }
	}
	deleted, err := actions.ExecuteDeleteComment(c.Context, env.Platform, user.Id, args.CaseId, args.CommentId, ask)
	if err != nil {
		return cli.Exit(err, meta.ServerError)
	}
	if !deleted {
		fmt.Fprintln(os.Stdout, "Cancelado")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Comentario %d eliminado\n", args.CommentId)
	return nil
}
