package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/casos-paranormales/casos-cli/lib/actions"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/urfave/cli/v2"
)

func Login(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdLogin)
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

	username := args.Username
	if username == "" {
		username = prompt("Usuario")
	}
	password := args.Password
	if password == "" {
		password = prompt("Contraseña")
	}

	result := actions.ExecuteLogin(c.Context, env.Platform, env.Session, username, password)
	if !result.Success {
		return cli.Exit(result.Error, meta.LoadError)
	}

	fmt.Fprintf(os.Stdout, "Sesión iniciada como %s\n", result.User.DisplayName())
	return nil
}

func Register(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdRegister)
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

	in := actions.RegisterInput{
		Username:  args.Username,
		Password:  args.Password,
		Email:     args.Email,
		FirstName: args.FirstName,
		LastName:  args.LastName,
		Birthday:  args.Birthday,
	}
	if in.Password == "" {
		in.Password = prompt("Contraseña")
		in.ConfirmPassword = prompt("Confirmar contraseña")
	} else {
		in.ConfirmPassword = in.Password
	}

	result := actions.ExecuteRegister(c.Context, env.Platform, env.Session, in)
	if len(result.FieldErrors) > 0 {
		fields := make([]string, 0, len(result.FieldErrors))
		for f := range result.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", f, result.FieldErrors[f])
		}
	}
	if !result.Success {
		return cli.Exit(result.Error, meta.LoadError)
	}

	fmt.Fprintf(os.Stdout, "Cuenta creada, sesión iniciada como %s\n", result.User.DisplayName())
	return nil
}

func Logout(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdLogout)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)

	env, err := loadEnv(args)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	defer env.Close()

	if err := actions.ExecuteLogout(env.Session); err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	fmt.Fprintln(os.Stdout, "Sesión cerrada")
	return nil
}

func Whoami(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdWhoami)
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

	result := actions.ExecuteWhoami(c.Context, env.Platform, env.Session)
	if result.Error != nil {
		return cli.Exit(result.Error, meta.LoadError)
	}

	u := result.User
	fmt.Fprintf(os.Stdout, "Usuario: %s\n", u.DisplayName())
	if u.Email != "" {
		fmt.Fprintf(os.Stdout, "Correo: %s\n", u.Email)
	}
	return nil
}
