package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/casos-paranormales/casos-cli/lib/bus"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
	"github.com/urfave/cli/v2"
)

// RunBus 前台运行会话总线，直到收到中断信号
func RunBus(c *cli.Context) error {
	args, err := globalArgs.Parse(c, meta.CmdBus)
	if err != nil {
		return cli.Exit(err, meta.LoadError)
	}
	setLogVerbose(args.Verbose)
	logs.Debugf("args: %#v\n", args)

	s, err := bus.Start(bus.Options{Host: args.Host, Port: args.Port})
	if err != nil {
		return cli.Exit(err, meta.ServerError)
	}
	fmt.Fprintf(os.Stdout, "Bus escuchando en %s\n", s.ClientURL())
	fmt.Fprintf(os.Stdout, "Agrega \"bus: {url: %s}\" a tu configuración para compartir la sesión\n", s.ClientURL())

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Fprintln(os.Stdout, "Cerrando bus...")
	if err := bus.Shutdown(nil, s); err != nil {
		return cli.Exit(err, meta.ServerError)
	}
	return nil
}
