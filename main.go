package main

import (
	"os"

	"github.com/casos-paranormales/casos-cli/cmd"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"
)

func main() {
	Run()
}

func Run() {
	defer func() {
		logs.Flush()
	}()

	cli := cmd.Init()
	err := cli.Run(os.Args)
	if err != nil {
		logs.Errorf("%v\n", err)
	}
}
