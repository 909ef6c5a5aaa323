package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/weiawesome/genguid/internal/cli"
	pkglog "github.com/weiawesome/genguid/pkg/log"
)

func main() {
	// Commands log through a logger built from log.level in the config file;
	// the global one only catches stray stdlib log output.
	pkglog.Init(pkglog.Config{
		Level:       "warn",
		Pretty:      true,
		ServiceName: "genguid",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
