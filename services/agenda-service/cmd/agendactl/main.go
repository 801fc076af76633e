package main

import (
	"os"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
