package main

import (
	"os"
	"time"
)

func main() {
	err := rootCommand.Execute()

	if rootConfiguration.waitSecs > 0 {
		time.Sleep(time.Duration(rootConfiguration.waitSecs * float64(time.Second)))
	}

	if err != nil {
		fatal(err)
	}

	os.Exit(0)
}
