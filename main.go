package main

import (
	"os"

	"github.com/mirror-ball/mirrorball/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
