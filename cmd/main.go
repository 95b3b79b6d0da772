// Package main runs a single mcstatus probe as a CLI tool
package main

import (
	"os"

	"github.com/ptyonic/mcstatus/internal/app"
)

func main() {
	os.Exit(app.Run())
}
