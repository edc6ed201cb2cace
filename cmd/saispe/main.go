package main

import (
	"os"

	"github.com/spf13/viper"
)

func main() {
	os.Exit(execute(viper.New(), os.Args[1:], os.Stdout, os.Stderr))
}
