package main

import (
	"os"

	"github.com/Lolmantran/vietlearn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
