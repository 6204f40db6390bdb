package main

import (
	"log"

	tool "github.com/ibrahimvarli/noresrp-sub001/internal/tools/seed"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
