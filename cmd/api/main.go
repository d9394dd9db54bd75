// @title           Todo API
// @version         1.0
// @description     Todo API with filtering, batch updates and spreadsheet import.
// @host            localhost:8080
// @BasePath        /api/v1
package main

import (
	"os"

	_ "todoapi/docs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
