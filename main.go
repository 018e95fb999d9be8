package main

import "github.com/webskin/gcs-go-cli/internal/cmd"

func main() {
	cmd.Execute()
}
