package main

import "github.com/davincicode/client-go/internal/cli"

func main() {
	cli.Execute()
}
