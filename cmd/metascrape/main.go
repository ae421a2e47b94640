package main

import "github.com/slipstream/metascrape/internal/cmd"

func main() {
	cmd.Execute()
}
