package main

import "github.com/kiesman99/rastertile/cmd"

func main() {
	cmd.Execute()
}
