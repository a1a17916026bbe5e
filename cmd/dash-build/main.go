package main

import "github.com/oshokin/dash-build/cmd/dash-build/cmd"

func main() {
	cmd.Execute()
}
