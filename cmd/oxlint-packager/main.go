package main

import "github.com/oxc-project/oxlint-packager/cmd/oxlint-packager/cmd"

func main() {
	cmd.Execute()
}
