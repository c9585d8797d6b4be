package main

import "github.com/frahmantamala/incubation-console/cmd"

func main() {
	cmd.Execute()
}
