package main

import "github.com/IvanBrasilico/apirecintos/cmd"

func main() {
	cmd.Execute()
}
