package main

import "github.com/josephlewis42/nopwsh/cmd"

func main() {
	cmd.Execute()
}
