package main

import "github.com/payoffplan/payoff/cmd"

func main() {
	cmd.Execute()
}
