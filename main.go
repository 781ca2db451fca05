package main

import "github.com/acribbs/trnanalysis/cmd"

func main() {
	cmd.Execute()
}
