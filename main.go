package main

import "github.com/atokschool/archiving-portal/cmd"

func main() {
	cmd.Execute()
}
