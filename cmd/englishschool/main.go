package main

import "github.com/example/englishschool/cmd"

func main() {
	cmd.Execute()
}
