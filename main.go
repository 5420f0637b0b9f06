package main

import "github.com/encodeous/nlsr/cmd"

func main() {
	cmd.Execute()
}
