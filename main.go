package main

import "github.com/magpress/authserver/cmd"

func main() {
	cmd.Execute()
}
