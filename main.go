package main

import "flow-vault/cmd"

func main() {
	cmd.Execute()
}
