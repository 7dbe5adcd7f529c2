package main

import "github.com/nguyentranbao-ct/message-core/cmd"

func main() {
	cmd.Execute()
}
