package main

import "cloud-assets/cmd"

func main() {
	cmd.Execute()
}
