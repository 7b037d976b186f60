package main

import "travel-discovery-backend/cmd"

func main() {
	cmd.Run()
}
