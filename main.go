package main

import "foodlink-backend/cmd"

func main() {
	cmd.Run()
}
