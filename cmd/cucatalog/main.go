package main

import "cucatalog-backend/cmd/cucatalog/cmd"

func main() {
	cmd.Execute()
}
