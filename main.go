package main

import "photo-vault-backend/cmd"

func main() {
	cmd.Run()
}
